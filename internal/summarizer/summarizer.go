// Package summarizer condenses a week of articles into one digest by summarizing
// fixed-size batches first and then the batch summaries.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gazxxni/blogpipe/internal/llm"
	"github.com/gazxxni/blogpipe/pkg/models"
)

var (
	// ErrNoCredential means no API key was configured, so no request was made.
	ErrNoCredential = errors.New("summarizer: no API credential configured")
	// ErrNoArticles means there was nothing to summarize.
	ErrNoArticles = errors.New("summarizer: no articles")
	// ErrEmptyMap means every batch request failed or came back empty.
	ErrEmptyMap = errors.New("summarizer: all batch summaries empty")
	// ErrReduce means the final synthesis request failed or came back empty.
	ErrReduce = errors.New("summarizer: reduce request failed")
)

// Config holds batching parameters.
type Config struct {
	BatchSize    int
	Delay        time.Duration // Pause after every batch request
	SummaryChars int           // Per-article summary cut in batch prompts
}

// Result describes one summarization run.
type Result struct {
	Digest    string
	Batches   int // Batches attempted
	Succeeded int // Batches that produced text
	Requests  int // Outbound requests, batch and reduce
}

// Summarizer runs map-reduce summarization against a Completer.
type Summarizer struct {
	client llm.Completer
	config Config
}

// New creates a Summarizer. A nil client stands for a missing credential.
func New(client llm.Completer, config Config) *Summarizer {
	if config.SummaryChars <= 0 {
		config.SummaryChars = 200
	}
	return &Summarizer{client: client, config: config}
}

// Summarize returns the weekly digest. A non-nil error means no digest is available; the
// returned Result is still populated with the request counts made so far.
func (s *Summarizer) Summarize(ctx context.Context, articles []models.Article) (*Result, error) {
	result := &Result{}

	if s.client == nil {
		return result, ErrNoCredential
	}
	if len(articles) == 0 {
		return result, ErrNoArticles
	}

	batches := Partition(articles, s.config.BatchSize)
	result.Batches = len(batches)

	var partials []string
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Requests++
		text, err := s.client.Complete(ctx, BuildBatchPrompt(batch, s.config.SummaryChars))
		text = strings.TrimSpace(text)
		switch {
		case err != nil:
			slog.Warn("batch summary failed", "batch", i+1, "of", len(batches), "error", err)
		case text == "":
			slog.Warn("batch summary empty", "batch", i+1, "of", len(batches))
		default:
			partials = append(partials, text)
			result.Succeeded++
			slog.Debug("batch summarized", "batch", i+1, "of", len(batches), "articles", len(batch))
		}

		if err := sleep(ctx, s.config.Delay); err != nil {
			return result, err
		}
	}

	if len(partials) == 0 {
		return result, ErrEmptyMap
	}

	result.Requests++
	digest, err := s.client.Complete(ctx, BuildReducePrompt(strings.Join(partials, "\n\n")))
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, fmt.Errorf("%w: %v", ErrReduce, err)
	}
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return result, fmt.Errorf("%w: empty response", ErrReduce)
	}

	result.Digest = digest
	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
