package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gazxxni/blogpipe/internal/aggregator"
	"github.com/gazxxni/blogpipe/internal/config"
	"github.com/gazxxni/blogpipe/internal/feed"
	"github.com/gazxxni/blogpipe/internal/llm"
	"github.com/gazxxni/blogpipe/internal/post"
	"github.com/gazxxni/blogpipe/internal/store"
	"github.com/gazxxni/blogpipe/internal/summarizer"
	"github.com/gazxxni/blogpipe/pkg/models"
)

// ErrNoArticles means the weekly window held no articles, so no post was written.
var ErrNoArticles = errors.New("no articles found for the weekly window")

// CollectResult holds collection run results.
type CollectResult struct {
	Date        string
	New         int // Articles added to the snapshot by this run
	Total       int // Articles in the snapshot after the run
	Feeds       int
	FailedFeeds int
	Duration    time.Duration
}

// Collector fetches every configured feed and merges the entries into the day's snapshot.
type Collector struct {
	store   *store.Store
	fetcher *feed.Fetcher
	groups  []config.FeedGroup
}

// NewCollector creates a Collector from configuration.
func NewCollector(cfg config.Config) *Collector {
	return &Collector{
		store: store.New(cfg.DataDir),
		fetcher: feed.New(feed.Config{
			MaxItems:        cfg.Feeds.MaxItemsPerFeed,
			SummaryMaxChars: cfg.Feeds.SummaryMaxChars,
			Timeout:         cfg.Feeds.Timeout,
			UserAgent:       cfg.Feeds.UserAgent,
		}),
		groups: cfg.Feeds.Groups,
	}
}

// Run executes one collection for date. Feed failures are counted, not returned;
// only snapshot load or save failures abort the run.
func (c *Collector) Run(ctx context.Context, date time.Time) (*CollectResult, error) {
	start := time.Now()

	snap, err := c.store.Load(date)
	if err != nil {
		return nil, err
	}

	articles, feeds, failed := c.fetcher.FetchAll(ctx, c.groups)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	added := store.Merge(snap, articles)
	if err := c.store.Save(snap); err != nil {
		return nil, err
	}

	result := &CollectResult{
		Date:        snap.Date,
		New:         added,
		Total:       len(snap.Articles),
		Feeds:       feeds,
		FailedFeeds: failed,
		Duration:    time.Since(start),
	}
	slog.Info("collection complete",
		"date", result.Date,
		"new", result.New,
		"total", result.Total,
		"failed_feeds", result.FailedFeeds,
	)
	return result, nil
}

// WeeklyResult holds weekly run results.
type WeeklyResult struct {
	Articles   int
	Path       string
	Summarized bool
	Requests   int
	Duration   time.Duration
}

// Weekly aggregates the trailing window, summarizes it, and writes the post.
type Weekly struct {
	window     *aggregator.Aggregator
	summarizer *summarizer.Summarizer
	writer     *post.Writer
	days       int
}

// NewWeekly creates a Weekly driver. client may be nil when no credential is configured;
// the post is then written with the fallback notice.
func NewWeekly(cfg config.Config, client llm.Completer) *Weekly {
	return &Weekly{
		window: aggregator.New(store.New(cfg.DataDir)),
		summarizer: summarizer.New(client, summarizer.Config{
			BatchSize:    cfg.Summarizer.BatchSize,
			Delay:        cfg.Summarizer.Delay,
			SummaryChars: cfg.Summarizer.PromptSummaryChars,
		}),
		writer: post.NewWriter(cfg.PostsDir),
		days:   cfg.Weekly.Days,
	}
}

// Run generates the post for date. It returns ErrNoArticles, without writing anything,
// when the window is empty. Summarization problems never fail the run.
func (w *Weekly) Run(ctx context.Context, date time.Time) (*WeeklyResult, error) {
	start := time.Now()

	articles := w.window.LoadWindow(date, w.days)
	if len(articles) == 0 {
		slog.Warn("no articles found for the past week", "end", models.FormatDate(date))
		return nil, ErrNoArticles
	}
	slog.Info("loaded weekly articles", "count", len(articles))
	logCategories(articles)

	result := &WeeklyResult{Articles: len(articles)}

	sum, err := w.summarizer.Summarize(ctx, articles)
	result.Requests = sum.Requests
	switch {
	case err == nil:
		result.Summarized = true
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		slog.Error("summary generation failed, using fallback", "error", err)
	}

	content := post.Render(sum.Digest, result.Summarized, len(articles), date)
	path, err := w.writer.Write(date, content)
	if err != nil {
		return nil, fmt.Errorf("failed to write weekly post: %w", err)
	}
	result.Path = path
	result.Duration = time.Since(start)

	slog.Info("weekly post created", "path", path, "summarized", result.Summarized, "requests", result.Requests)
	return result, nil
}

func logCategories(articles []models.Article) {
	counts := make(map[string]int)
	var order []string
	for _, a := range articles {
		if counts[a.Category] == 0 {
			order = append(order, a.Category)
		}
		counts[a.Category]++
	}
	for _, c := range order {
		slog.Info("category", "name", c, "articles", counts[c])
	}
}
