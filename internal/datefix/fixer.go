// Package datefix rewrites the dates of solution posts to the day the solution was
// first committed, renaming the files to match.
package datefix

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gazxxni/blogpipe/internal/history"
	"github.com/gazxxni/blogpipe/internal/markdown"
	"github.com/gazxxni/blogpipe/internal/store"
)

// DefaultPattern extracts the problem number from a post file name.
const DefaultPattern = `baekjoon-(\d+)\.md`

// Config holds fixer settings.
type Config struct {
	PostsDir string
	Pattern  string // Regexp with one capture group for the problem number
	DryRun   bool   // Report changes without touching files
}

// Change describes one updated post.
type Change struct {
	From string
	To   string
	Date string
}

// Result summarizes a run.
type Result struct {
	Updated int
	Skipped int
	Failed  int
	Changes []Change
}

// Fixer updates post dates from commit history.
type Fixer struct {
	config  Config
	pattern *regexp.Regexp
	lookup  history.Lookup
}

// New creates a Fixer.
func New(config Config, lookup history.Lookup) (*Fixer, error) {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	pattern, err := regexp.Compile(config.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid post pattern: %w", err)
	}
	if pattern.NumSubexp() < 1 {
		return nil, fmt.Errorf("post pattern %q needs a capture group", config.Pattern)
	}
	return &Fixer{config: config, pattern: pattern, lookup: lookup}, nil
}

// Run processes every solution post in the posts directory. Per-file problems are
// counted in the result; only a missing directory or cancellation is an error.
func (f *Fixer) Run(ctx context.Context) (*Result, error) {
	entries, err := os.ReadDir(f.config.PostsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read posts directory: %w", err)
	}

	result := &Result{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !markdown.IsMarkdownFile(name) || !strings.Contains(name, "baekjoon") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		change, err := f.fix(ctx, name)
		switch {
		case errors.Is(err, errSkip), errors.Is(err, history.ErrNotFound):
			slog.Info("skipping post", "file", name, "reason", err)
			result.Skipped++
		case err != nil:
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			slog.Error("failed to update post", "file", name, "error", err)
			result.Failed++
		default:
			slog.Info("updated post", "from", change.From, "to", change.To, "date", change.Date, "dry_run", f.config.DryRun)
			result.Updated++
			result.Changes = append(result.Changes, change)
		}
	}
	return result, nil
}

var errSkip = errors.New("already up to date")

func (f *Fixer) fix(ctx context.Context, name string) (Change, error) {
	m := f.pattern.FindStringSubmatch(name)
	if m == nil {
		return Change{}, fmt.Errorf("%w: no problem number in name", errSkip)
	}
	problemID := m[1]

	date, err := f.lookup.FirstCommitDate(ctx, problemID)
	if err != nil {
		return Change{}, err
	}

	oldPath := filepath.Join(f.config.PostsDir, name)
	content, err := os.ReadFile(oldPath)
	if err != nil {
		return Change{}, err
	}

	updated, changed := markdown.SetDate(string(content), date)
	newName := fmt.Sprintf("%s-baekjoon-%s.md", date, problemID)
	if !changed && newName == name {
		return Change{}, errSkip
	}

	change := Change{From: name, To: newName, Date: date}
	if f.config.DryRun {
		return change, nil
	}

	newPath := filepath.Join(f.config.PostsDir, newName)
	if err := store.WriteFile(newPath, func(w *bufio.Writer) error {
		_, err := w.WriteString(updated)
		return err
	}); err != nil {
		return Change{}, err
	}
	if newPath != oldPath {
		if err := os.Remove(oldPath); err != nil {
			return Change{}, fmt.Errorf("failed to remove old post: %w", err)
		}
	}
	return change, nil
}
