// Package history finds the date a solution was first committed, from a local
// clone or the GitHub commits API.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gazxxni/blogpipe/pkg/models"
)

// ErrNotFound means no commit could be matched to the problem.
var ErrNotFound = errors.New("history: commit not found")

// Lookup resolves a problem number to the YYYY-MM-DD date of its first commit.
type Lookup interface {
	FirstCommitDate(ctx context.Context, problemID string) (string, error)
}

// Chain tries each lookup in order and returns the first date found.
type Chain []Lookup

// FirstCommitDate implements Lookup.
func (c Chain) FirstCommitDate(ctx context.Context, problemID string) (string, error) {
	for _, l := range c {
		date, err := l.FirstCommitDate(ctx, problemID)
		if err == nil {
			return date, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("history lookup failed", "problem", problemID, "error", err)
		}
	}
	return "", ErrNotFound
}

// commitDay converts an ISO-8601 commit timestamp to a date in its own offset.
func commitDay(ts string) (string, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "", fmt.Errorf("invalid commit timestamp %q: %w", ts, err)
	}
	return t.Format(models.DateLayout), nil
}
