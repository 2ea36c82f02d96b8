package aggregator

import (
	"log/slog"
	"time"

	"github.com/gazxxni/blogpipe/internal/store"
	"github.com/gazxxni/blogpipe/pkg/models"
)

// DefaultDays is the length of the weekly window.
const DefaultDays = 7

// Aggregator loads the union of consecutive daily snapshots.
type Aggregator struct {
	store *store.Store
}

// New creates an Aggregator reading from s.
func New(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// LoadWindow concatenates the snapshots of the days calendar dates ending at endDate.
// Days are visited newest first; order is only meaningful within a single day.
// Missing days are skipped, unreadable ones are logged and skipped.
func (a *Aggregator) LoadWindow(endDate time.Time, days int) []models.Article {
	if days <= 0 {
		days = DefaultDays
	}

	articles := []models.Article{}
	for i := 0; i < days; i++ {
		date := endDate.AddDate(0, 0, -i)
		if !a.store.Exists(date) {
			continue
		}

		snap, err := a.store.Load(date)
		if err != nil {
			slog.Warn("skipping unreadable snapshot", "date", models.FormatDate(date), "error", err)
			continue
		}

		articles = append(articles, snap.Articles...)
		slog.Info("loaded snapshot", "date", models.FormatDate(date), "articles", len(snap.Articles))
	}
	return articles
}
