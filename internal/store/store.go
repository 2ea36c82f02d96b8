// Package store persists daily article snapshots as one JSON file per calendar date.
//
// Load, Merge and Save form a read-modify-write cycle with no cross-process locking.
// Two collection runs racing on the same date can lose each other's additions, so
// runs must be serialized by the caller (cron with one job at a time, or the
// schedule command which holds a mutex across jobs).
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gazxxni/blogpipe/pkg/models"
)

// Store reads and writes snapshot files under a data directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the snapshot file path for a date.
func (s *Store) Path(date time.Time) string {
	return filepath.Join(s.dir, models.FormatDate(date)+".json")
}

// Exists reports whether a snapshot file exists for date.
func (s *Store) Exists(date time.Time) bool {
	_, err := os.Stat(s.Path(date))
	return err == nil
}

// Load reads the snapshot for date, or returns an empty snapshot when no file exists
// yet. The result is always stamped with date so a later Save writes the same file.
func (s *Store) Load(date time.Time) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.Path(date))
	if errors.Is(err, os.ErrNotExist) {
		return models.NewSnapshot(date), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.Path(date), err)
	}
	// The file name is authoritative; the embedded date may be stale or hand-edited.
	snap.Date = models.FormatDate(date)
	if snap.Articles == nil {
		snap.Articles = []models.Article{}
	}
	return &snap, nil
}

// Save writes the whole snapshot, overwriting any prior file for its date.
func (s *Store) Save(snap *models.Snapshot) error {
	date, err := models.ParseDate(snap.Date)
	if err != nil {
		return fmt.Errorf("invalid snapshot date %q: %w", snap.Date, err)
	}

	return WriteFile(s.Path(date), func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return nil
	})
}

// Dates lists the dates that have a snapshot file, newest first.
func (s *Store) Dates() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var dates []time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		d, err := models.ParseDate(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

// Merge appends the articles whose link is not yet in snap, in the given order,
// and returns how many were added.
func Merge(snap *models.Snapshot, articles []models.Article) int {
	seen := make(map[string]struct{}, len(snap.Articles)+len(articles))
	for _, a := range snap.Articles {
		seen[a.Link] = struct{}{}
	}

	added := 0
	for _, a := range articles {
		if _, ok := seen[a.Link]; ok {
			continue
		}
		snap.Articles = append(snap.Articles, a)
		seen[a.Link] = struct{}{}
		added++
	}
	return added
}
