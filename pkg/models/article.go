package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DateLayout is the calendar date format used in snapshot files and post names.
const DateLayout = "2006-01-02"

// Article represents a single news entry collected from a feed.
// Link is the identity of an article; articles are never modified once stored.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"` // Best-effort feed text, not guaranteed parseable
	Summary   string `json:"summary"`   // Plain text, truncated
	Category  string `json:"category"`
	Source    string `json:"source"` // Feed display name
}

// Snapshot holds the articles discovered on one calendar date, in discovery order.
type Snapshot struct {
	Date     string    `json:"date"`
	Articles []Article `json:"articles"`
}

// NewSnapshot returns an empty snapshot stamped with the given date.
func NewSnapshot(date time.Time) *Snapshot {
	return &Snapshot{
		Date:     FormatDate(date),
		Articles: []Article{},
	}
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// ArticleID creates a deterministic short ID from an article link.
// The ID is a SHA-256 hash (first 16 chars) of the link.
func ArticleID(link string) string {
	hash := sha256.Sum256([]byte(link))
	return hex.EncodeToString(hash[:])[:16]
}
