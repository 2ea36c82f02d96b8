package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestArticleID(t *testing.T) {
	tests := []struct {
		name  string
		link1 string
		link2 string
		same  bool
	}{
		{
			name:  "same link produces same ID",
			link1: "https://news.hada.io/topic?id=1",
			link2: "https://news.hada.io/topic?id=1",
			same:  true,
		},
		{
			name:  "different links produce different IDs",
			link1: "https://news.hada.io/topic?id=1",
			link2: "https://news.hada.io/topic?id=2",
			same:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := ArticleID(tt.link1)
			id2 := ArticleID(tt.link2)

			if (id1 == id2) != tt.same {
				t.Errorf("ArticleID(%q) = %q, ArticleID(%q) = %q, same = %v, want %v",
					tt.link1, id1, tt.link2, id2, id1 == id2, tt.same)
			}
			if len(id1) != 16 {
				t.Errorf("ArticleID() length = %d, want 16", len(id1))
			}
		})
	}
}

func TestSnapshot_JSONShape(t *testing.T) {
	snap := NewSnapshot(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC))
	snap.Articles = append(snap.Articles, Article{
		Title:     "Go 1.22 released",
		Link:      "https://go.dev/blog/go1.22",
		Published: "Tue, 06 Feb 2024 00:00:00 GMT",
		Summary:   "New release",
		Category:  "개발 트렌드",
		Source:    "The Go Blog",
	})

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if raw["date"] != "2024-01-01" {
		t.Errorf("date = %v, want 2024-01-01", raw["date"])
	}

	articles, ok := raw["articles"].([]any)
	if !ok || len(articles) != 1 {
		t.Fatalf("articles = %v, want one entry", raw["articles"])
	}

	article := articles[0].(map[string]any)
	for _, key := range []string{"title", "link", "published", "summary", "category", "source"} {
		if _, ok := article[key]; !ok {
			t.Errorf("article JSON missing key %q", key)
		}
	}
}

func TestNewSnapshot_EmptyArticlesNotNull(t *testing.T) {
	data, err := json.Marshal(NewSnapshot(time.Now()))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var raw map[string]any
	json.Unmarshal(data, &raw)
	if raw["articles"] == nil {
		t.Error("articles should serialize as [] not null")
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := ParseDate("2024-03-09")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got := FormatDate(d); got != "2024-03-09" {
		t.Errorf("FormatDate(ParseDate()) = %q, want %q", got, "2024-03-09")
	}

	if _, err := ParseDate("2024/03/09"); err == nil {
		t.Error("ParseDate() expected error for wrong layout")
	}
}
