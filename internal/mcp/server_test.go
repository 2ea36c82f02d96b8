package mcp

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gazxxni/blogpipe/internal/store"
	"github.com/gazxxni/blogpipe/pkg/models"
)

var today = time.Date(2024, 1, 7, 12, 0, 0, 0, time.Local)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.New(t.TempDir())

	fixtures := map[int][]models.Article{
		0: {
			{Title: "Go 1.22 released", Link: "https://go.dev/blog/go1.22", Summary: "Range over integers", Category: "개발 트렌드", Source: "Go Blog"},
			{Title: "새로운 AI 모델 공개", Link: "https://news.hada.io/topic?id=1", Summary: "GeekNews 요약", Category: "기술 뉴스", Source: "GeekNews"},
		},
		3: {
			{Title: "Rust in the kernel", Link: "https://lwn.net/1", Summary: "Also mentions go tooling", Category: "기술 뉴스", Source: "LWN"},
		},
		10: {
			{Title: "Old Go news", Link: "https://old.example.com/go", Summary: "go", Category: "기술 뉴스", Source: "Old"},
		},
	}
	for offset, articles := range fixtures {
		snap := models.NewSnapshot(today.AddDate(0, 0, -offset))
		store.Merge(snap, articles)
		if err := st.Save(snap); err != nil {
			t.Fatal(err)
		}
	}

	s := NewServer(Config{Name: "blogpipe", Version: "test"}, st)
	s.now = func() time.Time { return today }
	return s
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func decode(t *testing.T, result *mcp.CallToolResult) []ArticleResult {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool error: %s", text(t, result))
	}
	var articles []ArticleResult
	if err := json.Unmarshal([]byte(text(t, result)), &articles); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	return articles
}

func TestServer_Creation(t *testing.T) {
	s := NewServer(Config{Name: "blogpipe", Version: "1.0.0"}, store.New(t.TempDir()))
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}
	if s.days != 7 {
		t.Errorf("days = %d, want 7", s.days)
	}
}

func TestServer_ListArticles(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{name: "default today", args: map[string]any{}, want: 2},
		{name: "explicit date", args: map[string]any{"date": "2024-01-04"}, want: 1},
		{name: "missing day", args: map[string]any{"date": "2024-01-05"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.listHandler(t.Context(), call(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if got := decode(t, result); len(got) != tt.want {
				t.Errorf("list_articles = %d articles, want %d", len(got), tt.want)
			}
		})
	}

	result, _ := s.listHandler(t.Context(), call(map[string]any{"date": "01/07/2024"}))
	if !result.IsError {
		t.Error("invalid date should be a tool error")
	}
}

func TestServer_SearchArticles(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		args      map[string]any
		wantLinks []string
	}{
		{
			name:      "title and summary case-insensitive",
			args:      map[string]any{"query": "GO"},
			wantLinks: []string{"https://go.dev/blog/go1.22", "https://lwn.net/1"},
		},
		{
			name:      "korean",
			args:      map[string]any{"query": "요약"},
			wantLinks: []string{"https://news.hada.io/topic?id=1"},
		},
		{
			name:      "wider window",
			args:      map[string]any{"query": "go", "days": 14},
			wantLinks: []string{"https://go.dev/blog/go1.22", "https://lwn.net/1", "https://old.example.com/go"},
		},
		{
			name:      "limit",
			args:      map[string]any{"query": "go", "limit": 1},
			wantLinks: []string{"https://go.dev/blog/go1.22"},
		},
		{
			name:      "no match",
			args:      map[string]any{"query": "cobol"},
			wantLinks: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.searchHandler(t.Context(), call(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			got := decode(t, result)
			if len(got) != len(tt.wantLinks) {
				t.Fatalf("search_articles = %d results, want %d", len(got), len(tt.wantLinks))
			}
			for i, a := range got {
				if a.Link != tt.wantLinks[i] {
					t.Errorf("result[%d] = %s, want %s", i, a.Link, tt.wantLinks[i])
				}
				if a.ID != models.ArticleID(a.Link) {
					t.Errorf("result[%d] id = %s", i, a.ID)
				}
			}
		})
	}

	result, _ := s.searchHandler(t.Context(), call(map[string]any{}))
	if !result.IsError {
		t.Error("missing query should be a tool error")
	}
}

func TestServer_GetArticle(t *testing.T) {
	s := newTestServer(t)
	id := models.ArticleID("https://lwn.net/1")

	result, err := s.getArticleHandler(t.Context(), call(map[string]any{"id": id}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("get_article error: %s", text(t, result))
	}
	var got ArticleResult
	if err := json.Unmarshal([]byte(text(t, result)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "Rust in the kernel" || got.ID != id {
		t.Errorf("get_article = %+v", got)
	}

	result, _ = s.getArticleHandler(t.Context(), call(map[string]any{"id": "deadbeef"}))
	if !result.IsError || !strings.Contains(text(t, result), "not found") {
		t.Error("unknown id should be a not found error")
	}
}

func TestServer_ListDates(t *testing.T) {
	s := newTestServer(t)

	result, err := s.listDatesHandler(t.Context(), call(nil))
	if err != nil {
		t.Fatal(err)
	}
	var dates []string
	if err := json.Unmarshal([]byte(text(t, result)), &dates); err != nil {
		t.Fatal(err)
	}
	if strings.Join(dates, ",") != "2024-01-07,2024-01-04,2023-12-28" {
		t.Errorf("list_dates = %v", dates)
	}
}
