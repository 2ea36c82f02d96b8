package feed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"regexp"
	"time"

	"github.com/gazxxni/blogpipe/internal/config"
	"github.com/gazxxni/blogpipe/internal/processor"
	"github.com/gazxxni/blogpipe/pkg/models"
	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
)

var xmlEncodingDecl = regexp.MustCompile(`^(\s*<\?xml[^>]*?\sencoding\s*=\s*)["'][^"']*["']`)

// Config holds feed fetcher configuration.
type Config struct {
	MaxItems        int           // Per-feed cap, applied in feed order
	SummaryMaxChars int           // Bound on stored summary length, in characters
	Timeout         time.Duration // Request timeout per feed
	UserAgent       string
}

// Fetcher retrieves feeds and normalizes their entries into articles.
type Fetcher struct {
	config    Config
	parser    *gofeed.Parser
	processor *processor.Processor
}

// New creates a new Fetcher with the given configuration.
func New(config Config) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "blogpipe/1.0"
	}
	if config.MaxItems <= 0 {
		config.MaxItems = 10
	}
	return &Fetcher{
		config:    config,
		parser:    gofeed.NewParser(),
		processor: processor.New(),
	}
}

// Fetch retrieves one feed and returns at most MaxItems articles labelled with category.
// Failures are logged and yield an empty slice; they never abort a collection run.
func (f *Fetcher) Fetch(ctx context.Context, url, category string) []models.Article {
	slog.Info("fetching feed", "category", category, "url", url)

	parsed, err := f.retrieve(ctx, url)
	if err != nil {
		slog.Warn("failed to fetch feed", "url", url, "error", err)
		return []models.Article{}
	}

	articles := f.normalize(parsed, url, category)
	slog.Info("fetched feed", "category", category, "url", url, "items", len(articles))
	return articles
}

// FetchAll fetches every feed of every group in configuration order.
// It also reports how many feeds were tried and how many yielded nothing.
func (f *Fetcher) FetchAll(ctx context.Context, groups []config.FeedGroup) ([]models.Article, int, int) {
	var all []models.Article
	var total, failed int

	for _, group := range groups {
		for _, url := range group.URLs {
			if ctx.Err() != nil {
				return all, total, failed
			}
			total++
			items := f.Fetch(ctx, url, group.Category)
			if len(items) == 0 {
				failed++
			}
			all = append(all, items...)
		}
	}
	return all, total, failed
}

// retrieve downloads the feed body through a colly collector and parses it.
func (f *Fetcher) retrieve(ctx context.Context, url string) (*gofeed.Feed, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.config.Timeout)

	var parsed *gofeed.Feed
	var parseErr error

	// Check for cancellation before the request
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body := declareUTF8(r.Body, r.Headers.Get("Content-Type"))
		parsed, parseErr = f.parser.Parse(bytes.NewReader(body))
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", parseErr)
	}
	if parsed == nil {
		return nil, fmt.Errorf("empty response")
	}
	return parsed, nil
}

// declareUTF8 rewrites the XML declaration of a body that colly has already
// transcoded to UTF-8 from a non-UTF-8 Content-Type charset. Without it the parser
// would honor encoding="euc-kr" and decode the converted bytes a second time.
func declareUTF8(body []byte, contentType string) []byte {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	label := params["charset"]
	if label == "" {
		return body
	}
	if _, name := charset.Lookup(label); name == "utf-8" {
		return body
	}
	return xmlEncodingDecl.ReplaceAll(body, []byte(`${1}"UTF-8"`))
}

// normalize maps feed items to articles, applying field fallbacks.
func (f *Fetcher) normalize(parsed *gofeed.Feed, url, category string) []models.Article {
	source := parsed.Title
	if source == "" {
		source = url
	}

	items := parsed.Items
	if len(items) > f.config.MaxItems {
		items = items[:f.config.MaxItems]
	}

	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = processor.Truncate(f.processor.PlainText(summary), f.config.SummaryMaxChars)

		articles = append(articles, models.Article{
			Title:     item.Title,
			Link:      item.Link,
			Published: published,
			Summary:   summary,
			Category:  category,
			Source:    source,
		})
	}
	return articles
}
