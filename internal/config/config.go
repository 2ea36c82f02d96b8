package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Reserved values shipped in sample configs. A key equal to either counts as not
// configured. LegacyAPIKeyPlaceholder is the one the older blog scripts used.
const (
	APIKeyPlaceholder       = "YOUR-API-KEY"
	LegacyAPIKeyPlaceholder = "여기에-GEMINI-API-키-입력"
)

// Config holds all application configuration.
type Config struct {
	DataDir    string     `mapstructure:"data_dir"`
	PostsDir   string     `mapstructure:"posts_dir"`
	Logging    Logging    `mapstructure:"logging"`
	Feeds      Feeds      `mapstructure:"feeds"`
	LLM        LLM        `mapstructure:"llm"`
	Summarizer Summarizer `mapstructure:"summarizer"`
	Weekly     Weekly     `mapstructure:"weekly"`
	History    History    `mapstructure:"history"`
	Schedule   Schedule   `mapstructure:"schedule"`
	MCP        MCP        `mapstructure:"mcp"`
}

// Logging holds log output configuration.
type Logging struct {
	Level string `mapstructure:"level"`
}

// Feeds holds RSS collection configuration.
type Feeds struct {
	MaxItemsPerFeed int           `mapstructure:"max_items_per_feed"`
	SummaryMaxChars int           `mapstructure:"summary_max_chars"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	Groups          []FeedGroup   `mapstructure:"groups"`
}

// FeedGroup is a list of feed URLs sharing a category label.
type FeedGroup struct {
	Category string   `mapstructure:"category"`
	URLs     []string `mapstructure:"urls"`
}

// LLM holds summarization service configuration.
type LLM struct {
	Provider string        `mapstructure:"provider"` // "gemini" or "openai"
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Summarizer holds map-reduce batching configuration.
type Summarizer struct {
	BatchSize          int           `mapstructure:"batch_size"`
	Delay              time.Duration `mapstructure:"delay"`
	PromptSummaryChars int           `mapstructure:"prompt_summary_chars"`
}

// Weekly holds weekly digest configuration.
type Weekly struct {
	Days int `mapstructure:"days"`
}

// History holds post date backfill configuration.
type History struct {
	PostPattern  string        `mapstructure:"post_pattern"`
	LocalRoots   []string      `mapstructure:"local_roots"`
	SubDir       string        `mapstructure:"sub_dir"`
	GitHubRepo   string        `mapstructure:"github_repo"`
	GitHubToken  string        `mapstructure:"github_token"`
	GitHubTiers  []string      `mapstructure:"github_tiers"`
	GitHubRate   time.Duration `mapstructure:"github_rate"`
	GitHubAPIURL string        `mapstructure:"github_api_url"`
}

// Schedule holds cron specs for the long-running mode.
type Schedule struct {
	Timezone string `mapstructure:"timezone"`
	Collect  string `mapstructure:"collect"`
	Weekly   string `mapstructure:"weekly"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DataDir:  "it_news_data",
		PostsDir: "_posts",
		Logging: Logging{
			Level: "info",
		},
		Feeds: Feeds{
			MaxItemsPerFeed: 10,
			SummaryMaxChars: 300,
			Timeout:         10 * time.Second,
			UserAgent:       "blogpipe/1.0",
			Groups: []FeedGroup{
				{
					Category: "기술 뉴스",
					URLs: []string{
						"https://news.hada.io/rss/news",
						"https://techcrunch.com/feed/",
						"https://www.theverge.com/rss/index.xml",
					},
				},
				{
					Category: "개발 트렌드",
					URLs: []string{
						"https://dev.to/feed",
						"https://news.ycombinator.com/rss",
						"https://github.blog/feed/",
					},
				},
				{
					Category: "한국 IT",
					URLs: []string{
						"https://www.44bits.io/ko/rss",
						"https://yozm.wishket.com/rss.xml",
					},
				},
			},
		},
		LLM: LLM{
			Provider: "gemini",
			APIKey:   APIKeyPlaceholder,
			Model:    "gemini-2.5-flash",
			BaseURL:  "", // Provider default
			Timeout:  0,  // No explicit timeout for summarization calls
		},
		Summarizer: Summarizer{
			BatchSize:          20,
			Delay:              4 * time.Second,
			PromptSummaryChars: 200,
		},
		Weekly: Weekly{
			Days: 7,
		},
		History: History{
			PostPattern:  `baekjoon-(\d+)\.md`,
			LocalRoots:   []string{"../Baekjoon_py", "../../Baekjoon_py"},
			SubDir:       "auto_upload/백준",
			GitHubRepo:   "gazxxni/Baekjoon_py",
			GitHubTiers:  []string{"Bronze", "Silver", "Gold", "Platinum"},
			GitHubRate:   time.Second,
			GitHubAPIURL: "https://api.github.com",
		},
		Schedule: Schedule{
			Timezone: "Local",
			Collect:  "0 */6 * * *",
			Weekly:   "0 9 * * 0",
		},
		MCP: MCP{
			Name:    "blogpipe",
			Version: "1.0.0",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.PostsDir == "" {
		return fmt.Errorf("posts_dir is required")
	}
	if c.Feeds.MaxItemsPerFeed < 1 {
		return fmt.Errorf("feeds.max_items_per_feed must be positive, got %d", c.Feeds.MaxItemsPerFeed)
	}
	if c.Summarizer.BatchSize < 1 {
		return fmt.Errorf("summarizer.batch_size must be positive, got %d", c.Summarizer.BatchSize)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("llm.provider must be gemini or openai, got %q", c.LLM.Provider)
	}
	for name, spec := range map[string]string{"schedule.collect": c.Schedule.Collect, "schedule.weekly": c.Schedule.Weekly} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s: invalid cron spec %q: %w", name, spec, err)
		}
	}
	return nil
}

// ResolveAPIKey returns the configured credential, falling back to the provider's
// environment variable when the key is empty or still the placeholder.
// An empty result means summarization is not configured.
func (l LLM) ResolveAPIKey(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if !isPlaceholder(l.APIKey) {
		return l.APIKey
	}

	env := "GEMINI_API_KEY"
	if l.Provider == "openai" {
		env = "OPENAI_API_KEY"
	}
	key := getenv(env)
	if isPlaceholder(key) {
		return ""
	}
	return key
}

func isPlaceholder(key string) bool {
	key = strings.TrimSpace(key)
	return key == "" || key == APIKeyPlaceholder || key == LegacyAPIKeyPlaceholder
}
