package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const githubTimeout = 10 * time.Second

// GitHubConfig holds GitHub commits API settings.
type GitHubConfig struct {
	Repo    string   // owner/name
	Path    string   // Repository path whose commits are listed
	BaseURL string   // API root, https://api.github.com by default
	Token   string   // Optional; raises the anonymous rate limit
	Tiers   []string // Sub-paths of Path retried when the first pass finds nothing
	Rate    time.Duration
}

// GitHub looks up commit dates through the GitHub REST API.
type GitHub struct {
	config     GitHubConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGitHub creates a GitHub lookup. Requests are spaced by config.Rate.
func NewGitHub(config GitHubConfig) *GitHub {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.github.com"
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	limit := rate.Inf
	if config.Rate > 0 {
		limit = rate.Every(config.Rate)
	}

	return &GitHub{
		config:     config,
		httpClient: &http.Client{Timeout: githubTimeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

type commitEntry struct {
	Commit json.RawMessage `json:"commit"`
}

type commitDetail struct {
	Message string `json:"message"`
	Author  struct {
		Date string `json:"date"`
	} `json:"author"`
}

// FirstCommitDate implements Lookup. It first matches the problem number in commit
// messages under the configured path, oldest first, then anywhere in the commit
// payload under each tier sub-path.
func (g *GitHub) FirstCommitDate(ctx context.Context, problemID string) (string, error) {
	if g.config.Repo == "" {
		return "", ErrNotFound
	}

	commits, err := g.listCommits(ctx, g.config.Path)
	if err != nil {
		return "", err
	}
	if date, ok := match(commits, func(c commitDetail, _ json.RawMessage) bool {
		return strings.Contains(c.Message, problemID)
	}); ok {
		return date, nil
	}

	for _, tier := range g.config.Tiers {
		commits, err := g.listCommits(ctx, path.Join(g.config.Path, tier))
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if date, ok := match(commits, func(_ commitDetail, raw json.RawMessage) bool {
			return strings.Contains(string(raw), problemID)
		}); ok {
			return date, nil
		}
	}

	return "", ErrNotFound
}

// match walks commits oldest first and returns the author date of the first accepted one.
func match(commits []commitEntry, accept func(commitDetail, json.RawMessage) bool) (string, bool) {
	for i := len(commits) - 1; i >= 0; i-- {
		var c commitDetail
		if err := json.Unmarshal(commits[i].Commit, &c); err != nil {
			continue
		}
		if !accept(c, commits[i].Commit) || c.Author.Date == "" {
			continue
		}
		date, err := commitDay(c.Author.Date)
		if err != nil {
			continue
		}
		return date, true
	}
	return "", false
}

func (g *GitHub) listCommits(ctx context.Context, repoPath string) ([]commitEntry, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("path", repoPath)
	q.Set("per_page", "100")
	endpoint := fmt.Sprintf("%s/repos/%s/commits?%s", g.config.BaseURL, g.config.Repo, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.Token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("list commits %s: status %d: %s", repoPath, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var commits []commitEntry
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return nil, fmt.Errorf("decode commits: %w", err)
	}
	return commits, nil
}
