package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gazxxni/blogpipe/internal/aggregator"
	"github.com/gazxxni/blogpipe/internal/store"
	"github.com/gazxxni/blogpipe/pkg/models"
)

const (
	defaultLimit = 10
	maxDays      = 31
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Days    int // Default search window
}

// Server exposes collected articles as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	store     *store.Store
	window    *aggregator.Aggregator
	days      int
	now       func() time.Time
}

// ArticleResult is an article with its lookup ID.
type ArticleResult struct {
	ID string `json:"id"`
	models.Article
}

// NewServer creates a new MCP server over the snapshot store.
func NewServer(config Config, st *store.Store) *Server {
	if config.Days <= 0 {
		config.Days = aggregator.DefaultDays
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     st,
		window:    aggregator.New(st),
		days:      config.Days,
		now:       time.Now,
	}

	listTool := mcp.NewTool("list_articles",
		mcp.WithDescription("List the IT news articles collected on one day."),
		mcp.WithString("date",
			mcp.Description("Snapshot date as YYYY-MM-DD (default: today)"),
		),
	)
	mcpServer.AddTool(listTool, s.listHandler)

	searchTool := mcp.NewTool("search_articles",
		mcp.WithDescription("Search recently collected articles by title or summary text."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive text to look for"),
		),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Number of days back to search, including today (default: %d)", config.Days)),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	getTool := mcp.NewTool("get_article",
		mcp.WithDescription("Get a collected article by ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Article ID from list_articles or search_articles"),
		),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Number of days back to look (default: %d)", config.Days)),
		),
	)
	mcpServer.AddTool(getTool, s.getArticleHandler)

	datesTool := mcp.NewTool("list_dates",
		mcp.WithDescription("List the days that have collected articles, newest first."),
	)
	mcpServer.AddTool(datesTool, s.listDatesHandler)

	return s
}

// listHandler handles the list_articles tool call.
func (s *Server) listHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := s.now()
	if raw := req.GetString("date", ""); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw)), nil
		}
		date = parsed
	}

	snap, err := s.store.Load(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load snapshot failed: %v", err)), nil
	}

	return jsonResult(withIDs(snap.Articles))
}

// searchHandler handles the search_articles tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}

	return jsonResult(s.search(query, s.daysArg(req), limit))
}

// getArticleHandler handles the get_article tool call.
func (s *Server) getArticleHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	article := s.find(id, s.daysArg(req))
	if article == nil {
		return mcp.NewToolResultError(fmt.Sprintf("article not found: %s", id)), nil
	}

	return jsonResult(article)
}

// listDatesHandler handles the list_dates tool call.
func (s *Server) listDatesHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dates, err := s.store.Dates()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list dates failed: %v", err)), nil
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = models.FormatDate(d)
	}
	return jsonResult(formatted)
}

func (s *Server) daysArg(req mcp.CallToolRequest) int {
	days := req.GetInt("days", s.days)
	if days <= 0 {
		return s.days
	}
	return min(days, maxDays)
}

// search matches query against titles and summaries across the trailing window.
func (s *Server) search(query string, days, limit int) []ArticleResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	results := []ArticleResult{}

	for _, a := range s.window.LoadWindow(s.now(), days) {
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Summary), needle) {
			continue
		}
		results = append(results, ArticleResult{ID: models.ArticleID(a.Link), Article: a})
		if len(results) == limit {
			break
		}
	}
	return results
}

func (s *Server) find(id string, days int) *ArticleResult {
	for _, a := range s.window.LoadWindow(s.now(), days) {
		if models.ArticleID(a.Link) == id {
			return &ArticleResult{ID: id, Article: a}
		}
	}
	return nil
}

func withIDs(articles []models.Article) []ArticleResult {
	results := make([]ArticleResult, len(articles))
	for i, a := range articles {
		results[i] = ArticleResult{ID: models.ArticleID(a.Link), Article: a}
	}
	return results
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
