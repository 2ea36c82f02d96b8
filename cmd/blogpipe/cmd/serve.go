package cmd

import (
	"fmt"

	"github.com/gazxxni/blogpipe/internal/mcp"
	"github.com/gazxxni/blogpipe/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server over the collected article snapshots.

The server communicates via stdio and provides four tools:
  - list_articles: Articles collected on one day
  - search_articles: Search recent articles by title or summary
  - get_article: Get a specific article by ID
  - list_dates: Days that have a snapshot, newest first

Example:
  blogpipe serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	server := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
		Days:    cfg.Weekly.Days,
	}, store.New(cfg.DataDir))

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
