package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gazxxni/blogpipe/internal/pipeline"
	"github.com/spf13/cobra"
)

var weeklyDate string

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Write the weekly IT news digest post",
	Long: `Load the last 7 daily snapshots, summarize them in batches with the
configured LLM, and write the digest post. Without an API key, or when
summarization fails, the post still gets written with a fallback notice.

Examples:
  blogpipe weekly
  blogpipe weekly --date 2024-01-07`,
	RunE: runWeekly,
}

func init() {
	rootCmd.AddCommand(weeklyCmd)

	weeklyCmd.Flags().StringVar(&weeklyDate, "date", "", "last day of the window and post date as YYYY-MM-DD (default today)")
}

func runWeekly(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := validConfig()
	if err != nil {
		return err
	}
	date, err := parseDate(weeklyDate)
	if err != nil {
		return err
	}
	client, err := newCompleter(cfg.LLM)
	if err != nil {
		return err
	}

	result, err := pipeline.NewWeekly(cfg, client).Run(ctx, date)
	if errors.Is(err, pipeline.ErrNoArticles) {
		fmt.Fprintln(cmd.OutOrStdout(), "No articles found for the past week, nothing written")
		return nil
	}
	if err != nil {
		return fmt.Errorf("weekly summary failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d articles, %d requests)\n", result.Path, result.Articles, result.Requests)
	if !result.Summarized {
		fmt.Fprintln(cmd.OutOrStdout(), "  Warning: summary unavailable, fallback notice written")
	}
	return nil
}
