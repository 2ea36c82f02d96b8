package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/gazxxni/blogpipe/internal/pipeline"
	"github.com/gazxxni/blogpipe/pkg/models"
	"github.com/spf13/cobra"
)

var collectDate string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect IT news into the daily snapshot",
	Long: `Fetch every configured RSS feed and merge unseen articles into the
snapshot for the given day. Running it several times a day only adds new links.

Examples:
  # Collect into today's snapshot
  blogpipe collect

  # Collect into a specific day
  blogpipe collect --date 2024-01-01`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectDate, "date", "", "snapshot date as YYYY-MM-DD (default today)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := validConfig()
	if err != nil {
		return err
	}
	date, err := parseDate(collectDate)
	if err != nil {
		return err
	}
	slog.Debug("collect command starting", "date", models.FormatDate(date), "groups", len(cfg.Feeds.Groups))

	result, err := pipeline.NewCollector(cfg).Run(ctx, date)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Collected %d new articles (%d total) for %s in %v\n",
		result.New, result.Total, result.Date, result.Duration)
	if result.FailedFeeds > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Warning: %d of %d feeds returned nothing\n", result.FailedFeeds, result.Feeds)
	}
	return nil
}
