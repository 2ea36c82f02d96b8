package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gazxxni/blogpipe/internal/datefix"
	"github.com/gazxxni/blogpipe/internal/history"
	"github.com/spf13/cobra"
)

var fixDryRun bool

var fixdatesCmd = &cobra.Command{
	Use:   "fixdates",
	Short: "Backfill solution post dates from commit history",
	Long: `Set the date of every baekjoon post to the day its solution was first
committed, and rename the file to match. Local clones are checked first
with git log; the GitHub commits API is the fallback.

Examples:
  # Show what would change
  blogpipe fixdates --dry-run

  # Rewrite posts in the configured posts directory
  blogpipe fixdates`,
	RunE: runFixDates,
}

func init() {
	rootCmd.AddCommand(fixdatesCmd)

	fixdatesCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "report changes without writing files")
}

func runFixDates(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	h := cfg.History

	lookup := history.Chain{
		&history.Local{Roots: h.LocalRoots, SubDir: h.SubDir},
		history.NewGitHub(history.GitHubConfig{
			Repo:    h.GitHubRepo,
			Path:    h.SubDir,
			BaseURL: h.GitHubAPIURL,
			Token:   h.GitHubToken,
			Tiers:   h.GitHubTiers,
			Rate:    h.GitHubRate,
		}),
	}

	fixer, err := datefix.New(datefix.Config{
		PostsDir: cfg.PostsDir,
		Pattern:  h.PostPattern,
		DryRun:   fixDryRun,
	}, lookup)
	if err != nil {
		return err
	}

	result, err := fixer.Run(ctx)
	if err != nil {
		return fmt.Errorf("date fix failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, c := range result.Changes {
		if c.From == c.To {
			fmt.Fprintf(out, "  %s (date: %s)\n", c.From, c.Date)
		} else {
			fmt.Fprintf(out, "  %s -> %s (date: %s)\n", c.From, c.To, c.Date)
		}
	}
	verb := "Updated"
	if fixDryRun {
		verb = "Would update"
	}
	fmt.Fprintf(out, "\n%s: %d posts, skipped: %d, failed: %d\n", verb, result.Updated, result.Skipped, result.Failed)
	return nil
}
