package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gazxxni/blogpipe/internal/pipeline"
	"github.com/gazxxni/blogpipe/internal/scheduler"
	"github.com/spf13/cobra"
)

var runNow bool

const shutdownTimeout = 30 * time.Second

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run collect and weekly on cron schedules",
	Long: `Run in the foreground and trigger collection and the weekly post from
the cron specs in the schedule section of the config. Jobs never overlap,
so the daily snapshot is only ever written by one run at a time.

Example:
  blogpipe schedule --run-now`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "collect once immediately on startup")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := validConfig()
	if err != nil {
		return err
	}
	client, err := newCompleter(cfg.LLM)
	if err != nil {
		return err
	}

	s, err := scheduler.New(cfg.Schedule.Timezone)
	if err != nil {
		return err
	}

	collector := pipeline.NewCollector(cfg)
	collect := func(ctx context.Context) error {
		_, err := collector.Run(ctx, time.Now().In(s.Location()))
		return err
	}

	weekly := pipeline.NewWeekly(cfg, client)
	weeklyJob := func(ctx context.Context) error {
		_, err := weekly.Run(ctx, time.Now().In(s.Location()))
		if errors.Is(err, pipeline.ErrNoArticles) {
			return nil
		}
		return err
	}

	if err := s.Add("collect", cfg.Schedule.Collect, collect); err != nil {
		return err
	}
	if err := s.Add("weekly", cfg.Schedule.Weekly, weeklyJob); err != nil {
		return err
	}

	s.Start(ctx)
	for _, name := range []string{"collect", "weekly"} {
		if next, ok := s.Next(name); ok && !next.IsZero() {
			slog.Info("job scheduled", "job", name, "next", next)
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Scheduler running, press Ctrl+C to stop")

	if runNow {
		s.Run("collect", collect)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}
