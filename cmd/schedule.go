package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/ingest"
	"github.com/netra-news/backend/internal/notify"
	"github.com/netra-news/backend/internal/scheduler"
)

// newScheduleCmd creates the 'schedule' subcommand running the loader on
// an interval.
func newScheduleCmd() *cobra.Command {
	var (
		intervalMinutes int
		once            bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Runs the loader periodically",
		Long: `Runs a loader pass immediately and then on a fixed interval.
Each pass has its own timeout; a failed pass is logged and the scheduler
waits for the next interval.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduleCommand(cmd, intervalMinutes, once)
		},
	}

	cmd.Flags().IntVar(&intervalMinutes, "interval", 0, "minutes between passes (overrides config)")
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")
	return cmd
}

func runScheduleCommand(cmd *cobra.Command, intervalMinutes int, once bool) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := notify.New(ctx, notify.Config{
		Provider:  cfg.Notify.Provider,
		ProjectID: cfg.Notify.ProjectID,
		TopicID:   cfg.Notify.TopicID,
	})
	if err != nil {
		return fmt.Errorf("init notify publisher: %w", err)
	}
	defer func() {
		if cerr := events.Close(); cerr != nil {
			logger.Warn("close notify publisher failed", zap.Error(cerr))
		}
	}()

	interval := cfg.Interval()
	if intervalMinutes > 0 {
		interval = time.Duration(intervalMinutes) * time.Minute
	}

	loader := ingest.New(store, events, logger, cfg.Ingest.DataDir, cfg.Ingest.BatchSize)
	sched := scheduler.New(loader, logger, interval, cfg.RunTimeout())

	if once {
		sched.RunOnce(ctx)
		return nil
	}
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}
