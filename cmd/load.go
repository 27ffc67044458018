package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/ingest"
	"github.com/netra-news/backend/internal/notify"
)

// newLoadCmd creates the 'load' subcommand running one loader pass.
func newLoadCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Loads scraped category files into the database",
		Long: `Reads the per-category JSON files from the configured data
directory and inserts their articles, skipping items that are missing a
headline or link and items whose link is already stored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoadCommand(cmd, category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "load a single category instead of all")
	return cmd
}

func runLoadCommand(cmd *cobra.Command, category string) error {
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

	loader := ingest.New(store, events, logger, cfg.Ingest.DataDir, cfg.Ingest.BatchSize)

	if category != "" {
		result, err := loader.LoadCategory(ctx, category)
		if err != nil {
			return fmt.Errorf("load %s: %w", category, err)
		}
		logger.Info("load finished",
			zap.String("category", result.Category),
			zap.Int("inserted", result.Inserted),
			zap.Int("skipped", result.Skipped))
		return nil
	}

	summary, err := loader.LoadAll(ctx)
	if err != nil {
		return err
	}
	logger.Info("load finished",
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped))
	return nil
}
