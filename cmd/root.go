// Package cmd defines and implements the CLI commands for the netra
// backend executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/config"
	"github.com/netra-news/backend/internal/logging"
	"github.com/netra-news/backend/internal/metrics"
	"github.com/netra-news/backend/internal/store/postgres"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "netra",
		Short: "Backend for the Netra news aggregation platform.",
		Long: `netra serves the news aggregation API and runs the supporting
pipeline: the article scraper, the bulk loader for scraped category
files, and the interval scheduler that keeps the catalog fresh.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

// Execute is the main entry point. It installs signal handling so every
// command stops cleanly on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the shared logger and metrics.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()
	return cfg, logger, nil
}

// openStore connects the Postgres pool and applies the schema.
func openStore(ctx context.Context, cfg config.Config) (*postgres.Store, error) {
	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func syncLogger(logger *zap.Logger) {
	// Sync on stderr returns an expected error on some platforms.
	_ = logger.Sync()
}
