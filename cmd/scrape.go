package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/config"
	"github.com/netra-news/backend/internal/scraper"
	"github.com/netra-news/backend/internal/storage"
)

// newScrapeCmd creates the 'scrape' subcommand extracting article
// envelopes from URLs.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <url> [url...]",
		Short: "Scrapes article metadata from URLs",
		Long: `Fetches each URL, extracts article metadata through the
OpenGraph/JSON-LD/HTML fallback chains, and prints the resulting
ingestion envelope. When a blob store is configured the envelope is
also written there.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx := cmd.Context()

	blobs, err := storage.New(ctx, storage.Config{
		Provider:  cfg.Storage.Provider,
		BaseDir:   cfg.Storage.BaseDir,
		GCSBucket: cfg.Storage.GCSBucket,
		Prefix:    cfg.Storage.Prefix,
	})
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	s, closeScraper, err := buildScraper(cfg, logger)
	if err != nil {
		return err
	}
	defer closeScraper(ctx)

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")

	for _, rawURL := range args {
		item, err := s.Scrape(ctx, rawURL)
		if err != nil {
			logger.Error("scrape failed", zap.String("url", rawURL), zap.Error(err))
			continue
		}
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("encode envelope: %w", err)
		}
		saveEnvelope(ctx, blobs, cfg.Storage.Prefix, rawURL, item, logger)
	}
	return nil
}

func buildScraper(cfg config.Config, logger *zap.Logger) (*scraper.Scraper, func(context.Context), error) {
	fetcher, err := scraper.NewCollyFetcher(scraper.FetcherConfig{
		UserAgents:     cfg.Scraper.UserAgents,
		RequestTimeout: time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}

	var (
		detector scraper.Detector
		renderer scraper.Renderer
	)
	if cfg.Scraper.Headless.Enabled {
		var selectors []string
		if cfg.Scraper.Headless.RequireSelector != "" {
			selectors = []string{cfg.Scraper.Headless.RequireSelector}
		}
		detector = scraper.NewHeuristicDetector(
			cfg.Scraper.Headless.MinHTMLBytes,
			selectors,
			cfg.Scraper.Headless.ShellKeywords,
		)

		chromeRenderer, err := scraper.NewChromedpRenderer(scraper.RendererConfig{
			MaxConcurrency: 2,
			NavTimeout:     time.Duration(cfg.Scraper.Headless.NavTimeoutSec) * time.Second,
		}, logger)
		switch {
		case err == nil:
			renderer = chromeRenderer
		case errors.Is(err, scraper.ErrRendererDisabled):
			logger.Warn("headless rendering disabled; shell pages use the fetched HTML")
		default:
			return nil, nil, fmt.Errorf("init renderer: %w", err)
		}
	}

	s := scraper.New(fetcher, detector, renderer, logger)
	closeFn := func(ctx context.Context) {
		if renderer != nil {
			if cerr := renderer.Close(ctx); cerr != nil {
				logger.Warn("close renderer failed", zap.Error(cerr))
			}
		}
	}
	return s, closeFn, nil
}

func saveEnvelope(ctx context.Context, blobs storage.Provider, prefix, rawURL string, item any, logger *zap.Logger) {
	data, err := json.Marshal(item)
	if err != nil {
		logger.Warn("marshal envelope failed", zap.String("url", rawURL), zap.Error(err))
		return
	}
	if err := blobs.Save(ctx, envelopeObjectName(prefix, rawURL, time.Now()), data); err != nil {
		logger.Warn("save envelope failed", zap.String("url", rawURL), zap.Error(err))
	}
}

// envelopeObjectName shapes object keys as <prefix>/<host>/<ts>.json.
func envelopeObjectName(prefix, rawURL string, ts time.Time) string {
	host := "unknown"
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		host = strings.ToLower(parsed.Host)
	}
	return path.Join(prefix, host, ts.UTC().Format("20060102T150405.000000000")+".json")
}
