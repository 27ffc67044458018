// Package ingest bulk-loads scraped article files into the store.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/metrics"
	"github.com/netra-news/backend/internal/news"
	"github.com/netra-news/backend/internal/notify"
)

// categoryFiles is the fixed map from category to its scrape output file.
var categoryFiles = map[string]string{
	"india":         "india_news.json",
	"world":         "world_news.json",
	"local":         "local_news.json",
	"sports":        "sports_news.json",
	"business":      "business_news.json",
	"science":       "science_news.json",
	"technology":    "technology_news.json",
	"entertainment": "entertainment_news.json",
	"health":        "health_news.json",
}

// Categories returns the known categories in stable order.
func Categories() []string {
	cats := make([]string, 0, len(categoryFiles))
	for cat := range categoryFiles {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// CategoryResult is the outcome of loading one category file.
type CategoryResult struct {
	Category string
	Inserted int
	Skipped  int
}

// Summary aggregates a full loader pass.
type Summary struct {
	Results  []CategoryResult
	Inserted int
	Skipped  int
}

// Loader reads category files from a data directory and inserts their
// articles through the store.
type Loader struct {
	store     news.IngestStore
	events    notify.Publisher
	logger    *zap.Logger
	dataDir   string
	batchSize int
	now       func() time.Time
}

// New constructs a loader. events may be a NoOpPublisher.
func New(store news.IngestStore, events notify.Publisher, logger *zap.Logger, dataDir string, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Loader{
		store:     store,
		events:    events,
		logger:    logger,
		dataDir:   dataDir,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// LoadAll loads every known category. A missing file is logged and
// skipped; a failed category aborts the pass.
func (l *Loader) LoadAll(ctx context.Context) (Summary, error) {
	var summary Summary
	for _, category := range Categories() {
		result, err := l.LoadCategory(ctx, category)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Info("category file missing, skipping",
					zap.String("category", category))
				continue
			}
			return summary, fmt.Errorf("load category %s: %w", category, err)
		}
		summary.Results = append(summary.Results, result)
		summary.Inserted += result.Inserted
		summary.Skipped += result.Skipped
	}
	l.logger.Info("loader pass complete",
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// LoadCategory reads one category file and inserts its items.
func (l *Loader) LoadCategory(ctx context.Context, category string) (CategoryResult, error) {
	fileName, ok := categoryFiles[category]
	if !ok {
		return CategoryResult{}, fmt.Errorf("unknown category %q", category)
	}

	raw, err := os.ReadFile(filepath.Join(l.dataDir, fileName))
	if err != nil {
		return CategoryResult{}, err
	}

	var items []news.ScrapedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return CategoryResult{}, fmt.Errorf("parse %s: %w", fileName, err)
	}

	inserted, skipped, err := l.store.InsertScrapedItems(ctx, category, items, l.batchSize)
	if err != nil {
		return CategoryResult{}, err
	}

	metrics.ObserveIngest(category, inserted, skipped)
	l.logger.Info("category loaded",
		zap.String("category", category),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped))

	if l.events != nil {
		event := notify.IngestEvent{
			Category:   category,
			Inserted:   inserted,
			Skipped:    skipped,
			FinishedAt: l.now(),
		}
		if err := l.events.Publish(ctx, event); err != nil {
			// Event delivery is advisory; the data is already committed.
			l.logger.Warn("publish ingest event failed",
				zap.String("category", category), zap.Error(err))
		}
	}

	return CategoryResult{Category: category, Inserted: inserted, Skipped: skipped}, nil
}
