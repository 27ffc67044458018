package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/metrics"
	"github.com/netra-news/backend/internal/news"
	"github.com/netra-news/backend/internal/notify"
)

type recordingStore struct {
	calls []storeCall
}

type storeCall struct {
	category  string
	items     int
	batchSize int
}

func (r *recordingStore) InsertScrapedItems(_ context.Context, category string, items []news.ScrapedItem, batchSize int) (int, int, error) {
	r.calls = append(r.calls, storeCall{category: category, items: len(items), batchSize: batchSize})
	return len(items), 1, nil
}

type recordingPublisher struct {
	events []notify.IngestEvent
}

func (r *recordingPublisher) Publish(_ context.Context, event notify.IngestEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func writeCategoryFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

const sampleFile = `[
	{"primary_article":{"headline":"A","article_link":"https://x/a"},"related_articles":[]},
	{"primary_article":{"headline":"B","article_link":"https://x/b"},"related_articles":[]}
]`

func TestLoadCategoryInsertsAndPublishes(t *testing.T) {
	t.Parallel()
	metrics.Init()

	dir := t.TempDir()
	writeCategoryFile(t, dir, "india_news.json", sampleFile)

	store := &recordingStore{}
	events := &recordingPublisher{}
	loader := New(store, events, zap.NewNop(), dir, 10)

	result, err := loader.LoadCategory(context.Background(), "india")
	require.NoError(t, err)
	require.Equal(t, 2, result.Inserted)
	require.Equal(t, 1, result.Skipped)

	require.Len(t, store.calls, 1)
	require.Equal(t, storeCall{category: "india", items: 2, batchSize: 10}, store.calls[0])

	require.Len(t, events.events, 1)
	require.Equal(t, "india", events.events[0].Category)
	require.Equal(t, 2, events.events[0].Inserted)
}

func TestLoadCategoryUnknownCategory(t *testing.T) {
	t.Parallel()
	metrics.Init()

	loader := New(&recordingStore{}, nil, zap.NewNop(), t.TempDir(), 10)
	_, err := loader.LoadCategory(context.Background(), "gossip")
	require.Error(t, err)
}

func TestLoadCategoryMalformedFile(t *testing.T) {
	t.Parallel()
	metrics.Init()

	dir := t.TempDir()
	writeCategoryFile(t, dir, "world_news.json", "{not an array")

	loader := New(&recordingStore{}, nil, zap.NewNop(), dir, 10)
	_, err := loader.LoadCategory(context.Background(), "world")
	require.ErrorContains(t, err, "parse")
}

func TestLoadAllSkipsMissingFiles(t *testing.T) {
	t.Parallel()
	metrics.Init()

	dir := t.TempDir()
	writeCategoryFile(t, dir, "sports_news.json", sampleFile)
	writeCategoryFile(t, dir, "health_news.json", sampleFile)

	store := &recordingStore{}
	loader := New(store, &recordingPublisher{}, zap.NewNop(), dir, 5)

	summary, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	require.Equal(t, 4, summary.Inserted)
	require.Equal(t, 2, summary.Skipped)
	require.Len(t, store.calls, 2)
}

func TestCategoriesAreStable(t *testing.T) {
	t.Parallel()

	require.Equal(t, Categories(), Categories())
	require.Contains(t, Categories(), "technology")
	require.Len(t, Categories(), 9)
}
