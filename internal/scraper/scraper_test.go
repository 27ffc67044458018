package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/metrics"
)

type stubFetcher struct {
	page Page
	err  error
}

func (f stubFetcher) Fetch(context.Context, string) (Page, error) {
	return f.page, f.err
}

type stubDetector bool

func (d stubDetector) NeedsRender(context.Context, Page) bool {
	return bool(d)
}

type stubRenderer struct {
	page   Page
	err    error
	called bool
}

func (r *stubRenderer) Render(context.Context, string) (Page, error) {
	r.called = true
	return r.page, r.err
}

func (r *stubRenderer) Close(context.Context) error { return nil }

const fixtureHTML = `<html><head>
	<meta property="og:title" content="Fixture headline">
	<meta property="og:site_name" content="Fixture News">
</head><body></body></html>`

func TestScrapeBuildsEnvelope(t *testing.T) {
	t.Parallel()
	metrics.Init()

	s := New(stubFetcher{page: Page{URL: "https://news.example/a", Body: []byte(fixtureHTML)}}, nil, nil, zap.NewNop())

	item, err := s.Scrape(context.Background(), "https://news.example/a")
	require.NoError(t, err)
	require.Equal(t, "Fixture headline", item.PrimaryArticle.Headline)
	require.Equal(t, "Fixture News", item.PrimaryArticle.SourceName)
	require.Equal(t, "https://news.example/a", item.PrimaryArticle.ArticleLink)
}

func TestScrapeFetchErrorPropagates(t *testing.T) {
	t.Parallel()
	metrics.Init()

	s := New(stubFetcher{err: errors.New("connection refused")}, nil, nil, zap.NewNop())

	_, err := s.Scrape(context.Background(), "https://news.example/a")
	require.ErrorContains(t, err, "connection refused")
}

func TestScrapePromotesShellPageToRender(t *testing.T) {
	t.Parallel()
	metrics.Init()

	renderer := &stubRenderer{page: Page{URL: "https://news.example/a", Body: []byte(fixtureHTML), Rendered: true}}
	s := New(
		stubFetcher{page: Page{URL: "https://news.example/a", Body: []byte("<html></html>")}},
		stubDetector(true),
		renderer,
		zap.NewNop(),
	)

	item, err := s.Scrape(context.Background(), "https://news.example/a")
	require.NoError(t, err)
	require.True(t, renderer.called)
	require.Equal(t, "Fixture headline", item.PrimaryArticle.Headline)
}

func TestScrapeKeepsFetchedPageOnRenderFailure(t *testing.T) {
	t.Parallel()
	metrics.Init()

	renderer := &stubRenderer{err: errors.New("browser crashed")}
	s := New(
		stubFetcher{page: Page{URL: "https://news.example/a", Body: []byte(fixtureHTML)}},
		stubDetector(true),
		renderer,
		zap.NewNop(),
	)

	item, err := s.Scrape(context.Background(), "https://news.example/a")
	require.NoError(t, err)
	require.True(t, renderer.called)
	require.Equal(t, "Fixture headline", item.PrimaryArticle.Headline)
}
