// Package scraper turns article URLs into the structured envelopes the
// loader ingests. Fetching goes through Colly; pages that look like empty
// JS shells can be promoted to a headless chromedp render.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/metrics"
	"github.com/netra-news/backend/internal/news"
)

// Page is one retrieved document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Rendered   bool
}

// Fetcher retrieves a page over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Detector decides whether a fetched page needs a JS render.
type Detector interface {
	NeedsRender(ctx context.Context, page Page) bool
}

// Renderer produces a DOM snapshot with JavaScript executed.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (Page, error)
	Close(ctx context.Context) error
}

// Scraper fetches and extracts one article per call. Renderer and detector
// are optional; without them every page is taken as fetched.
type Scraper struct {
	fetcher  Fetcher
	detector Detector
	renderer Renderer
	logger   *zap.Logger
}

// New assembles a scraper. detector and renderer may be nil.
func New(fetcher Fetcher, detector Detector, renderer Renderer, logger *zap.Logger) *Scraper {
	return &Scraper{
		fetcher:  fetcher,
		detector: detector,
		renderer: renderer,
		logger:   logger,
	}
}

// Scrape fetches the URL and reshapes the extraction into an ingestion
// envelope. Missing fields are left empty; only a failed fetch or an
// unparsable document is an error.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (news.ScrapedItem, error) {
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		metrics.ObserveScrape("fetch_error")
		return news.ScrapedItem{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	if s.detector != nil && s.renderer != nil && s.detector.NeedsRender(ctx, page) {
		rendered, renderErr := s.renderer.Render(ctx, rawURL)
		if renderErr != nil {
			// Shell detection is a heuristic; keep the fetched page.
			s.logger.Warn("headless render failed, using fetched page",
				zap.String("url", rawURL), zap.Error(renderErr))
		} else {
			page = rendered
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		metrics.ObserveScrape("parse_error")
		return news.ScrapedItem{}, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	item := buildEnvelope(Extract(doc, pageAddress(page)), pageAddress(page))
	metrics.ObserveScrape("ok")
	return item, nil
}

func pageAddress(page Page) string {
	if page.FinalURL != "" {
		return page.FinalURL
	}
	return page.URL
}

// buildEnvelope maps an extraction onto the loader's envelope shape.
// source_name falls back from og:site_name to the URL host.
func buildEnvelope(ex Extraction, pageURL string) news.ScrapedItem {
	sourceName := ex.SiteName
	if sourceName == "" {
		sourceName = hostOf(pageURL)
	}
	return news.ScrapedItem{
		PrimaryArticle: news.ScrapedArticle{
			Headline:      ex.Headline,
			Author:        ex.Author,
			ArticleLink:   pageURL,
			FeaturedImage: ex.Image,
			SourceLogo:    ex.IconURL,
			SourceName:    sourceName,
			PublishDate:   normalizePublishDate(ex.Published),
		},
		RelatedArticles: []news.ScrapedArticle{},
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}

// publishDateLayouts are the formats sources commonly emit; matches are
// rewritten to the DD-MM-YYYY prefix form the listing date filter expects.
var publishDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006 15:04",
	"02-01-2006",
}

func normalizePublishDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range publishDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("02-01-2006 15:04")
		}
	}
	return raw
}
