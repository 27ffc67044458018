package scraper

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// shellCheck reports whether one signal of an unrendered app shell is
// present in the fetched HTML.
type shellCheck func(body []byte) bool

// HeuristicDetector flags pages that look like JS shells. Its checks are
// built from configuration at construction; a page needs rendering as
// soon as any one of them fires.
type HeuristicDetector struct {
	checks []shellCheck
}

// NewHeuristicDetector builds the configured checks: a minimum HTML size,
// SPA boilerplate keywords, and selectors the page must already contain.
// Zero or empty settings disable the corresponding check.
func NewHeuristicDetector(minBytes int, selectors, keywords []string) *HeuristicDetector {
	d := &HeuristicDetector{}
	if minBytes > 0 {
		d.checks = append(d.checks, minSizeCheck(minBytes))
	}
	if kws := normalizeKeywords(keywords); len(kws) > 0 {
		d.checks = append(d.checks, keywordCheck(kws))
	}
	if sels := dropEmpty(selectors); len(sels) > 0 {
		d.checks = append(d.checks, selectorCheck(sels))
	}
	return d
}

// NeedsRender reports whether a headless render would likely yield more
// content than the fetched HTML.
func (d *HeuristicDetector) NeedsRender(_ context.Context, page Page) bool {
	if d == nil {
		return false
	}
	for _, check := range d.checks {
		if check(page.Body) {
			return true
		}
	}
	return false
}

func minSizeCheck(minBytes int) shellCheck {
	return func(body []byte) bool {
		return len(body) < minBytes
	}
}

func keywordCheck(keywords [][]byte) shellCheck {
	return func(body []byte) bool {
		if len(body) == 0 {
			return false
		}
		lower := bytes.ToLower(body)
		for _, kw := range keywords {
			if bytes.Contains(lower, kw) {
				return true
			}
		}
		return false
	}
}

// selectorCheck fires when any required selector is absent. An unparsable
// body counts as a shell.
func selectorCheck(selectors []string) shellCheck {
	return func(body []byte) bool {
		if len(body) == 0 {
			return false
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return true
		}
		for _, sel := range selectors {
			if doc.Find(sel).Length() == 0 {
				return true
			}
		}
		return false
	}
}

func normalizeKeywords(keywords []string) [][]byte {
	out := make([][]byte, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		out = append(out, []byte(strings.ToLower(kw)))
	}
	return out
}

func dropEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
