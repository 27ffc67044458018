package scraper

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is the per-field scrape result. Fields the page does not
// expose stay empty rather than failing the scrape.
type Extraction struct {
	Headline  string
	Image     string
	Author    string
	Published string
	Content   string
	SiteName  string
	IconURL   string
}

// Extract walks the document once per field, trying the richest signals
// first and degrading to bare HTML heuristics.
func Extract(doc *goquery.Document, pageURL string) Extraction {
	ld := parseJSONLD(doc)
	base, _ := url.Parse(pageURL)

	return Extraction{
		Headline:  extractHeadline(doc, ld),
		Image:     extractImage(doc, ld, base),
		Author:    extractAuthor(doc, ld),
		Published: extractPublished(doc, ld),
		Content:   extractContent(doc, ld),
		SiteName:  metaContent(doc, `meta[property="og:site_name"]`),
		IconURL:   extractIcon(doc, base),
	}
}

func extractHeadline(doc *goquery.Document, ld jsonLD) string {
	if v := metaContent(doc, `meta[property="og:title"]`); v != "" {
		return v
	}
	if v := metaContent(doc, `meta[name="twitter:title"]`); v != "" {
		return v
	}
	if v := ld.str("headline"); v != "" {
		return v
	}
	return cleanText(doc.Find("h1").First().Text())
}

func extractImage(doc *goquery.Document, ld jsonLD, base *url.URL) string {
	if v := metaContent(doc, `meta[property="og:image"]`); v != "" {
		return v
	}
	if v := metaContent(doc, `meta[name="twitter:image"]`); v != "" {
		return v
	}
	if v := ld.imageURL(); v != "" {
		return v
	}
	if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
		return resolveURL(base, src)
	}
	return ""
}

func extractAuthor(doc *goquery.Document, ld jsonLD) string {
	if v := metaContent(doc, `meta[name="author"]`); v != "" {
		return v
	}
	if v := metaContent(doc, `meta[property="og:article:author"]`); v != "" {
		return v
	}
	if v := metaContent(doc, `meta[property="article:author"]`); v != "" {
		return v
	}
	if v := ld.authorName(); v != "" {
		return v
	}
	return cleanText(doc.Find(`[class*="author"]`).First().Text())
}

func extractPublished(doc *goquery.Document, ld jsonLD) string {
	if v := metaContent(doc, `meta[property="og:article:published_time"]`); v != "" {
		return v
	}
	if v := metaContent(doc, `meta[property="article:published_time"]`); v != "" {
		return v
	}
	if v := metaContent(doc, `meta[name="date"]`); v != "" {
		return v
	}
	if v := ld.str("datePublished"); v != "" {
		return v
	}
	timeEl := doc.Find("time").First()
	if v, ok := timeEl.Attr("datetime"); ok && v != "" {
		return v
	}
	return cleanText(timeEl.Text())
}

func extractContent(doc *goquery.Document, ld jsonLD) string {
	if v := ld.str("articleBody"); v != "" {
		return cleanText(v)
	}
	if v := cleanText(doc.Find("article").First().Text()); v != "" {
		return v
	}
	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := cleanText(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func extractIcon(doc *goquery.Document, base *url.URL) string {
	for _, sel := range []string{`link[rel="icon"]`, `link[rel="shortcut icon"]`, `link[rel="apple-touch-icon"]`} {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && href != "" {
			return resolveURL(base, href)
		}
	}
	if base != nil && base.Host != "" {
		return base.Scheme + "://" + base.Host + "/favicon.ico"
	}
	return ""
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil || ref == "" {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// jsonLD is a merged view over every ld+json block on the page. First
// block that carries a field wins.
type jsonLD []map[string]any

// parseJSONLD tolerates both single objects and arrays of objects;
// malformed blocks are skipped.
func parseJSONLD(doc *goquery.Document) jsonLD {
	var blocks jsonLD
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			blocks = append(blocks, obj)
			return
		}
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			blocks = append(blocks, list...)
		}
	})
	return blocks
}

func (ld jsonLD) str(field string) string {
	for _, block := range ld {
		if v, ok := block[field].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// imageURL handles both "image": "url" and "image": {"url": "..."} forms,
// plus arrays of either.
func (ld jsonLD) imageURL() string {
	for _, block := range ld {
		if v := imageFrom(block["image"]); v != "" {
			return v
		}
	}
	return ""
}

func imageFrom(v any) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]any:
		if u, ok := img["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	case []any:
		for _, item := range img {
			if u := imageFrom(item); u != "" {
				return u
			}
		}
	}
	return ""
}

// authorName handles "author": "name", {"name": ...}, and arrays of either.
func (ld jsonLD) authorName() string {
	for _, block := range ld {
		if v := authorFrom(block["author"]); v != "" {
			return v
		}
	}
	return ""
}

func authorFrom(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case map[string]any:
		if name, ok := a["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	case []any:
		for _, item := range a {
			if name := authorFrom(item); name != "" {
				return name
			}
		}
	}
	return ""
}
