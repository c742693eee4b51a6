package scan

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/coregx/coregex"
)

// FindToken searches raw page HTML for an anti-forgery token. Structural
// probes run first (meta tag, hidden inputs, data attributes), then the
// pattern engine sweeps script bodies and whatever else the probes can't
// reach.
func FindToken(html string) (string, bool) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		if v, ok := tokenFromDocument(doc); ok {
			return v, true
		}
	}

	eng, err := DefaultEngine()
	if err != nil {
		return "", false
	}
	return eng.FindToken([]byte(html))
}

func tokenFromDocument(doc *goquery.Document) (string, bool) {
	if v, ok := doc.Find(`meta[name="csrf-token"]`).Attr("content"); ok && v != "" {
		return v, true
	}

	token := ""
	doc.Find(`input[type="hidden"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "csrf") && !strings.Contains(lower, "token") {
			return true
		}
		if v, ok := s.Attr("value"); ok && v != "" {
			token = v
			return false
		}
		return true
	})
	if token != "" {
		return token, true
	}

	sel := doc.Find(`[data-csrf], [data-token]`).First()
	if v, ok := sel.Attr("data-csrf"); ok && v != "" {
		return v, true
	}
	if v, ok := sel.Attr("data-token"); ok && v != "" {
		return v, true
	}
	return "", false
}

var (
	hrefOnce    sync.Once
	hrefPattern *coregex.Regexp
)

// FindDownloadHref scans HTML for the first href pointing at something
// download-shaped. Anchors found by the DOM walk win; a regex pass catches
// hrefs assembled outside <a> tags.
func FindDownloadHref(html string) (string, bool) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		link := ""
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			lower := strings.ToLower(href)
			if strings.Contains(lower, "download") || strings.Contains(lower, "dlink") {
				link = href
				return false
			}
			return true
		})
		if link != "" {
			return link, true
		}
	}

	hrefOnce.Do(func() {
		hrefPattern, _ = coregex.Compile(`(?i)href=['"][^'"]*(?:download|dlink)[^'"]*['"]`)
	})
	if hrefPattern == nil {
		return "", false
	}
	matches := hrefPattern.FindAll([]byte(html), -1)
	if len(matches) == 0 {
		return "", false
	}
	if v := quotedValue(string(matches[0])); v != "" {
		return v, true
	}
	return "", false
}
