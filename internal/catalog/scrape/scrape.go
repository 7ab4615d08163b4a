// Copyright (c) 2026 Vitrine. All rights reserved.

// Package scrape extracts submission-form metadata from a web app's landing
// page: name, description and icon. The frontend calls it to prefill the
// "add an app" form from a bare URL.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vitrineapp/vitrine/internal/platform/apperr"
	"github.com/vitrineapp/vitrine/internal/platform/validate"
)

const (
	fetchTimeout = 10 * time.Second
	maxBodyBytes = 2 << 20 // 2 MiB of HTML is plenty for <head> metadata
	userAgent    = "VitrineBot/1.0 (+https://vitrine.app)"
)

// Metadata is what could be extracted from the target page. Fields the page
// does not declare are empty strings, never guesses.
type Metadata struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}

// Scraper fetches pages and extracts [Metadata].
type Scraper struct {
	client *http.Client
	logger *slog.Logger
}

// NewScraper creates a scraper with a bounded-timeout HTTP client.
func NewScraper(logger *slog.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// Scrape fetches rawURL and extracts page metadata. Upstream failures map to
// 502 so the client can distinguish "their site is down" from our errors.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Metadata, error) {
	v := &validate.Validator{}
	if err := v.Required("url", rawURL).URL("url", rawURL).Err(); err != nil {
		return nil, err
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, validate.RequiredError("url", "Must be an absolute http(s) URL")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml")

	response, err := s.client.Do(request)
	if err != nil {
		s.logger.WarnContext(ctx, "scrape fetch failed",
			slog.String("url", rawURL), slog.Any("error", err))
		return nil, apperr.BadGateway("Could not reach the target site")
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return nil, apperr.BadGateway(
			fmt.Sprintf("Target site responded with status %d", response.StatusCode))
	}

	document, err := goquery.NewDocumentFromReader(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.BadGateway("Target site did not return parseable HTML")
	}

	return &Metadata{
		URL:         rawURL,
		Name:        extractName(document),
		Description: extractDescription(document),
		IconURL:     extractIcon(document, base),
	}, nil
}

// # Extraction

// extractName prefers Open Graph data over the title tag, since titles tend
// to carry taglines and separators.
func extractName(document *goquery.Document) string {
	if content, ok := metaContent(document, `meta[property="og:site_name"]`); ok {
		return content
	}
	if content, ok := metaContent(document, `meta[property="og:title"]`); ok {
		return content
	}
	title := strings.TrimSpace(document.Find("title").First().Text())
	for _, separator := range []string{" | ", " – ", " - ", " — "} {
		if idx := strings.Index(title, separator); idx > 0 {
			title = title[:idx]
			break
		}
	}
	return title
}

func extractDescription(document *goquery.Document) string {
	if content, ok := metaContent(document, `meta[property="og:description"]`); ok {
		return content
	}
	if content, ok := metaContent(document, `meta[name="description"]`); ok {
		return content
	}
	return ""
}

// extractIcon walks the usual icon declarations and resolves the first hit
// against the page URL. Falls back to /favicon.ico, which most of the web
// still serves.
func extractIcon(document *goquery.Document, base *url.URL) string {
	selectors := []string{
		`link[rel="apple-touch-icon"]`,
		`link[rel="icon"]`,
		`link[rel="shortcut icon"]`,
		`meta[property="og:image"]`,
	}
	for _, selector := range selectors {
		attribute := "href"
		if strings.HasPrefix(selector, "meta") {
			attribute = "content"
		}
		value, exists := document.Find(selector).First().Attr(attribute)
		if !exists || strings.TrimSpace(value) == "" {
			continue
		}
		if resolved := resolveURL(base, strings.TrimSpace(value)); resolved != "" {
			return resolved
		}
	}
	return base.Scheme + "://" + base.Host + "/favicon.ico"
}

func metaContent(document *goquery.Document, selector string) (string, bool) {
	content, exists := document.Find(selector).First().Attr("content")
	content = strings.TrimSpace(content)
	return content, exists && content != ""
}

func resolveURL(base *url.URL, reference string) string {
	parsed, err := url.Parse(reference)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
