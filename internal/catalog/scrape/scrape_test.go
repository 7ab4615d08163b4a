// Copyright (c) 2026 Vitrine. All rights reserved.

package scrape_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineapp/vitrine/internal/catalog/scrape"
	"github.com/vitrineapp/vitrine/internal/platform/apperr"
)

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = writer.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

/*
TestScraper_Scrape_OpenGraph prefers Open Graph metadata and resolves the
declared icon against the page URL.
*/
func TestScraper_Scrape_OpenGraph(t *testing.T) {
	server := serveHTML(t, `<!doctype html>
		<html><head>
			<title>Linear | Plan and build products</title>
			<meta property="og:site_name" content="Linear">
			<meta property="og:description" content="Issue tracking for modern software teams.">
			<link rel="icon" href="/static/favicon.png">
		</head><body></body></html>`)

	scraper := scrape.NewScraper(slog.New(slog.NewTextHandler(io.Discard, nil)))
	metadata, err := scraper.Scrape(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Linear", metadata.Name)
	assert.Equal(t, "Issue tracking for modern software teams.", metadata.Description)
	assert.Equal(t, server.URL+"/static/favicon.png", metadata.IconURL)
	assert.Equal(t, server.URL, metadata.URL)
}

/*
TestScraper_Scrape_TitleFallback uses the title tag, trimmed at the first
separator, when no Open Graph data exists, and falls back to /favicon.ico.
*/
func TestScraper_Scrape_TitleFallback(t *testing.T) {
	server := serveHTML(t, `<!doctype html>
		<html><head>
			<title>Miro - The Visual Workspace</title>
			<meta name="description" content="Online collaborative whiteboard.">
		</head><body></body></html>`)

	scraper := scrape.NewScraper(slog.New(slog.NewTextHandler(io.Discard, nil)))
	metadata, err := scraper.Scrape(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Miro", metadata.Name)
	assert.Equal(t, "Online collaborative whiteboard.", metadata.Description)
	assert.Equal(t, server.URL+"/favicon.ico", metadata.IconURL)
}

/*
TestScraper_Scrape_BarePage returns empty fields, not fabricated values,
when the page declares nothing.
*/
func TestScraper_Scrape_BarePage(t *testing.T) {
	server := serveHTML(t, `<!doctype html><html><head></head><body>hi</body></html>`)

	scraper := scrape.NewScraper(slog.New(slog.NewTextHandler(io.Discard, nil)))
	metadata, err := scraper.Scrape(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Empty(t, metadata.Name)
	assert.Empty(t, metadata.Description)
}

/*
TestScraper_Scrape_UpstreamFailure maps target-site errors to 502 and input
errors to 400.
*/
func TestScraper_Scrape_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	scraper := scrape.NewScraper(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := scraper.Scrape(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, "BAD_GATEWAY", apperr.As(err).Code)

	_, err = scraper.Scrape(context.Background(), "not-a-url")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	// Unreachable host: connection level failure, still a 502.
	_, err = scraper.Scrape(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Equal(t, "BAD_GATEWAY", apperr.As(err).Code)
}
