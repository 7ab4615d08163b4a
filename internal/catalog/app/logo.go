package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	logoProbeTimeout = 4 * time.Second

	defaultGoogleFaviconFormat = "https://www.google.com/s2/favicons?domain=%s&sz=128"
	defaultDuckDuckGoFormat    = "https://icons.duckduckgo.com/ip3/%s.ico"
)

// LogoResolver picks the best reachable logo URL for an app.
//
// Candidates are tried in priority order: the stored icon override, the
// Google favicon service, the DuckDuckGo icon service, and finally the
// site's own /favicon.ico. The first candidate that answers with a
// non-error status wins, so the frontend never receives a broken image URL.
type LogoResolver struct {
	client *http.Client

	// Favicon service URL formats, each taking the app's host.
	googleFormat     string
	duckduckgoFormat string
}

// NewLogoResolver creates a resolver with a short per-probe timeout.
func NewLogoResolver() *LogoResolver {
	return &LogoResolver{
		client:           &http.Client{Timeout: logoProbeTimeout},
		googleFormat:     defaultGoogleFaviconFormat,
		duckduckgoFormat: defaultDuckDuckGoFormat,
	}
}

// Candidates returns the logo URL candidates for an app, highest priority
// first. Candidates that cannot be derived (no icon override, unparseable
// app URL) are omitted.
func (r *LogoResolver) Candidates(a *App) []string {
	candidates := make([]string, 0, 4)
	if a.IconURL != nil && *a.IconURL != "" {
		candidates = append(candidates, *a.IconURL)
	}

	parsed, err := url.Parse(a.URL)
	if err != nil || parsed.Host == "" {
		return candidates
	}
	host := parsed.Host

	candidates = append(candidates,
		fmt.Sprintf(r.googleFormat, url.QueryEscape(host)),
		fmt.Sprintf(r.duckduckgoFormat, host),
		parsed.Scheme+"://"+host+"/favicon.ico",
	)
	return candidates
}

// Resolve returns the first reachable logo candidate for the app. When no
// candidate answers (offline site, probe failures), the highest-priority
// derivable candidate is returned so the caller can still redirect.
func (r *LogoResolver) Resolve(ctx context.Context, a *App) string {
	candidates := r.Candidates(a)
	if len(candidates) == 0 {
		return fmt.Sprintf(r.googleFormat, "")
	}

	for _, candidate := range candidates {
		if r.reachable(ctx, candidate) {
			return candidate
		}
	}
	return candidates[0]
}

// reachable reports whether the URL answers with a non-error status.
func (r *LogoResolver) reachable(ctx context.Context, rawURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, logoProbeTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(probeCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}

	response, err := r.client.Do(request)
	if err != nil {
		return false
	}
	defer func() { _ = response.Body.Close() }()

	return response.StatusCode < http.StatusBadRequest
}
