// Copyright (c) 2026 Vitrine. All rights reserved.

/*
Package app defines the core domain entities for the Vitrine catalog.

It manages the lifecycle of listed web applications: submission, discovery
(search, category filtering, sorting), approval, and the community rating
aggregate attached to each listing.

Core Responsibility:

  - Catalog: Defines the App entity and its open category set.
  - Discovery: Search and sort semantics for the browsing UI.
  - Rating: The incremental average that summarises community reviews.

This package acts as the source of truth for all listing-related data models.
*/
package app

import "time"

// # Domain Enums

// Sort determines the ordering of catalog listings.
type Sort string

const (
	// SortNewest orders by creation time, most recent first. The default.
	SortNewest Sort = "newest"

	// SortRating orders by community average rating, highest first.
	SortRating Sort = "rating"

	// SortPopular orders by community vote count, highest first.
	SortPopular Sort = "popular"
)

// IsValid reports whether s is a recognised [Sort] value.
func (s Sort) IsValid() bool {
	switch s {
	case SortNewest, SortRating, SortPopular:
		return true
	}
	return false
}

// RatingSource labels which signal the displayed score comes from.
//
// A stored community rating is only meaningful while votes > 0. Before the
// first community vote arrives, an imported external score (if any) is shown
// instead, and the two are never blended.
type RatingSource string

const (
	// RatingSourceCommunity means DisplayRating is the community average.
	RatingSourceCommunity RatingSource = "community"

	// RatingSourceExternal means DisplayRating is an imported external score.
	RatingSourceExternal RatingSource = "external"

	// RatingSourceNone means there is no score to display.
	RatingSourceNone RatingSource = "none"
)

// # Core Entities

// App is the central aggregate of the Vitrine domain.
// It represents a single listed web application in the catalog.
type App struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"` // URL-safe identifier derived from Name
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`

	// IconURL is an optional manual override for the app logo. When absent,
	// the logo resolution chain falls back to scraped/provider favicons.
	IconURL *string `json:"icon_url,omitempty"`

	// # Rating Aggregate
	// Rating and Votes are mutated exclusively by the rating aggregator.
	// Rating carries full float precision; rounding is display-side only.
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`

	// ExternalRating is an import-time score from outside the community.
	// It is a separate signal from Rating and the two are never blended.
	ExternalRating *float64 `json:"external_rating,omitempty"`

	// # Computed Display Fields
	// Populated by [App.Decorate]; never stored.
	DisplayRating *float64     `json:"display_rating,omitempty"`
	RatingSource  RatingSource `json:"rating_source"`

	IsApproved bool `json:"is_approved"`

	// # URL Health
	// Maintained by the background URL checker sweep.
	URLOk        *bool      `json:"url_ok,omitempty"`
	URLCheckedAt *time.Time `json:"url_checked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Decorate fills the computed display fields from the stored signals.
//
// Invariant: a stored Rating with Votes == 0 is never surfaced as a community
// score, regardless of its numeric value.
func (a *App) Decorate() {
	switch {
	case a.Votes > 0:
		rating := a.Rating
		a.DisplayRating = &rating
		a.RatingSource = RatingSourceCommunity
	case a.ExternalRating != nil:
		external := *a.ExternalRating
		a.DisplayRating = &external
		a.RatingSource = RatingSourceExternal
	default:
		a.DisplayRating = nil
		a.RatingSource = RatingSourceNone
	}
}

// # Query Types

// Filter narrows and orders a catalog listing query.
type Filter struct {
	// Search matches case-insensitively against a substring of the app name.
	Search string

	// Category restricts results to a single category. Empty means all.
	Category string

	// Sort selects the result ordering. Zero value falls back to SortNewest.
	Sort Sort

	// IncludeUnapproved lifts the approved-only restriction (admin listings).
	IncludeUnapproved bool
}
