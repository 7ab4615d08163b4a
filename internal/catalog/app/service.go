// Copyright (c) 2026 Vitrine. All rights reserved.

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vitrineapp/vitrine/internal/platform/apperr"
	"github.com/vitrineapp/vitrine/internal/platform/dberr"
	"github.com/vitrineapp/vitrine/internal/platform/validate"
	"github.com/vitrineapp/vitrine/pkg/pagination"
	"github.com/vitrineapp/vitrine/pkg/pointer"
	"github.com/vitrineapp/vitrine/pkg/slug"
)

// Translator queues an app description for asynchronous translation and
// reports whether the job was accepted. A nil Translator disables the
// feature entirely.
type Translator interface {
	Enqueue(appID int, description string) bool
}

// Service implements the catalog business logic on top of [Repository].
type Service struct {
	repo       Repository
	cache      *Cache
	categories []string
	translator Translator
	logger     *slog.Logger
}

// NewService creates an app service.
//
// categories is the submission allow-list; it bounds what new apps may declare
// but does not restrict what existing rows contain. cache and translator may
// be nil, which disables caching and translation respectively.
func NewService(repo Repository, cache *Cache, categories []string, translator Translator, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		categories: categories,
		translator: translator,
		logger:     logger,
	}
}

// # Input Types

// CreateAppInput carries a public app submission.
type CreateAppInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Category    string  `json:"category"`
	IconURL     *string `json:"icon_url"`
}

// ImportAppInput carries one entry of an admin bulk import. Imported apps
// are approved immediately and may carry a pre-existing external rating, or
// pre-seeded community aggregates migrated from another install. Seeded
// aggregates feed the same incremental-mean formula as organic votes.
type ImportAppInput struct {
	CreateAppInput
	ExternalRating *float64 `json:"external_rating"`
	Rating         *float64 `json:"rating"`
	Votes          *int     `json:"votes"`
}

// # Reads

// ListApps returns one page of the public catalog matching filter.
func (s *Service) ListApps(ctx context.Context, filter Filter, page pagination.Params) ([]*App, pagination.Meta, error) {
	if filter.Sort == "" {
		filter.Sort = SortNewest
	}
	if !filter.Sort.IsValid() {
		return nil, pagination.Meta{}, validate.RequiredError("sort",
			fmt.Sprintf("Must be one of: %s, %s, %s", SortNewest, SortRating, SortPopular))
	}

	// Search results vary per query string and are not worth cache slots.
	cacheable := s.cache != nil && filter.Search == "" && !filter.IncludeUnapproved

	if cacheable {
		if apps, total, ok := s.cache.GetList(ctx, filter, page.Limit, page.Offset()); ok {
			return apps, pagination.NewMeta(page.Page, page.Limit, total), nil
		}
	}

	apps, total, err := s.repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if apps == nil {
		apps = []*App{}
	}
	for _, a := range apps {
		a.Decorate()
	}

	if cacheable {
		s.cache.SetList(ctx, filter, page.Limit, page.Offset(), apps, total)
	}
	return apps, pagination.NewMeta(page.Page, page.Limit, total), nil
}

// GetApp returns a single app by numeric ID.
func (s *Service) GetApp(ctx context.Context, id int) (*App, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Decorate()
	return app, nil
}

// GetAppBySlug returns a single app by its URL slug.
func (s *Service) GetAppBySlug(ctx context.Context, appSlug string) (*App, error) {
	app, err := s.repo.GetBySlug(ctx, appSlug)
	if err != nil {
		return nil, err
	}
	app.Decorate()
	return app, nil
}

// Categories returns the distinct categories of approved apps, cached.
// The result reflects stored data, not the submission allow-list, so retired
// categories with surviving apps keep appearing until those apps move.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if categories, ok := s.cache.GetCategories(ctx); ok {
			return categories, nil
		}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}

	if s.cache != nil {
		s.cache.SetCategories(ctx, categories)
	}
	return categories, nil
}

// AllowedCategories returns the submission allow-list.
func (s *Service) AllowedCategories() []string {
	return s.categories
}

// # Writes

// CreateApp validates and stores a public submission. The app starts
// unapproved and is invisible in public listings until an admin approves it.
func (s *Service) CreateApp(ctx context.Context, input CreateAppInput) (*App, error) {
	if err := s.validateSubmission(input); err != nil {
		return nil, err
	}

	appSlug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	app := &App{
		Name:        input.Name,
		Slug:        appSlug,
		Description: input.Description,
		URL:         input.URL,
		Category:    input.Category,
		IconURL:     input.IconURL,
		IsApproved:  false,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "app submitted",
		slog.Int("app_id", app.ID),
		slog.String("slug", app.Slug),
		slog.String("category", app.Category),
	)

	if s.translator != nil && !s.translator.Enqueue(app.ID, app.Description) {
		s.logger.WarnContext(ctx, "translation not scheduled",
			slog.Int("app_id", app.ID))
	}
	s.invalidate(ctx)

	app.Decorate()
	return app, nil
}

// RecordRating folds one vote into the app's community average.
// Scores outside 1..5 are rejected before touching storage.
func (s *Service) RecordRating(ctx context.Context, id, score int) (*App, error) {
	v := &validate.Validator{}
	if err := v.Range("rating", score, 1, 5).Err(); err != nil {
		return nil, err
	}

	app, err := s.repo.RecordRating(ctx, id, score)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "rating recorded",
		slog.Int("app_id", app.ID),
		slog.Int("score", score),
		slog.Int("votes", app.Votes),
	)

	s.invalidate(ctx)
	app.Decorate()
	return app, nil
}

// SetApproval flips an app's public visibility.
func (s *Service) SetApproval(ctx context.Context, id int, approved bool) (*App, error) {
	app, err := s.repo.SetApproval(ctx, id, approved)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "app approval changed",
		slog.Int("app_id", app.ID),
		slog.Bool("approved", approved),
	)

	s.invalidate(ctx)
	app.Decorate()
	return app, nil
}

// ImportApps validates and stores an admin batch. Imported apps are approved
// immediately. The whole batch is atomic: one bad row rejects all of it.
func (s *Service) ImportApps(ctx context.Context, inputs []ImportAppInput) ([]*App, error) {
	if len(inputs) == 0 {
		return nil, validate.RequiredError("apps", "At least one app is required")
	}

	seen := make(map[string]int, len(inputs))
	apps := make([]*App, 0, len(inputs))
	for i, input := range inputs {
		if err := s.validateSubmission(input.CreateAppInput); err != nil {
			return nil, apperr.ValidationError(
				fmt.Sprintf("Entry %d is invalid", i), apperr.As(err).Details...)
		}
		if input.ExternalRating != nil && (*input.ExternalRating < 0 || *input.ExternalRating > 5) {
			return nil, validate.RequiredError("external_rating", "Must be between 0 and 5")
		}
		if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 5) {
			return nil, validate.RequiredError("rating", "Must be between 0 and 5")
		}
		if input.Votes != nil && *input.Votes < 0 {
			return nil, validate.RequiredError("votes", "Must not be negative")
		}
		// Seeded aggregates travel as a pair; either half alone is meaningless.
		if input.Rating != nil && pointer.Val(input.Votes) == 0 {
			return nil, validate.RequiredError("votes", "Required when rating is seeded")
		}
		if pointer.Val(input.Votes) > 0 && input.Rating == nil {
			return nil, validate.RequiredError("rating", "Required when votes are seeded")
		}

		appSlug, err := s.uniqueSlug(ctx, input.Name)
		if err != nil {
			return nil, err
		}
		// Dedupe within the batch too; the database only sees it at commit.
		if n, ok := seen[appSlug]; ok {
			seen[appSlug] = n + 1
			appSlug = fmt.Sprintf("%s-%d", appSlug, n+1)
		}
		seen[appSlug] = 1

		apps = append(apps, &App{
			Name:           input.Name,
			Slug:           appSlug,
			Description:    input.Description,
			URL:            input.URL,
			Category:       input.Category,
			IconURL:        input.IconURL,
			ExternalRating: input.ExternalRating,
			Rating:         pointer.Val(input.Rating),
			Votes:          pointer.Val(input.Votes),
			IsApproved:     true,
		})
	}

	if err := s.repo.CreateBatch(ctx, apps); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "apps imported", slog.Int("count", len(apps)))

	s.invalidate(ctx)
	for _, a := range apps {
		a.Decorate()
	}
	return apps, nil
}

// # Internals

func (s *Service) validateSubmission(input CreateAppInput) error {
	v := &validate.Validator{}
	v.Required("name", input.Name).MaxLen("name", input.Name, 120)
	v.Required("description", input.Description).MaxLen("description", input.Description, 4000)
	v.Required("url", input.URL).URL("url", input.URL)
	v.Required("category", input.Category).OneOf("category", input.Category, s.categories...)
	if input.IconURL != nil && *input.IconURL != "" {
		v.URL("icon_url", *input.IconURL)
	}
	return v.Err()
}

// uniqueSlug derives a slug from name and suffixes it until no stored app
// claims it. A concurrent insert can still win the race; the unique index
// turns that into a Conflict the client can retry.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.From(name)
	if base == "" {
		return "", validate.RequiredError("name", "Must contain at least one letter or digit")
	}

	candidate := base
	for i := 2; i <= 50; i++ {
		_, err := s.repo.GetBySlug(ctx, candidate)
		if errors.Is(err, dberr.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperr.Conflict("Too many apps share this name")
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
