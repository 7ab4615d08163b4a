// Copyright (c) 2026 Vitrine. All rights reserved.

package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineapp/vitrine/internal/catalog/app"
	"github.com/vitrineapp/vitrine/internal/platform/apperr"
	"github.com/vitrineapp/vitrine/internal/platform/dberr"
	"github.com/vitrineapp/vitrine/pkg/pagination"
	"github.com/vitrineapp/vitrine/pkg/pointer"
)

var testCategories = []string{"AI", "Productivity", "Design", "Games", "Development", "Social", "Other"}

// fakeRepository is an in-memory [app.Repository] for service-level tests.
// Its RecordRating mirrors the production single-statement semantics.
type fakeRepository struct {
	apps   map[int]*app.App
	nextID int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{apps: make(map[int]*app.App), nextID: 1}
}

func (f *fakeRepository) List(_ context.Context, filter app.Filter, limit, offset int) ([]*app.App, int, error) {
	var matched []*app.App
	for _, a := range f.apps {
		if !filter.IncludeUnapproved && !a.IsApproved {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int) (*app.App, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeRepository) GetBySlug(_ context.Context, slug string) (*app.App, error) {
	for _, a := range f.apps {
		if a.Slug == slug {
			copied := *a
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) Create(_ context.Context, a *app.App) error {
	a.ID = f.nextID
	f.nextID++
	stored := *a
	f.apps[a.ID] = &stored
	return nil
}

func (f *fakeRepository) CreateBatch(ctx context.Context, apps []*app.App) error {
	for _, a := range apps {
		if err := f.Create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepository) RecordRating(_ context.Context, id, score int) (*app.App, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	a.Rating = (a.Rating*float64(a.Votes) + float64(score)) / float64(a.Votes+1)
	a.Votes++
	copied := *a
	return &copied, nil
}

func (f *fakeRepository) SetApproval(_ context.Context, id int, approved bool) (*app.App, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	a.IsApproved = approved
	copied := *a
	return &copied, nil
}

func (f *fakeRepository) SetURLStatus(_ context.Context, id int, ok bool) error {
	a, found := f.apps[id]
	if !found {
		return dberr.ErrNotFound
	}
	a.URLOk = &ok
	return nil
}

func (f *fakeRepository) ListCategories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var categories []string
	for _, a := range f.apps {
		if a.IsApproved && !seen[a.Category] {
			seen[a.Category] = true
			categories = append(categories, a.Category)
		}
	}
	return categories, nil
}

func (f *fakeRepository) Count(_ context.Context) (int, error) {
	return len(f.apps), nil
}

func (f *fakeRepository) SetDescription(_ context.Context, id int, description string) error {
	a, ok := f.apps[id]
	if !ok {
		return dberr.ErrNotFound
	}
	a.Description = description
	return nil
}

func newTestService(repo app.Repository) *app.Service {
	return app.NewService(repo, nil, testCategories, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedApp(t *testing.T, repo *fakeRepository, name string, approved bool) *app.App {
	t.Helper()
	a := &app.App{
		Name:        name,
		Slug:        name,
		Description: "A description",
		URL:         "https://example.com",
		Category:    "Productivity",
		IsApproved:  approved,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

/*
TestService_RecordRating_IncrementalAverage verifies that successive votes
produce the exact running mean, with no drift from the incremental formula.
*/
func TestService_RecordRating_IncrementalAverage(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	seeded := seedApp(t, repo, "notion", true)

	scores := []int{4, 2, 5}
	var latest *app.App
	var err error
	for _, score := range scores {
		latest, err = service.RecordRating(context.Background(), seeded.ID, score)
		require.NoError(t, err)
	}

	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.Votes)
	assert.InDelta(t, 11.0/3.0, latest.Rating, 1e-9)
	assert.Equal(t, app.RatingSourceCommunity, latest.RatingSource)
	require.NotNil(t, latest.DisplayRating)
	assert.InDelta(t, 11.0/3.0, *latest.DisplayRating, 1e-9)
}

/*
TestService_RecordRating_FirstVote checks the transition out of the
no-community-data state: one vote makes the average exactly that score.
*/
func TestService_RecordRating_FirstVote(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	seeded := seedApp(t, repo, "figma", true)

	updated, err := service.RecordRating(context.Background(), seeded.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Votes)
	assert.InDelta(t, 5.0, updated.Rating, 1e-9)
	assert.Equal(t, app.RatingSourceCommunity, updated.RatingSource)
}

/*
TestService_RecordRating_Validation rejects out-of-range scores before any
storage access, and unknown apps map to 404.
*/
func TestService_RecordRating_Validation(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	seeded := seedApp(t, repo, "trello", true)

	for _, score := range []int{0, 6, -1, 100} {
		_, err := service.RecordRating(context.Background(), seeded.ID, score)
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	}

	// Scores never landed.
	stored, err := service.GetApp(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Votes)

	_, err = service.RecordRating(context.Background(), 9999, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dberr.ErrNotFound))
}

/*
TestService_RecordRating_NotIdempotent confirms that repeating the same vote
moves the aggregate again. Votes are events, not upserts.
*/
func TestService_RecordRating_NotIdempotent(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	seeded := seedApp(t, repo, "canva", true)

	first, err := service.RecordRating(context.Background(), seeded.ID, 4)
	require.NoError(t, err)
	second, err := service.RecordRating(context.Background(), seeded.ID, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Votes)
	assert.Equal(t, 2, second.Votes)
	assert.InDelta(t, 4.0, second.Rating, 1e-9)
}

/*
TestApp_Decorate covers the display boundary: a stored rating with zero votes
is never shown as community data.
*/
func TestApp_Decorate(t *testing.T) {
	tests := []struct {
		name           string
		votes          int
		rating         float64
		external       *float64
		wantSource     app.RatingSource
		wantDisplayNil bool
		wantDisplay    float64
	}{
		{"community_wins", 3, 4.2, pointer.To(3.0), app.RatingSourceCommunity, false, 4.2},
		{"external_before_first_vote", 0, 0, pointer.To(4.7), app.RatingSourceExternal, false, 4.7},
		{"no_data_at_all", 0, 0, nil, app.RatingSourceNone, true, 0},
		{"stale_rating_zero_votes", 0, 3.5, nil, app.RatingSourceNone, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &app.App{Votes: tt.votes, Rating: tt.rating, ExternalRating: tt.external}
			a.Decorate()

			assert.Equal(t, tt.wantSource, a.RatingSource)
			if tt.wantDisplayNil {
				assert.Nil(t, a.DisplayRating)
			} else {
				require.NotNil(t, a.DisplayRating)
				assert.InDelta(t, tt.wantDisplay, *a.DisplayRating, 1e-9)
			}
		})
	}
}

/*
TestService_CreateApp_Validation exercises the submission rules.
*/
func TestService_CreateApp_Validation(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	valid := app.CreateAppInput{
		Name:        "Linear",
		Description: "Issue tracking for modern software teams.",
		URL:         "https://linear.app",
		Category:    "Productivity",
	}

	tests := []struct {
		name    string
		mutate  func(input *app.CreateAppInput)
		wantErr bool
	}{
		{"valid_submission", func(*app.CreateAppInput) {}, false},
		{"missing_name", func(i *app.CreateAppInput) { i.Name = "" }, true},
		{"missing_url", func(i *app.CreateAppInput) { i.URL = "" }, true},
		{"relative_url", func(i *app.CreateAppInput) { i.URL = "/apps/linear" }, true},
		{"ftp_url", func(i *app.CreateAppInput) { i.URL = "ftp://linear.app" }, true},
		{"unknown_category", func(i *app.CreateAppInput) { i.Category = "Cooking" }, true},
		{"missing_description", func(i *app.CreateAppInput) { i.Description = "" }, true},
		{"bad_icon_url", func(i *app.CreateAppInput) { i.IconURL = pointer.To("not a url") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)

			created, err := service.CreateApp(context.Background(), input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "linear", created.Slug)
			assert.False(t, created.IsApproved, "submissions start unapproved")
			assert.Equal(t, app.RatingSourceNone, created.RatingSource)
		})
	}
}

/*
TestService_CreateApp_SlugDeduplication suffixes colliding slugs.
*/
func TestService_CreateApp_SlugDeduplication(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	input := app.CreateAppInput{
		Name:        "Café Notes",
		Description: "Note taking.",
		URL:         "https://cafenotes.example.com",
		Category:    "Productivity",
	}

	first, err := service.CreateApp(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "cafe-notes", first.Slug, "diacritics fold into ASCII")

	second, err := service.CreateApp(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "cafe-notes-2", second.Slug)
}

/*
TestService_ListApps_HidesUnapproved keeps pending submissions out of the
public catalog until approval, then shows them.
*/
func TestService_ListApps_HidesUnapproved(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	seedApp(t, repo, "approved-app", true)
	pending := seedApp(t, repo, "pending-app", false)

	page := pagination.Params{Page: 1, Limit: 20}

	apps, meta, err := service.ListApps(context.Background(), app.Filter{}, page)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Total)
	require.Len(t, apps, 1)
	assert.Equal(t, "approved-app", apps[0].Name)

	_, err = service.SetApproval(context.Background(), pending.ID, true)
	require.NoError(t, err)

	_, meta, err = service.ListApps(context.Background(), app.Filter{}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Total)
}

/*
TestService_ListApps_RejectsUnknownSort returns a validation error rather
than silently falling back for an explicit bad sort value.
*/
func TestService_ListApps_RejectsUnknownSort(t *testing.T) {
	service := newTestService(newFakeRepository())

	_, _, err := service.ListApps(context.Background(),
		app.Filter{Sort: "alphabetical"}, pagination.Params{Page: 1, Limit: 20})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_ImportApps covers the admin bulk import path: entries arrive
approved, keep their external rating, and one bad entry rejects the batch.
*/
func TestService_ImportApps(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	imported, err := service.ImportApps(context.Background(), []app.ImportAppInput{
		{
			CreateAppInput: app.CreateAppInput{
				Name:        "Miro",
				Description: "Online collaborative whiteboard.",
				URL:         "https://miro.com",
				Category:    "Design",
			},
			ExternalRating: pointer.To(4.5),
		},
	})
	require.NoError(t, err)
	require.Len(t, imported, 1)

	assert.True(t, imported[0].IsApproved)
	assert.Equal(t, app.RatingSourceExternal, imported[0].RatingSource)
	require.NotNil(t, imported[0].DisplayRating)
	assert.InDelta(t, 4.5, *imported[0].DisplayRating, 1e-9)
	assert.Equal(t, 0, imported[0].Votes)

	_, err = service.ImportApps(context.Background(), []app.ImportAppInput{
		{CreateAppInput: app.CreateAppInput{Name: "Broken"}},
	})
	require.Error(t, err)

	_, err = service.ImportApps(context.Background(), nil)
	require.Error(t, err)
}

/*
TestService_ImportApps_SeededAggregates migrates an app with an existing
community average and verifies new votes fold into it like organic ones.
*/
func TestService_ImportApps_SeededAggregates(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	imported, err := service.ImportApps(context.Background(), []app.ImportAppInput{
		{
			CreateAppInput: app.CreateAppInput{
				Name:        "Linear",
				Description: "Issue tracking for product teams.",
				URL:         "https://linear.app",
				Category:    "Productivity",
			},
			Rating: pointer.To(4.0),
			Votes:  pointer.To(3),
		},
	})
	require.NoError(t, err)
	require.Len(t, imported, 1)

	assert.Equal(t, app.RatingSourceCommunity, imported[0].RatingSource)
	require.NotNil(t, imported[0].DisplayRating)
	assert.InDelta(t, 4.0, *imported[0].DisplayRating, 1e-9)
	assert.Equal(t, 3, imported[0].Votes)

	// (4*3 + 2) / 4 = 3.5: seed data and organic votes share the formula.
	updated, err := service.RecordRating(context.Background(), imported[0].ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Votes)
	assert.InDelta(t, 3.5, updated.Rating, 1e-9)
}

/*
TestService_ImportApps_SeededAggregateValidation rejects half-seeded or
out-of-range aggregates.
*/
func TestService_ImportApps_SeededAggregateValidation(t *testing.T) {
	entry := func(mutate func(*app.ImportAppInput)) []app.ImportAppInput {
		input := app.ImportAppInput{
			CreateAppInput: app.CreateAppInput{
				Name:        "Linear",
				Description: "Issue tracking for product teams.",
				URL:         "https://linear.app",
				Category:    "Productivity",
			},
		}
		mutate(&input)
		return []app.ImportAppInput{input}
	}

	tests := []struct {
		name   string
		inputs []app.ImportAppInput
	}{
		{"rating_without_votes", entry(func(i *app.ImportAppInput) { i.Rating = pointer.To(4.0) })},
		{"votes_without_rating", entry(func(i *app.ImportAppInput) { i.Votes = pointer.To(3) })},
		{"rating_out_of_range", entry(func(i *app.ImportAppInput) {
			i.Rating = pointer.To(5.5)
			i.Votes = pointer.To(3)
		})},
		{"negative_votes", entry(func(i *app.ImportAppInput) {
			i.Rating = pointer.To(4.0)
			i.Votes = pointer.To(-1)
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(newFakeRepository())

			_, err := service.ImportApps(context.Background(), tt.inputs)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

/*
TestService_SeedIfEmpty seeds once and refuses to touch a non-empty catalog.
*/
func TestService_SeedIfEmpty(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	require.NoError(t, service.SeedIfEmpty(context.Background()))
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	// Second run is a no-op.
	require.NoError(t, service.SeedIfEmpty(context.Background()))
	countAfter, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, count, countAfter)
}
