package review

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vitrineapp/vitrine/internal/platform/validate"
	"github.com/vitrineapp/vitrine/pkg/pagination"
)

// CacheInvalidator drops cached catalog pages after a review changes an
// app's rating aggregate. Satisfied by the app package's cache; nil disables.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements review business logic on top of [Repository].
type Service struct {
	repo   Repository
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewService creates a review service. cache may be nil.
func NewService(repo Repository, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// SubmitReviewInput carries a review submission. Wire names follow the
// public API: the reviewer is "username" and the score is "rating".
type SubmitReviewInput struct {
	Author  string `json:"username"`
	Score   int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitReview validates and stores a review against the given app. The
// review's score counts as one community vote on the app.
func (s *Service) SubmitReview(ctx context.Context, appID int, input SubmitReviewInput) (*Review, error) {
	author := strings.TrimSpace(input.Author)
	comment := strings.TrimSpace(input.Comment)

	v := &validate.Validator{}
	v.Required("username", author).MaxLen("username", author, 60)
	v.Range("rating", input.Score, 1, 5)
	v.Required("comment", comment).MaxLen("comment", comment, 2000)
	if err := v.Err(); err != nil {
		return nil, err
	}

	review := &Review{
		AppID:   appID,
		Author:  author,
		Score:   input.Score,
		Comment: comment,
	}
	votes, err := s.repo.Submit(ctx, review)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.Int("app_id", appID),
		slog.Int("review_id", review.ID),
		slog.Int("score", review.Score),
		slog.Int("votes", votes),
	)

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return review, nil
}

// ListReviews returns one newest-first page of an app's reviews. An app with
// no reviews (or an unknown app) yields an empty page.
func (s *Service) ListReviews(ctx context.Context, appID int, page pagination.Params) ([]*Review, pagination.Meta, error) {
	reviews, total, err := s.repo.ListByApp(ctx, appID, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if reviews == nil {
		reviews = []*Review{}
	}
	return reviews, pagination.NewMeta(page.Page, page.Limit, total), nil
}
