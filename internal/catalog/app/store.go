package app

import "context"

// Repository defines the persistence contract for catalog apps.
type Repository interface {
	// List returns a page of apps matching filter plus the total match count.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*App, int, error)

	// GetByID returns a single app or dberr.ErrNotFound-wrapped failure.
	GetByID(ctx context.Context, id int) (*App, error)

	// GetBySlug returns a single app by its slug.
	GetBySlug(ctx context.Context, slug string) (*App, error)

	// Create persists a new app and fills ID and CreatedAt.
	Create(ctx context.Context, app *App) error

	// CreateBatch persists several apps in one transaction (seeding, import).
	CreateBatch(ctx context.Context, apps []*App) error

	// RecordRating folds score into the app's rating aggregate atomically and
	// returns the updated row. The read-combine-write happens inside a single
	// statement so concurrent votes can never observe each other's stale state.
	RecordRating(ctx context.Context, id, score int) (*App, error)

	// SetApproval flips the approval flag and returns the updated row.
	SetApproval(ctx context.Context, id int, approved bool) (*App, error)

	// SetURLStatus records the outcome of a URL health probe.
	SetURLStatus(ctx context.Context, id int, ok bool) error

	// ListCategories returns the distinct categories present in approved apps.
	ListCategories(ctx context.Context) ([]string, error)

	// Count returns the total number of apps, approved or not.
	Count(ctx context.Context) (int, error)

	// SetDescription replaces the description text (translation worker).
	SetDescription(ctx context.Context, id int, description string) error
}
