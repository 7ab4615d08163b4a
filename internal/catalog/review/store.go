package review

import "context"

// Repository defines the persistence contract for reviews.
type Repository interface {
	// Submit stores the review and folds its score into the app's rating
	// aggregate inside one transaction. Either both land or neither does.
	// It fills the review's ID and CreatedAt and returns the app's updated
	// vote count.
	Submit(ctx context.Context, review *Review) (votes int, err error)

	// ListByApp returns a newest-first page of an app's reviews plus the
	// total count.
	ListByApp(ctx context.Context, appID, limit, offset int) ([]*Review, int, error)
}
