package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitrineapp/vitrine/internal/platform/database/schema"
	"github.com/vitrineapp/vitrine/internal/platform/dberr"
	"github.com/vitrineapp/vitrine/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on top of PostgreSQL.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository creates a PostgreSQL-backed review repository.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var reviewColumns = strings.Join(schema.CatalogReview.Columns(), ", ")

// Submit inserts the review and folds its score into the app's running
// average. Both statements share one transaction; the aggregate update also
// happens in a single statement so concurrent submissions serialize on the
// app row instead of overwriting each other.
//
// An unknown app surfaces as a foreign key violation on the insert, which
// wraps to a 404.
func (r *PostgresRepository) Submit(ctx context.Context, review *Review) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, dberr.Wrap(err, "Review")
	}
	defer tx.Rollback(ctx)

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.CatalogReview.Table,
		schema.CatalogReview.AppID, schema.CatalogReview.Author,
		schema.CatalogReview.Score, schema.CatalogReview.Comment,
		schema.CatalogReview.ID, schema.CatalogReview.CreatedAt,
	)

	err = tx.QueryRow(ctx, insert,
		review.AppID, review.Author, review.Score, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return 0, dberr.Wrap(err, "App")
	}

	update := fmt.Sprintf(`
		UPDATE %s
		SET %s = (%s * %s + $2) / (%s + 1),
			%s = %s + 1
		WHERE %s = $1
		RETURNING %s`,
		schema.CatalogApp.Table,
		schema.CatalogApp.Rating, schema.CatalogApp.Rating,
		schema.CatalogApp.Votes, schema.CatalogApp.Votes,
		schema.CatalogApp.Votes, schema.CatalogApp.Votes,
		schema.CatalogApp.ID,
		schema.CatalogApp.Votes,
	)

	var votes int
	err = tx.QueryRow(ctx, update, review.AppID, float64(review.Score)).Scan(&votes)
	if err != nil {
		return 0, dberr.Wrap(err, "App")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, dberr.Wrap(err, "Review")
	}
	return votes, nil
}

func (r *PostgresRepository) ListByApp(ctx context.Context, appID, limit, offset int) ([]*Review, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT $2 OFFSET $3`,
		reviewColumns, schema.CatalogReview.Table,
		schema.CatalogReview.AppID,
		schema.CatalogReview.CreatedAt, schema.CatalogReview.ID,
	)

	rows, err := r.db.Query(ctx, query, appID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Review")
	}
	defer rows.Close()

	var (
		reviews []*Review
		total   int
	)
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID, &review.AppID, &review.Author,
			&review.Score, &review.Comment, &review.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Review")
		}
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Review")
	}
	return reviews, total, nil
}
