package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vitrineapp/vitrine/internal/platform/database/schema"
	"github.com/vitrineapp/vitrine/internal/platform/dberr"
	"github.com/vitrineapp/vitrine/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on top of PostgreSQL.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository creates a PostgreSQL-backed app repository.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// appColumns is the stable select list shared by every app query.
var appColumns = strings.Join(schema.CatalogApp.Columns(), ", ")

func scanApp(row pgx.Row) (*App, error) {
	var app App
	err := row.Scan(
		&app.ID, &app.Name, &app.Slug, &app.Description, &app.URL,
		&app.Category, &app.IconURL, &app.ExternalRating, &app.Rating,
		&app.Votes, &app.IsApproved, &app.URLOk, &app.URLCheckedAt,
		&app.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// # Reads

func (r *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*App, int, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if !filter.IncludeUnapproved {
		conditions = append(conditions, fmt.Sprintf("%s = TRUE", schema.CatalogApp.IsApproved))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", schema.CatalogApp.Name, len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", schema.CatalogApp.Category, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var orderBy string
	switch filter.Sort {
	case SortRating:
		orderBy = fmt.Sprintf("%s DESC, %s DESC", schema.CatalogApp.Rating, schema.CatalogApp.Votes)
	case SortPopular:
		orderBy = fmt.Sprintf("%s DESC, %s DESC", schema.CatalogApp.Votes, schema.CatalogApp.Rating)
	default:
		orderBy = fmt.Sprintf("%s DESC", schema.CatalogApp.CreatedAt)
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM %s
		%s
		ORDER BY %s, %s DESC
		LIMIT $%d OFFSET $%d`,
		appColumns, schema.CatalogApp.Table, where, orderBy, schema.CatalogApp.ID,
		limitPos, offsetPos,
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "App")
	}
	defer rows.Close()

	var (
		apps  []*App
		total int
	)
	for rows.Next() {
		var app App
		err := rows.Scan(
			&app.ID, &app.Name, &app.Slug, &app.Description, &app.URL,
			&app.Category, &app.IconURL, &app.ExternalRating, &app.Rating,
			&app.Votes, &app.IsApproved, &app.URLOk, &app.URLCheckedAt,
			&app.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "App")
		}
		apps = append(apps, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "App")
	}
	return apps, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*App, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		appColumns, schema.CatalogApp.Table, schema.CatalogApp.ID)

	app, err := scanApp(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "App")
	}
	return app, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*App, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		appColumns, schema.CatalogApp.Table, schema.CatalogApp.Slug)

	app, err := scanApp(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "App")
	}
	return app, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s = TRUE ORDER BY %s",
		schema.CatalogApp.Category, schema.CatalogApp.Table,
		schema.CatalogApp.IsApproved, schema.CatalogApp.Category,
	)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "App")
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, dberr.Wrap(err, "App")
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "App")
	}
	return categories, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.CatalogApp.Table)

	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "App")
	}
	return count, nil
}

// # Writes

func (r *PostgresRepository) Create(ctx context.Context, app *App) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s, %s`,
		schema.CatalogApp.Table,
		schema.CatalogApp.Name, schema.CatalogApp.Slug,
		schema.CatalogApp.Description, schema.CatalogApp.URL,
		schema.CatalogApp.Category, schema.CatalogApp.IconURL,
		schema.CatalogApp.ExternalRating, schema.CatalogApp.IsApproved,
		schema.CatalogApp.Rating, schema.CatalogApp.Votes,
		schema.CatalogApp.ID, schema.CatalogApp.CreatedAt,
	)

	err := r.db.QueryRow(ctx, query,
		app.Name, app.Slug, app.Description, app.URL,
		app.Category, app.IconURL, app.ExternalRating, app.IsApproved,
		app.Rating, app.Votes,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "App")
	}
	return nil
}

func (r *PostgresRepository) CreateBatch(ctx context.Context, apps []*App) error {
	if len(apps) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "App")
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s, %s`,
		schema.CatalogApp.Table,
		schema.CatalogApp.Name, schema.CatalogApp.Slug,
		schema.CatalogApp.Description, schema.CatalogApp.URL,
		schema.CatalogApp.Category, schema.CatalogApp.IconURL,
		schema.CatalogApp.ExternalRating, schema.CatalogApp.IsApproved,
		schema.CatalogApp.Rating, schema.CatalogApp.Votes,
		schema.CatalogApp.ID, schema.CatalogApp.CreatedAt,
	)

	for _, app := range apps {
		err := tx.QueryRow(ctx, query,
			app.Name, app.Slug, app.Description, app.URL,
			app.Category, app.IconURL, app.ExternalRating, app.IsApproved,
			app.Rating, app.Votes,
		).Scan(&app.ID, &app.CreatedAt)
		if err != nil {
			return dberr.Wrap(err, "App")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "App")
	}
	return nil
}

// RecordRating folds a new score into the running average in one statement.
// Both sides of the read-combine-write live inside the same UPDATE, so two
// concurrent votes serialize on the row and neither increment is lost.
func (r *PostgresRepository) RecordRating(ctx context.Context, id, score int) (*App, error) {
	query := fmt.Sprintf(`
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
		appColumns,
	)

	app, err := scanApp(r.db.QueryRow(ctx, query, id, float64(score)))
	if err != nil {
		return nil, dberr.Wrap(err, "App")
	}
	return app, nil
}

func (r *PostgresRepository) SetApproval(ctx context.Context, id int, approved bool) (*App, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2 WHERE %s = $1
		RETURNING %s`,
		schema.CatalogApp.Table, schema.CatalogApp.IsApproved,
		schema.CatalogApp.ID, appColumns,
	)

	app, err := scanApp(r.db.QueryRow(ctx, query, id, approved))
	if err != nil {
		return nil, dberr.Wrap(err, "App")
	}
	return app, nil
}

func (r *PostgresRepository) SetURLStatus(ctx context.Context, id int, ok bool) error {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1",
		schema.CatalogApp.Table, schema.CatalogApp.URLOk,
		schema.CatalogApp.URLCheckedAt, schema.CatalogApp.ID,
	)

	tag, err := r.db.Exec(ctx, query, id, ok)
	if err != nil {
		return dberr.Wrap(err, "App")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "App")
	}
	return nil
}

func (r *PostgresRepository) SetDescription(ctx context.Context, id int, description string) error {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $2 WHERE %s = $1",
		schema.CatalogApp.Table, schema.CatalogApp.Description, schema.CatalogApp.ID,
	)

	tag, err := r.db.Exec(ctx, query, id, description)
	if err != nil {
		return dberr.Wrap(err, "App")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "App")
	}
	return nil
}
