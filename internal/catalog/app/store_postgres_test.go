// Copyright (c) 2026 Vitrine. All rights reserved.

package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineapp/vitrine/internal/catalog/app"
	"github.com/vitrineapp/vitrine/internal/platform/dberr"
)

var appRowColumns = []string{
	"id", "name", "slug", "description", "url", "category", "iconurl",
	"externalrating", "rating", "votes", "isapproved", "urlok",
	"urlcheckedat", "createdat",
}

func appRow(id int, rating float64, votes int) *pgxmock.Rows {
	return pgxmock.NewRows(appRowColumns).AddRow(
		id, "Notion", "notion", "Workspace", "https://www.notion.so",
		"Productivity", (*string)(nil), (*float64)(nil), rating, votes,
		true, (*bool)(nil), (*time.Time)(nil), time.Now(),
	)
}

/*
TestPostgresRepository_RecordRating asserts that the vote lands as one UPDATE
carrying both the mean recomputation and the counter increment, with the
score bound as a float so the division stays fractional.
*/
func TestPostgresRepository_RecordRating(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`UPDATE catalog\.app\s+SET rating = \(rating \* votes \+ \$2\) / \(votes \+ 1\),\s+votes = votes \+ 1\s+WHERE id = \$1`).
		WithArgs(7, 5.0).
		WillReturnRows(appRow(7, 4.5, 2))

	repo := app.NewPostgresRepository(mock)
	updated, err := repo.RecordRating(context.Background(), 7, 5)
	require.NoError(t, err)

	assert.Equal(t, 7, updated.ID)
	assert.InDelta(t, 4.5, updated.Rating, 1e-9)
	assert.Equal(t, 2, updated.Votes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_RecordRating_UnknownApp maps a missing row to 404.
*/
func TestPostgresRepository_RecordRating_UnknownApp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`UPDATE catalog\.app`).
		WithArgs(404, 3.0).
		WillReturnError(pgx.ErrNoRows)

	repo := app.NewPostgresRepository(mock)
	_, err = repo.RecordRating(context.Background(), 404, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dberr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_GetByID covers the single-row fetch and its 404 path.
*/
func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM catalog\.app WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(appRow(7, 0, 0))

	repo := app.NewPostgresRepository(mock)
	found, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "notion", found.Slug)
	assert.Equal(t, 0, found.Votes)

	mock.ExpectQuery(`SELECT .+ FROM catalog\.app WHERE id = \$1`).
		WithArgs(8).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), 8)
	assert.True(t, errors.Is(err, dberr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_List verifies filter assembly: approved-only by
default, ILIKE search binding, and the windowed total.
*/
func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(append(appRowColumns, "total")).AddRow(
		7, "Notion", "notion", "Workspace", "https://www.notion.so",
		"Productivity", (*string)(nil), (*float64)(nil), 4.5, 2,
		true, (*bool)(nil), (*time.Time)(nil), time.Now(), 41,
	)

	mock.ExpectQuery(`SELECT .+, COUNT\(\*\) OVER\(\) AS total\s+FROM catalog\.app\s+WHERE isapproved = TRUE AND name ILIKE \$1`).
		WithArgs("%noti%", 20, 0).
		WillReturnRows(rows)

	repo := app.NewPostgresRepository(mock)
	apps, total, err := repo.List(context.Background(),
		app.Filter{Search: "noti", Sort: app.SortNewest}, 20, 0)
	require.NoError(t, err)

	assert.Equal(t, 41, total)
	require.Len(t, apps, 1)
	assert.Equal(t, "notion", apps[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_SetURLStatus turns a zero-row update into 404 instead
of silently succeeding.
*/
func TestPostgresRepository_SetURLStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE catalog\.app SET urlok = \$2, urlcheckedat = NOW\(\) WHERE id = \$1`).
		WithArgs(7, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := app.NewPostgresRepository(mock)
	require.NoError(t, repo.SetURLStatus(context.Background(), 7, true))

	mock.ExpectExec(`UPDATE catalog\.app SET urlok`).
		WithArgs(8, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.SetURLStatus(context.Background(), 8, false)
	assert.True(t, errors.Is(err, dberr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
