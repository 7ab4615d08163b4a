// Copyright (c) 2026 Vitrine. All rights reserved.

package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineapp/vitrine/internal/catalog/app"
)

func newTestCache(t *testing.T) (*app.Cache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return app.NewCache(client, slog.New(slog.NewTextHandler(io.Discard, nil))), server
}

/*
TestCache_ListRoundTrip stores and retrieves a listing page per filter key.
*/
func TestCache_ListRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	filter := app.Filter{Category: "Design", Sort: app.SortRating}
	apps := []*app.App{{ID: 7, Name: "Figma", Slug: "figma", Votes: 2, Rating: 4.5}}

	_, _, ok := cache.GetList(ctx, filter, 20, 0)
	assert.False(t, ok, "cold cache misses")

	cache.SetList(ctx, filter, 20, 0, apps, 41)

	cached, total, ok := cache.GetList(ctx, filter, 20, 0)
	require.True(t, ok)
	assert.Equal(t, 41, total)
	require.Len(t, cached, 1)
	assert.Equal(t, "figma", cached[0].Slug)

	// A different page is a different key.
	_, _, ok = cache.GetList(ctx, filter, 20, 20)
	assert.False(t, ok)
}

/*
TestCache_Categories round-trips the category index.
*/
func TestCache_Categories(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.GetCategories(ctx)
	assert.False(t, ok)

	cache.SetCategories(ctx, []string{"AI", "Design"})

	categories, ok := cache.GetCategories(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"AI", "Design"}, categories)
}

/*
TestCache_Invalidate drops every listing page and the category index at once.
*/
func TestCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetCategories(ctx, []string{"AI"})
	cache.SetList(ctx, app.Filter{Sort: app.SortNewest}, 20, 0, nil, 0)
	cache.SetList(ctx, app.Filter{Category: "AI", Sort: app.SortRating}, 20, 0, nil, 0)

	cache.Invalidate(ctx)

	_, ok := cache.GetCategories(ctx)
	assert.False(t, ok)
	_, _, ok = cache.GetList(ctx, app.Filter{Sort: app.SortNewest}, 20, 0)
	assert.False(t, ok)
	_, _, ok = cache.GetList(ctx, app.Filter{Category: "AI", Sort: app.SortRating}, 20, 0)
	assert.False(t, ok)
}

/*
TestCache_DegradesWhenRedisDown treats cache failure as a miss so catalog
reads fall through to the database.
*/
func TestCache_DegradesWhenRedisDown(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	server.Close()

	_, _, ok := cache.GetList(ctx, app.Filter{Sort: app.SortNewest}, 20, 0)
	assert.False(t, ok)
	_, ok = cache.GetCategories(ctx)
	assert.False(t, ok)

	// Writes and invalidation must not panic either.
	cache.SetCategories(ctx, []string{"AI"})
	cache.Invalidate(ctx)
}
