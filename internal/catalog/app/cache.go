package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitrineapp/vitrine/internal/platform/constants"
)

// Cache is a read-through cache for the hot catalog queries: the public
// listing pages and the category index. Both are invalidated wholesale on any
// write; the data set is small enough that recomputation is cheap.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCache creates an app cache backed by the shared Redis client.
func NewCache(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// cachedList is the stored shape of one listing page.
type cachedList struct {
	Apps  []*App `json:"apps"`
	Total int    `json:"total"`
}

func listKey(filter Filter, limit, offset int) string {
	return fmt.Sprintf("%s%s:%s:%d:%d",
		constants.RedisPrefixAppList, filter.Category, filter.Sort, limit, offset)
}

// GetList returns a cached listing page, or ok=false on miss or error.
// Cache failures are logged and swallowed; Redis being down degrades to
// database reads, it never takes the catalog down with it.
func (c *Cache) GetList(ctx context.Context, filter Filter, limit, offset int) ([]*App, int, bool) {
	payload, err := c.client.Get(ctx, listKey(filter, limit, offset)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "app list cache read failed", slog.Any("error", err))
		}
		return nil, 0, false
	}

	var entry cachedList
	if err := json.Unmarshal(payload, &entry); err != nil {
		c.logger.WarnContext(ctx, "app list cache entry corrupt", slog.Any("error", err))
		return nil, 0, false
	}
	return entry.Apps, entry.Total, true
}

// SetList stores a listing page with a short TTL.
func (c *Cache) SetList(ctx context.Context, filter Filter, limit, offset int, apps []*App, total int) {
	payload, err := json.Marshal(cachedList{Apps: apps, Total: total})
	if err != nil {
		return
	}
	err = c.client.Set(ctx, listKey(filter, limit, offset), payload, constants.AppListCacheTTL).Err()
	if err != nil {
		c.logger.WarnContext(ctx, "app list cache write failed", slog.Any("error", err))
	}
}

// GetCategories returns the cached category index, or ok=false on miss.
func (c *Cache) GetCategories(ctx context.Context) ([]string, bool) {
	payload, err := c.client.Get(ctx, constants.RedisKeyCategories).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "category cache read failed", slog.Any("error", err))
		}
		return nil, false
	}

	var categories []string
	if err := json.Unmarshal(payload, &categories); err != nil {
		return nil, false
	}
	return categories, true
}

// SetCategories stores the category index.
func (c *Cache) SetCategories(ctx context.Context, categories []string) {
	payload, err := json.Marshal(categories)
	if err != nil {
		return
	}
	err = c.client.Set(ctx, constants.RedisKeyCategories, payload, constants.CategoriesCacheTTL).Err()
	if err != nil {
		c.logger.WarnContext(ctx, "category cache write failed", slog.Any("error", err))
	}
}

// Invalidate drops every cached listing page and the category index.
// Called after any write that can change what the public catalog shows.
func (c *Cache) Invalidate(ctx context.Context) {
	deadline, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Del(deadline, constants.RedisKeyCategories).Err(); err != nil {
		c.logger.WarnContext(ctx, "category cache invalidation failed", slog.Any("error", err))
	}

	iter := c.client.Scan(deadline, 0, constants.RedisPrefixAppList+"*", 100).Iterator()
	var keys []string
	for iter.Next(deadline) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WarnContext(ctx, "app list cache scan failed", slog.Any("error", err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(deadline, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "app list cache invalidation failed", slog.Any("error", err))
	}
}
