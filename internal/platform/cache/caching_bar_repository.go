// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_collector/internal/feature/marketdata/domain/entity"
	"stock_collector/internal/feature/marketdata/usecase"
)

// CachingBarRepository decorates a BarRepository with Redis caching.
// Reads are served from cache when possible; every successful write
// invalidates the cached reads for the affected symbols.
type CachingBarRepository struct {
	inner     usecase.BarRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingBarRepository decorates a BarRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "bars".
func NewCachingBarRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BarRepository, namespace string) *CachingBarRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingBarRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch writes bars through to the underlying repository and
// invalidates the cache entries of every symbol in the batch.
func (c *CachingBarRepository) UpsertBatch(ctx context.Context, bars []entity.Bar) (usecase.WriteResult, error) {
	res, err := c.inner.UpsertBatch(ctx, bars)
	if err != nil {
		return res, err
	}
	if c.rdb == nil || len(bars) == 0 {
		return res, nil
	}

	seen := map[string]struct{}{}
	for _, b := range bars {
		prefix := c.cacheKeyPrefix(b.Symbol)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		// Best effort: a stale cache entry expires on its own anyway
		_ = c.deleteByPattern(ctx, prefix+"*")
	}
	return res, nil
}

// Find retrieves bars, checking cache first then falling back to the database.
func (c *CachingBarRepository) Find(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, outputsize)
	}

	key := c.cacheKey(symbol, outputsize)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Bar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// 壊れたエントリは削除してDBから読み直す
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Find(ctx, symbol, outputsize)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

func (c *CachingBarRepository) cacheKey(symbol string, outputsize int) string {
	return fmt.Sprintf("%s:%s:%d", c.namespace, safe(symbol), outputsize)
}

func (c *CachingBarRepository) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingBarRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
