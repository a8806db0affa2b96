// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"expense_tracker/internal/feature/cleanup/usecase"
)

const defaultStatsKey = "stats:table_counts"

// CachingStatsRepository decorates a StatsRepository with Redis caching.
// Table counts are read on every /stats call but change slowly, so a short TTL
// takes the COUNT(*) load off the database.
type CachingStatsRepository struct {
	inner usecase.StatsRepository
	rdb   *redis.Client
	ttl   time.Duration
	key   string
}

var _ usecase.StatsRepository = (*CachingStatsRepository)(nil)

// NewCachingStatsRepository wraps inner. If ttl is 0, it defaults to 30 seconds.
// A nil client disables caching.
func NewCachingStatsRepository(rdb *redis.Client, ttl time.Duration, inner usecase.StatsRepository) *CachingStatsRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachingStatsRepository{inner: inner, rdb: rdb, ttl: ttl, key: defaultStatsKey}
}

// TableCounts serves from cache when possible and falls back to the inner repository.
func (c *CachingStatsRepository) TableCounts(ctx context.Context) (map[string]int64, error) {
	if c.rdb == nil {
		return c.inner.TableCounts(ctx)
	}

	if b, err := c.rdb.Get(ctx, c.key).Bytes(); err == nil && len(b) > 0 {
		var out map[string]int64
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, c.key).Err()
	}

	out, err := c.inner.TableCounts(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, c.key, b, c.ttl).Err()
	}
	return out, nil
}

// Invalidate drops the cached counts, e.g. after a cleanup pass deleted rows.
func (c *CachingStatsRepository) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key).Err()
}
