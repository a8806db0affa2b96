package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	cleanupadapters "expense_tracker/internal/feature/cleanup/adapters"
	"expense_tracker/internal/feature/cleanup/usecase"
	"expense_tracker/internal/platform/cache"
)

// NewStatsRepository counts rows of StatsTables, cached in Redis when rdb is non-nil.
func NewStatsRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.StatsRepository {
	return cache.NewCachingStatsRepository(rdb, ttl, cleanupadapters.NewStatsPostgres(db, StatsTables()))
}
