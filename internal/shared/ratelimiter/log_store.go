package ratelimiter

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// gormStore is the relational Store implementation.
type gormStore struct {
	db *gorm.DB
}

// Compile-time check to ensure gormStore implements Store.
var _ Store = (*gormStore)(nil)

// NewGormStore creates a Store on the rate_limit_logs table.
func NewGormStore(db *gorm.DB) *gormStore {
	return &gormStore{db: db}
}

// CountSince counts attempts for ip+endpoint newer than since.
func (s *gormStore) CountSince(ctx context.Context, ip, endpoint string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Log{}).
		Where("ip_address = ? AND endpoint = ? AND attempt_time > ?", ip, endpoint, since).
		Count(&count).Error
	return count, err
}

// Insert records an attempt.
func (s *gormStore) Insert(ctx context.Context, entry *Log) error {
	return s.db.WithContext(ctx).Create(entry).Error
}
