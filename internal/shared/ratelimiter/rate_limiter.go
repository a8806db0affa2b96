// Package ratelimiter limits calls per client IP and endpoint with a fixed window
// counted over persisted attempt rows.
package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited is returned when the attempt budget for the window is exhausted.
var ErrRateLimited = errors.New("rate limit exceeded")

// Log is one admitted call to a rate-limited endpoint.
type Log struct {
	ID          uint      `gorm:"primaryKey"`
	IPAddress   string    `gorm:"size:45;not null;index:idx_rate_limit_lookup,priority:1"`
	Endpoint    string    `gorm:"size:100;not null;index:idx_rate_limit_lookup,priority:2"`
	AttemptTime time.Time `gorm:"not null;index;index:idx_rate_limit_lookup,priority:3"`
}

// TableName returns the table name for GORM.
func (Log) TableName() string {
	return "rate_limit_logs"
}

// Store persists attempt rows.
// Following Go convention: interfaces are defined by the consumer, not the provider.
type Store interface {
	// CountSince counts attempts for ip+endpoint strictly newer than since.
	CountSince(ctx context.Context, ip, endpoint string, since time.Time) (int64, error)
	// Insert records an admitted attempt.
	Insert(ctx context.Context, entry *Log) error
}

// Limiter decides whether a call is admitted.
type Limiter struct {
	store Store
	now   func() time.Time
}

// NewLimiter creates a Limiter backed by store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow admits the call and records it, or returns ErrRateLimited without recording.
// Store failures are returned as errors so callers fail closed.
func (l *Limiter) Allow(ctx context.Context, ip, endpoint string, limit int, window time.Duration) error {
	now := l.now().UTC()

	count, err := l.store.CountSince(ctx, ip, endpoint, now.Add(-window))
	if err != nil {
		return fmt.Errorf("failed to count attempts: %w", err)
	}
	if count >= int64(limit) {
		return ErrRateLimited
	}

	if err := l.store.Insert(ctx, &Log{IPAddress: ip, Endpoint: endpoint, AttemptTime: now}); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}
