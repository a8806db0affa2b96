// Package usecase implements the periodic purge of expired and orphaned rows.
package usecase

import (
	"context"
	"time"
)

// Store deletes stale rows. Each method is one short statement or transaction and
// returns the number of rows removed.
type Store interface {
	DeleteExpiredPendingUsers(ctx context.Context, createdBefore time.Time) (int64, error)
	DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error)
	DeleteStaleResetTokens(ctx context.Context, now time.Time) (int64, error)
	DeleteRateLimitLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOrphanExpenses(ctx context.Context) (int64, error)
	DeleteOrphanCategories(ctx context.Context) (int64, error)
}

// SessionPurger removes expired refresh sessions from whichever store holds them.
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StatsRepository counts rows per table.
type StatsRepository interface {
	TableCounts(ctx context.Context) (map[string]int64, error)
}
