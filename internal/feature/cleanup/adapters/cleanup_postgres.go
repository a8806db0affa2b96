// Package adapters implements the cleanup store on the relational database.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	authentity "expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/cleanup/usecase"
	expenseentity "expense_tracker/internal/feature/expense/domain/entity"
	"expense_tracker/internal/shared/ratelimiter"
)

type cleanupPostgres struct {
	db *gorm.DB
}

var _ usecase.Store = (*cleanupPostgres)(nil)

// NewCleanupPostgres creates the cleanup store.
func NewCleanupPostgres(db *gorm.DB) *cleanupPostgres {
	return &cleanupPostgres{db: db}
}

// DeleteExpiredPendingUsers removes the verification codes of expired registrations
// and then the registrations, in one transaction.
func (r *cleanupPostgres) DeleteExpiredPendingUsers(ctx context.Context, createdBefore time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&authentity.PendingUser{}).Select("id").Where("created_at < ?", createdBefore)
		if err := tx.Where("pending_user_id IN (?)", expired).Delete(&authentity.EmailVerification{}).Error; err != nil {
			return err
		}
		result := tx.Where("created_at < ?", createdBefore).Delete(&authentity.PendingUser{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *cleanupPostgres) DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&authentity.EmailVerification{})
	return result.RowsAffected, result.Error
}

// DeleteStaleResetTokens removes tokens that are expired or already used.
func (r *cleanupPostgres) DeleteStaleResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR used = ?", now, true).
		Delete(&authentity.PasswordResetToken{})
	return result.RowsAffected, result.Error
}

func (r *cleanupPostgres) DeleteRateLimitLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("attempt_time < ?", cutoff).Delete(&ratelimiter.Log{})
	return result.RowsAffected, result.Error
}

// DeleteOrphanExpenses removes entries whose owner no longer exists.
func (r *cleanupPostgres) DeleteOrphanExpenses(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	users := db.Model(&authentity.User{}).Select("id")
	result := db.Where("user_id NOT IN (?)", users).Delete(&expenseentity.Expense{})
	return result.RowsAffected, result.Error
}

// DeleteOrphanCategories removes user-owned categories whose owner no longer exists.
// System defaults (NULL owner) are never touched.
func (r *cleanupPostgres) DeleteOrphanCategories(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	users := db.Model(&authentity.User{}).Select("id")
	result := db.Where("user_id IS NOT NULL AND user_id NOT IN (?)", users).Delete(&expenseentity.Category{})
	return result.RowsAffected, result.Error
}
