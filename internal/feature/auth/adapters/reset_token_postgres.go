package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/usecase"
	platformdb "expense_tracker/internal/platform/db"
)

type resetTokenPostgres struct {
	db *gorm.DB
}

var _ usecase.ResetTokenRepository = (*resetTokenPostgres)(nil)

// NewResetTokenPostgres creates the password reset token repository.
func NewResetTokenPostgres(db *gorm.DB) *resetTokenPostgres {
	return &resetTokenPostgres{db: db}
}

func (r *resetTokenPostgres) Create(ctx context.Context, t *entity.PasswordResetToken) error {
	return platformdb.Conn(ctx, r.db).Create(t).Error
}

func (r *resetTokenPostgres) FindByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	var t entity.PasswordResetToken
	if err := platformdb.Conn(ctx, r.db).Where("token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrResetTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *resetTokenPostgres) DeleteUnusedByUser(ctx context.Context, userID uint) (int64, error) {
	result := platformdb.Conn(ctx, r.db).
		Where("user_id = ? AND used = ?", userID, false).
		Delete(&entity.PasswordResetToken{})
	return result.RowsAffected, result.Error
}

// Consume flips used to true only if the token is still unused and unexpired.
// RowsAffected tells the winner of concurrent redemptions apart from the losers.
func (r *resetTokenPostgres) Consume(ctx context.Context, token string, now time.Time) (*entity.PasswordResetToken, error) {
	conn := platformdb.Conn(ctx, r.db)
	result := conn.Model(&entity.PasswordResetToken{}).
		Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
		Update("used", true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, usecase.ErrResetTokenNotFound
	}
	return r.FindByToken(ctx, token)
}

func (r *resetTokenPostgres) Delete(ctx context.Context, id uint) error {
	return platformdb.Conn(ctx, r.db).Delete(&entity.PasswordResetToken{}, id).Error
}
