package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/usecase"
	platformdb "expense_tracker/internal/platform/db"
)

type pendingUserPostgres struct {
	db *gorm.DB
}

var _ usecase.PendingUserRepository = (*pendingUserPostgres)(nil)

// NewPendingUserPostgres creates the pending registration repository.
func NewPendingUserPostgres(db *gorm.DB) *pendingUserPostgres {
	return &pendingUserPostgres{db: db}
}

func (r *pendingUserPostgres) Create(ctx context.Context, p *entity.PendingUser) error {
	if err := platformdb.Conn(ctx, r.db).Create(p).Error; err != nil {
		if platformdb.IsDuplicateKey(err) {
			return usecase.ErrPendingEmailExists
		}
		return err
	}
	return nil
}

func (r *pendingUserPostgres) FindByID(ctx context.Context, id uint) (*entity.PendingUser, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *pendingUserPostgres) FindByEmail(ctx context.Context, email string) (*entity.PendingUser, error) {
	return r.first(ctx, "email = ?", email)
}

// Update writes the mutable columns, including zero values.
func (r *pendingUserPostgres) Update(ctx context.Context, p *entity.PendingUser) error {
	result := platformdb.Conn(ctx, r.db).
		Model(&entity.PendingUser{}).
		Where("id = ?", p.ID).
		Select("name", "password_hash", "last_otp_sent", "otp_attempts").
		Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrPendingUserNotFound
	}
	return nil
}

func (r *pendingUserPostgres) IncrementOTPAttempts(ctx context.Context, id uint) error {
	return platformdb.Conn(ctx, r.db).
		Model(&entity.PendingUser{}).
		Where("id = ?", id).
		UpdateColumn("otp_attempts", gorm.Expr("otp_attempts + 1")).Error
}

// Delete removes the codes first, then the pending user, in one transaction.
func (r *pendingUserPostgres) Delete(ctx context.Context, id uint) error {
	return platformdb.NewTxManager(r.db).WithinTx(ctx, func(ctx context.Context) error {
		conn := platformdb.Conn(ctx, r.db)
		if err := conn.Where("pending_user_id = ?", id).Delete(&entity.EmailVerification{}).Error; err != nil {
			return err
		}
		return conn.Delete(&entity.PendingUser{}, id).Error
	})
}

func (r *pendingUserPostgres) first(ctx context.Context, query string, args ...any) (*entity.PendingUser, error) {
	var p entity.PendingUser
	if err := platformdb.Conn(ctx, r.db).Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPendingUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

type verificationPostgres struct {
	db *gorm.DB
}

var _ usecase.VerificationRepository = (*verificationPostgres)(nil)

// NewVerificationPostgres creates the one-time code repository.
func NewVerificationPostgres(db *gorm.DB) *verificationPostgres {
	return &verificationPostgres{db: db}
}

func (r *verificationPostgres) Create(ctx context.Context, v *entity.EmailVerification) error {
	return platformdb.Conn(ctx, r.db).Create(v).Error
}

// FindActive returns the newest unused code.
func (r *verificationPostgres) FindActive(ctx context.Context, pendingUserID uint) (*entity.EmailVerification, error) {
	var v entity.EmailVerification
	err := platformdb.Conn(ctx, r.db).
		Where("pending_user_id = ? AND is_used = ?", pendingUserID, false).
		Order("created_at DESC, id DESC").
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrVerificationNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *verificationPostgres) IncrementAttempts(ctx context.Context, id uint) error {
	return platformdb.Conn(ctx, r.db).
		Model(&entity.EmailVerification{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *verificationPostgres) DeleteUnusedExcept(ctx context.Context, pendingUserID, keepID uint) (int64, error) {
	result := platformdb.Conn(ctx, r.db).
		Where("pending_user_id = ? AND is_used = ? AND id <> ?", pendingUserID, false, keepID).
		Delete(&entity.EmailVerification{})
	return result.RowsAffected, result.Error
}

func (r *verificationPostgres) DeleteByPendingUser(ctx context.Context, pendingUserID uint) error {
	return platformdb.Conn(ctx, r.db).
		Where("pending_user_id = ?", pendingUserID).
		Delete(&entity.EmailVerification{}).Error
}

func (r *verificationPostgres) Delete(ctx context.Context, id uint) error {
	return platformdb.Conn(ctx, r.db).Delete(&entity.EmailVerification{}, id).Error
}
