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

// sessionPostgres stores refresh sessions in the relational database.
// It is used when Redis is not configured.
type sessionPostgres struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure sessionPostgres implements SessionRepository.
var _ usecase.SessionRepository = (*sessionPostgres)(nil)

// NewSessionPostgres creates a new instance of sessionPostgres.
func NewSessionPostgres(db *gorm.DB) *sessionPostgres {
	return &sessionPostgres{db: db, now: time.Now}
}

// Create persists a new session to the database.
func (r *sessionPostgres) Create(ctx context.Context, session *entity.Session) error {
	return platformdb.Conn(ctx, r.db).Create(session).Error
}

// FindByID retrieves a session by its refresh token ID.
func (r *sessionPostgres) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var session entity.Session
	if err := platformdb.Conn(ctx, r.db).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Revoke marks a session as revoked by its ID.
func (r *sessionPostgres) Revoke(ctx context.Context, id string) error {
	result := platformdb.Conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ?", id).
		Update("revoked_at", r.now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes all sessions for a given user.
func (r *sessionPostgres) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return platformdb.Conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now().UTC()).Error
}

// DeleteExpired removes all expired sessions from storage.
func (r *sessionPostgres) DeleteExpired(ctx context.Context) (int64, error) {
	result := platformdb.Conn(ctx, r.db).
		Where("expires_at < ?", r.now().UTC()).
		Delete(&entity.Session{})
	return result.RowsAffected, result.Error
}

// CountByUserID returns the number of active sessions for a user.
func (r *sessionPostgres) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.active(ctx, userID).Model(&entity.Session{}).Count(&count).Error
	return count, err
}

// DeleteOldestByUserID deletes the oldest active session for a user.
func (r *sessionPostgres) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	var oldest entity.Session
	if err := r.active(ctx, userID).Order("created_at ASC").First(&oldest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return platformdb.Conn(ctx, r.db).Delete(&entity.Session{}, "id = ?", oldest.ID).Error
}

func (r *sessionPostgres) active(ctx context.Context, userID uint) *gorm.DB {
	return platformdb.Conn(ctx, r.db).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, r.now().UTC())
}
