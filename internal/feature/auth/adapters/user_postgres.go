// Package adapters provides repository implementations for the auth feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/usecase"
	platformdb "expense_tracker/internal/platform/db"
)

// userPostgres is a GORM implementation of the UserRepository interface.
// It runs against PostgreSQL in production and sqlite in tests.
type userPostgres struct {
	db *gorm.DB
}

// Compile-time check to ensure userPostgres implements UserRepository.
var _ usecase.UserRepository = (*userPostgres)(nil)

// NewUserPostgres creates a new userPostgres with the given connection.
func NewUserPostgres(db *gorm.DB) *userPostgres {
	return &userPostgres{db: db}
}

// Create inserts the user.
// It returns usecase.ErrEmailAlreadyExists when the email is already taken.
func (r *userPostgres) Create(ctx context.Context, u *entity.User) error {
	if err := platformdb.Conn(ctx, r.db).Create(u).Error; err != nil {
		if platformdb.IsDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail returns usecase.ErrUserNotFound if no user has the email.
func (r *userPostgres) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID returns usecase.ErrUserNotFound if no user has the id.
func (r *userPostgres) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByOAuth returns usecase.ErrUserNotFound if no user is linked to provider+subject.
func (r *userPostgres) FindByOAuth(ctx context.Context, provider, subject string) (*entity.User, error) {
	return r.first(ctx, "oauth_provider = ? AND oauth_id = ?", provider, subject)
}

// LinkOAuth sets the provider identity of a user.
func (r *userPostgres) LinkOAuth(ctx context.Context, id uint, provider, subject string) error {
	result := platformdb.Conn(ctx, r.db).
		Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"oauth_provider": provider, "oauth_id": subject})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored hash.
func (r *userPostgres) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	result := platformdb.Conn(ctx, r.db).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func (r *userPostgres) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var u entity.User
	if err := platformdb.Conn(ctx, r.db).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
