package dto

import (
	"time"

	"expense_tracker/internal/feature/auth/domain/entity"
)

// UserRes is the public view of a user.
type UserRes struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserRes converts a user entity. Credential fields are never exposed.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

type MessageRes struct {
	Message string `json:"message"`
}

type ErrorRes struct {
	Error string `json:"error"`
}

// RegisterRes answers POST /register. UserID identifies the pending registration.
type RegisterRes struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
}

// AuthRes answers every endpoint that signs a user in.
type AuthRes struct {
	Message      string  `json:"message"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in"`
	User         UserRes `json:"user"`
}

// RefreshRes answers POST /refresh.
type RefreshRes struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type VerifyResetTokenRes struct {
	Message string `json:"message"`
	Valid   bool   `json:"valid"`
}

type ProfileRes struct {
	User UserRes `json:"user"`
}
