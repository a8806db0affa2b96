package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/domain/entity"
)

// AuthUsecase handles password sign-in and the session lifecycle that follows it.
type AuthUsecase struct {
	users  UserRepository
	issuer *SessionIssuer
}

// NewAuthUsecase creates a new AuthUsecase with the provided dependencies.
func NewAuthUsecase(users UserRepository, issuer *SessionIssuer) *AuthUsecase {
	return &AuthUsecase{users: users, issuer: issuer}
}

// Login authenticates a user with email and password and issues a session.
// Unknown email, wrong password and OAuth-only accounts all yield ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation("Email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Compare against a dummy hash so that a missing account takes as long as a wrong password.
			CheckPassword(nil, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		slog.Info("login rejected", "user_id", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := u.issuer.Issue(ctx, user, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return u.issuer.Refresh(ctx, refreshToken)
}

// Logout revokes the session behind refreshToken.
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.issuer.Revoke(ctx, refreshToken)
}

// Profile returns the user identified by an access token subject.
func (u *AuthUsecase) Profile(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
