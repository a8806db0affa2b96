package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/domain/entity"
)

// TokenPair is what a client receives after any successful sign-in.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// AuthResult bundles the signed-in user with the issued tokens.
type AuthResult struct {
	User   *entity.User
	Tokens *TokenPair
}

// SessionIssuer mints access tokens and manages the refresh sessions behind them.
type SessionIssuer struct {
	sessions    SessionRepository
	users       UserRepository
	jwt         JWTGenerator
	accessTTL   time.Duration
	refreshTTL  time.Duration
	maxSessions int
	now         func() time.Time
}

// NewSessionIssuer creates a SessionIssuer. maxSessions <= 0 disables the per-user cap.
func NewSessionIssuer(sessions SessionRepository, users UserRepository, jwt JWTGenerator,
	accessTTL, refreshTTL time.Duration, maxSessions int) *SessionIssuer {
	return &SessionIssuer{
		sessions:    sessions,
		users:       users,
		jwt:         jwt,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	s.now = now
	return s
}

// Issue creates a refresh session for user and returns a fresh token pair.
// The oldest sessions are evicted first when the user is at the cap.
func (s *SessionIssuer) Issue(ctx context.Context, user *entity.User, client ClientInfo) (*TokenPair, error) {
	if s.maxSessions > 0 {
		count, err := s.sessions.CountByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count sessions: %w", err)
		}
		for ; count >= int64(s.maxSessions); count-- {
			if err := s.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("failed to evict session: %w", err)
			}
		}
	}

	id, err := GenerateSessionID()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	session := &entity.Session{
		ID:        id,
		UserID:    user.ID,
		UserAgent: truncate(client.UserAgent, 512),
		IPAddress: truncate(client.IPAddress, 45),
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	access, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: id,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
// The refresh token itself is returned unchanged.
func (s *SessionIssuer) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if !sessionIDPattern.MatchString(refreshToken) {
		return nil, domain.ErrInvalidRefreshToken
	}

	session, err := s.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.IsValidAt(s.now()) {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			slog.Warn("session refers to a missing user", "user_id", session.UserID)
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	access, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Revoke ends the session behind refreshToken. Unknown tokens are reported as invalid.
func (s *SessionIssuer) Revoke(ctx context.Context, refreshToken string) error {
	if !sessionIDPattern.MatchString(refreshToken) {
		return domain.ErrInvalidRefreshToken
	}
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return domain.ErrInvalidRefreshToken
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAll ends every session of a user.
func (s *SessionIssuer) RevokeAll(ctx context.Context, userID uint) error {
	if err := s.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
