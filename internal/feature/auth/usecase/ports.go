package usecase

import (
	"context"
	"time"

	"expense_tracker/internal/feature/auth/domain/entity"
)

// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).

// TxManager runs fn inside one database transaction; repositories called with the
// ctx passed to fn take part in it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository abstracts the persistence layer for confirmed accounts.
type UserRepository interface {
	// Create persists a new user. It returns ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a user by normalized email. It returns ErrUserNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a user by ID. It returns ErrUserNotFound if absent.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByOAuth retrieves the user linked to provider+subject. It returns ErrUserNotFound if absent.
	FindByOAuth(ctx context.Context, provider, subject string) (*entity.User, error)

	// LinkOAuth stores provider+subject on an existing user.
	LinkOAuth(ctx context.Context, id uint, provider, subject string) error

	// UpdatePasswordHash replaces the credential hash. It returns ErrUserNotFound if absent.
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

// PendingUserRepository abstracts the staging table for unverified signups.
type PendingUserRepository interface {
	// Create inserts a pending user. It returns ErrPendingEmailExists on a duplicate email.
	Create(ctx context.Context, p *entity.PendingUser) error

	// FindByID returns ErrPendingUserNotFound if absent.
	FindByID(ctx context.Context, id uint) (*entity.PendingUser, error)

	// FindByEmail returns ErrPendingUserNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*entity.PendingUser, error)

	// Update writes name, password hash, last_otp_sent and otp_attempts.
	Update(ctx context.Context, p *entity.PendingUser) error

	// IncrementOTPAttempts adds one to otp_attempts.
	IncrementOTPAttempts(ctx context.Context, id uint) error

	// Delete removes the pending user together with its verification codes.
	Delete(ctx context.Context, id uint) error
}

// VerificationRepository abstracts one-time code storage.
type VerificationRepository interface {
	Create(ctx context.Context, v *entity.EmailVerification) error

	// FindActive returns the newest unused code of a pending user, or ErrVerificationNotFound.
	FindActive(ctx context.Context, pendingUserID uint) (*entity.EmailVerification, error)

	IncrementAttempts(ctx context.Context, id uint) error

	// DeleteUnusedExcept removes every unused code of a pending user other than keepID.
	DeleteUnusedExcept(ctx context.Context, pendingUserID, keepID uint) (int64, error)

	// DeleteByPendingUser removes every code of a pending user.
	DeleteByPendingUser(ctx context.Context, pendingUserID uint) error

	Delete(ctx context.Context, id uint) error
}

// ResetTokenRepository abstracts password reset token storage.
type ResetTokenRepository interface {
	Create(ctx context.Context, t *entity.PasswordResetToken) error

	// FindByToken returns ErrResetTokenNotFound if absent.
	FindByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error)

	// DeleteUnusedByUser removes every unused token of a user.
	DeleteUnusedByUser(ctx context.Context, userID uint) (int64, error)

	// Consume marks an unused, unexpired token as used with a single conditional update
	// and returns it. It returns ErrResetTokenNotFound when nothing was updated.
	Consume(ctx context.Context, token string, now time.Time) (*entity.PasswordResetToken, error)

	Delete(ctx context.Context, id uint) error
}

// SessionRepository abstracts the persistence layer for refresh sessions.
type SessionRepository interface {
	// Create persists a new session to the storage.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its ID (refresh token value).
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke marks a session as revoked by setting RevokedAt.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID revokes all sessions for a given user.
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// DeleteExpired removes all expired sessions from storage.
	// Returns the number of deleted sessions.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountByUserID returns the number of active sessions for a user.
	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID deletes the oldest session for a user.
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}

// JWTGenerator defines the interface for access token generation.
type JWTGenerator interface {
	// GenerateToken creates a signed access token for the given user.
	GenerateToken(userID uint, email string) (string, error)
}

// Mailer delivers an HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Identity is a verified assertion from an external identity provider.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Issuer        string
}

// IdentityVerifier checks a raw identity token with its provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}
