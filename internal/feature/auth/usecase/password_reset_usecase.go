package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/domain/entity"
)

// PasswordResetUsecase issues and redeems single-use password reset tokens.
type PasswordResetUsecase struct {
	tx            TxManager
	users         UserRepository
	tokens        ResetTokenRepository
	mailer        Mailer
	issuer        *SessionIssuer
	policy        Policy
	now           func() time.Time
	generateToken func() (string, error)
}

// NewPasswordResetUsecase creates a PasswordResetUsecase.
func NewPasswordResetUsecase(tx TxManager, users UserRepository, tokens ResetTokenRepository,
	mailer Mailer, issuer *SessionIssuer, policy Policy) *PasswordResetUsecase {
	return &PasswordResetUsecase{
		tx:            tx,
		users:         users,
		tokens:        tokens,
		mailer:        mailer,
		issuer:        issuer,
		policy:        policy,
		now:           time.Now,
		generateToken: GenerateResetToken,
	}
}

// WithClock replaces the time source.
func (u *PasswordResetUsecase) WithClock(now func() time.Time) *PasswordResetUsecase {
	u.now = now
	return u
}

// ForgotPassword emails a reset link to a verified account. The caller cannot tell
// whether the address is registered: unknown emails and delivery failures both
// return nil.
func (u *PasswordResetUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if !IsValidEmailFormat(email) {
		return domain.Validation("Invalid email format")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsVerified {
		return nil
	}

	value, err := u.generateToken()
	if err != nil {
		return err
	}
	now := u.now().UTC()
	token := &entity.PasswordResetToken{
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: now.Add(u.policy.ResetTokenTTL),
		CreatedAt: now,
	}
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := u.tokens.DeleteUnusedByUser(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to invalidate reset tokens: %w", err)
		}
		if err := u.tokens.Create(ctx, token); err != nil {
			return fmt.Errorf("failed to create reset token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := u.sendResetLink(ctx, user, value); err != nil {
		slog.Error("failed to send password reset email", "user_id", user.ID, "error", err)
		if derr := u.tokens.Delete(context.WithoutCancel(ctx), token.ID); derr != nil {
			slog.Error("failed to remove undelivered reset token", "user_id", user.ID, "error", derr)
		}
	}
	return nil
}

// VerifyResetToken reports whether token can still be redeemed.
func (u *PasswordResetUsecase) VerifyResetToken(ctx context.Context, token string) error {
	if !resetTokenPattern.MatchString(token) {
		return domain.ErrInvalidResetToken
	}
	t, err := u.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}
	if !t.IsValid(u.now()) {
		return domain.ErrInvalidResetToken
	}
	return nil
}

// ResetPassword redeems token and sets a new password. The token is consumed with a
// conditional update in the same transaction as the password change, so only one of
// several concurrent redemptions can succeed. All sessions of the user are revoked.
func (u *PasswordResetUsecase) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if token == "" || password == "" {
		return domain.Validation("Token and new password are required")
	}
	if confirm != "" && confirm != password {
		return domain.ErrPasswordMismatch
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}
	if !resetTokenPattern.MatchString(token) {
		return domain.ErrInvalidResetToken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	now := u.now().UTC()
	var userID uint
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := u.tokens.Consume(ctx, token, now)
		if err != nil {
			if errors.Is(err, ErrResetTokenNotFound) {
				return domain.ErrInvalidResetToken
			}
			return fmt.Errorf("failed to consume reset token: %w", err)
		}
		if err := u.users.UpdatePasswordHash(ctx, t.UserID, hash); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return domain.ErrInvalidResetToken
			}
			return fmt.Errorf("failed to update password: %w", err)
		}
		userID = t.UserID
		return nil
	})
	if err != nil {
		return err
	}

	if err := u.issuer.RevokeAll(ctx, userID); err != nil {
		slog.Error("failed to revoke sessions after password reset", "user_id", userID, "error", err)
	}
	slog.Info("password reset", "user_id", userID)
	return nil
}

func (u *PasswordResetUsecase) sendResetLink(ctx context.Context, user *entity.User, token string) error {
	link := u.policy.FrontendURL + "/reset-password?token=" + url.QueryEscape(token)
	body, err := renderResetEmail(user.Name, link, u.policy.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to render reset email: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, u.policy.MailTimeout)
	defer cancel()
	return u.mailer.Send(sendCtx, user.Email, resetSubject, body)
}
