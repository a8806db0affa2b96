package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/domain/entity"
)

// OAuthUsecase signs users in with an external identity provider.
type OAuthUsecase struct {
	tx       TxManager
	users    UserRepository
	pending  PendingUserRepository
	verifier IdentityVerifier
	issuer   *SessionIssuer
}

// NewOAuthUsecase creates an OAuthUsecase.
func NewOAuthUsecase(tx TxManager, users UserRepository, pending PendingUserRepository,
	verifier IdentityVerifier, issuer *SessionIssuer) *OAuthUsecase {
	return &OAuthUsecase{tx: tx, users: users, pending: pending, verifier: verifier, issuer: issuer}
}

// SignIn verifies rawToken and resolves it to a user: an account already linked to the
// provider subject, an existing account with the same email (which gets linked), or a
// new password-less account. Any pending registration for the email is discarded.
func (u *OAuthUsecase) SignIn(ctx context.Context, rawToken string, client ClientInfo) (*AuthResult, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, domain.Validation("Identity token is required")
	}

	identity, err := u.verifier.Verify(ctx, rawToken)
	if err != nil {
		slog.Warn("identity token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidIdentityToken, err)
	}
	if !identity.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}
	email := NormalizeEmail(identity.Email)
	if identity.Subject == "" || !IsValidEmailFormat(email) {
		return nil, domain.ErrInvalidIdentityToken
	}

	var user *entity.User
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		linked, err := u.users.FindByOAuth(ctx, identity.Provider, identity.Subject)
		switch {
		case err == nil:
			user = linked
		case !errors.Is(err, ErrUserNotFound):
			return fmt.Errorf("failed to find linked user: %w", err)
		default:
			user, err = u.linkOrCreate(ctx, identity, email)
			if err != nil {
				return err
			}
		}

		p, err := u.pending.FindByEmail(ctx, user.Email)
		if err == nil {
			if err := u.pending.Delete(ctx, p.ID); err != nil {
				return fmt.Errorf("failed to discard pending registration: %w", err)
			}
		} else if !errors.Is(err, ErrPendingUserNotFound) {
			return fmt.Errorf("failed to look up pending registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens, err := u.issuer.Issue(ctx, user, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *OAuthUsecase) linkOrCreate(ctx context.Context, identity *Identity, email string) (*entity.User, error) {
	provider, subject := identity.Provider, identity.Subject

	existing, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		if err := u.users.LinkOAuth(ctx, existing.ID, provider, subject); err != nil {
			return nil, fmt.Errorf("failed to link account: %w", err)
		}
		existing.OAuthProvider = &provider
		existing.OAuthID = &subject
		slog.Info("linked external identity", "user_id", existing.ID, "provider", provider)
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	user := &entity.User{
		Name:          name,
		Email:         email,
		IsVerified:    true,
		OAuthProvider: &provider,
		OAuthID:       &subject,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, domain.ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("created user from external identity", "user_id", user.ID, "provider", provider)
	return user, nil
}
