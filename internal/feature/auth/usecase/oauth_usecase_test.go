package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/usecase"
)

func googleIdentity(subject, email string) *usecase.Identity {
	return &usecase.Identity{
		Provider:      "google",
		Subject:       subject,
		Email:         email,
		EmailVerified: true,
		Name:          "Gina",
		Issuer:        "https://accounts.google.com",
	}
}

func TestOAuthSignIn_CreatesPasswordlessUser(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	h.verifier.identity = googleIdentity("sub-1", "Gina@Example.com")

	res, err := h.oauth.SignIn(ctx, "raw", usecase.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, "gina@example.com", res.User.Email)
	assert.Equal(t, "Gina", res.User.Name)
	assert.True(t, res.User.IsVerified)
	assert.False(t, res.User.HasPassword())
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	again, err := h.oauth.SignIn(ctx, "raw", usecase.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID, "same subject signs into the same account")
	assert.Equal(t, int64(1), h.count(t, &entity.User{}))
}

func TestOAuthSignIn_LinksExistingAccount(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	existing := h.registerVerified(t, "Alice", "alice@example.com")
	h.verifier.identity = googleIdentity("sub-2", "alice@example.com")

	res, err := h.oauth.SignIn(ctx, "raw", usecase.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.User.ID)

	linked, err := h.users.FindByOAuth(ctx, "google", "sub-2")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)

	_, err = h.auth.Login(ctx, "alice@example.com", strongPassword, usecase.ClientInfo{})
	assert.NoError(t, err, "password sign-in keeps working after linking")
}

func TestOAuthSignIn_DiscardsPendingRegistration(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	_, err := h.registration.Register(ctx, validInput("gina@example.com"))
	require.NoError(t, err)
	h.verifier.identity = googleIdentity("sub-3", "gina@example.com")

	_, err = h.oauth.SignIn(ctx, "raw", usecase.ClientInfo{})
	require.NoError(t, err)
	assert.Zero(t, h.count(t, &entity.PendingUser{}))
	assert.Zero(t, h.count(t, &entity.EmailVerification{}))
}

func TestOAuthSignIn_Rejects(t *testing.T) {
	t.Run("empty token", func(t *testing.T) {
		h := newHarness(t, 5)
		_, err := h.oauth.SignIn(context.Background(), " ", usecase.ClientInfo{})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("verifier failure", func(t *testing.T) {
		h := newHarness(t, 5)
		h.verifier.err = errors.New("bad signature")
		_, err := h.oauth.SignIn(context.Background(), "raw", usecase.ClientInfo{})
		assert.ErrorIs(t, err, domain.ErrInvalidIdentityToken)
		assert.Equal(t, domain.KindAuth, domain.KindOf(err))
	})

	t.Run("unverified email", func(t *testing.T) {
		h := newHarness(t, 5)
		id := googleIdentity("sub-4", "x@example.com")
		id.EmailVerified = false
		h.verifier.identity = id
		_, err := h.oauth.SignIn(context.Background(), "raw", usecase.ClientInfo{})
		assert.ErrorIs(t, err, domain.ErrEmailNotVerified)
		assert.Zero(t, h.count(t, &entity.User{}))
	})
}
