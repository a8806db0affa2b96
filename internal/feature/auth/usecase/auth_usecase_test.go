package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/usecase"
)

func TestAuthUsecase_Login(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	user := h.registerVerified(t, "Alice", "alice@example.com")

	t.Run("success with unnormalized email", func(t *testing.T) {
		res, err := h.auth.Login(ctx, " ALICE@example.com", strongPassword, usecase.ClientInfo{UserAgent: "cli"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, res.User.ID)
		assert.NotEmpty(t, res.Tokens.AccessToken)
		assert.Len(t, res.Tokens.RefreshToken, 64)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, errWrong := h.auth.Login(ctx, "alice@example.com", "Wrong!Pass1", usecase.ClientInfo{})
		_, errUnknown := h.auth.Login(ctx, "bob@example.com", strongPassword, usecase.ClientInfo{})

		assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := h.auth.Login(ctx, "", "", usecase.ClientInfo{})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("oauth-only account cannot use a password", func(t *testing.T) {
		provider, subject := "google", "sub-1"
		require.NoError(t, h.users.Create(ctx, &entity.User{
			Name: "G", Email: "g@example.com", IsVerified: true, OAuthProvider: &provider, OAuthID: &subject,
		}))
		_, err := h.auth.Login(ctx, "g@example.com", strongPassword, usecase.ClientInfo{})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthUsecase_SessionCapEvictsOldest(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	user := h.registerVerified(t, "Alice", "alice@example.com") // first session

	h.clock.Advance(time.Second)
	second, err := h.auth.Login(ctx, "alice@example.com", strongPassword, usecase.ClientInfo{})
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	third, err := h.auth.Login(ctx, "alice@example.com", strongPassword, usecase.ClientInfo{})
	require.NoError(t, err)

	count, err := h.sessions.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = h.auth.Refresh(ctx, second.Tokens.RefreshToken)
	assert.NoError(t, err)
	_, err = h.auth.Refresh(ctx, third.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthUsecase_RefreshAndLogout(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	h.registerVerified(t, "Alice", "alice@example.com")

	login, err := h.auth.Login(ctx, "alice@example.com", strongPassword, usecase.ClientInfo{})
	require.NoError(t, err)

	refreshed, err := h.auth.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.Tokens.RefreshToken, refreshed.RefreshToken, "refresh token is not rotated")
	assert.Equal(t, "access-alice@example.com", refreshed.AccessToken)

	require.NoError(t, h.auth.Logout(ctx, login.Tokens.RefreshToken))
	_, err = h.auth.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestAuthUsecase_RefreshRejects(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	h.registerVerified(t, "Alice", "alice@example.com")
	login, err := h.auth.Login(ctx, "alice@example.com", strongPassword, usecase.ClientInfo{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed", token: "not-a-token"},
		{name: "unknown", token: strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.auth.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
			assert.Equal(t, domain.KindAuth, domain.KindOf(err))
		})
	}

	t.Run("expired", func(t *testing.T) {
		h.clock.Advance(8 * 24 * time.Hour)
		_, err := h.auth.Refresh(ctx, login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
	})

	t.Run("logout of unknown token", func(t *testing.T) {
		assert.ErrorIs(t, h.auth.Logout(ctx, strings.Repeat("b", 64)), domain.ErrInvalidRefreshToken)
	})
}

func TestAuthUsecase_Profile(t *testing.T) {
	h := newHarness(t, 5)
	user := h.registerVerified(t, "Alice", "alice@example.com")

	got, err := h.auth.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = h.auth.Profile(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
