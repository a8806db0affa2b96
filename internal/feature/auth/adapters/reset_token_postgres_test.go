package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/usecase"
	"expense_tracker/internal/platform/db/dbtest"
)

func TestResetTokenPostgres_Consume(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		token   entity.PasswordResetToken
		wantErr error
	}{
		{
			name:  "valid token is consumed",
			token: entity.PasswordResetToken{UserID: 1, Token: "valid", ExpiresAt: now.Add(time.Hour)},
		},
		{
			name:    "used token",
			token:   entity.PasswordResetToken{UserID: 1, Token: "used", ExpiresAt: now.Add(time.Hour), Used: true},
			wantErr: usecase.ErrResetTokenNotFound,
		},
		{
			name:    "expired token",
			token:   entity.PasswordResetToken{UserID: 1, Token: "expired", ExpiresAt: now.Add(-time.Second)},
			wantErr: usecase.ErrResetTokenNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewResetTokenPostgres(dbtest.Open(t, &entity.PasswordResetToken{}))
			ctx := context.Background()
			token := tt.token
			require.NoError(t, repo.Create(ctx, &token))

			got, err := repo.Consume(ctx, token.Token, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Used)
			assert.Equal(t, uint(1), got.UserID)

			_, err = repo.Consume(ctx, token.Token, now)
			assert.ErrorIs(t, err, usecase.ErrResetTokenNotFound, "a token is consumed at most once")
		})
	}

	t.Run("unknown token", func(t *testing.T) {
		repo := NewResetTokenPostgres(dbtest.Open(t, &entity.PasswordResetToken{}))
		_, err := repo.Consume(context.Background(), "nope", now)
		assert.ErrorIs(t, err, usecase.ErrResetTokenNotFound)
	})
}

func TestResetTokenPostgres_DeleteUnusedByUser(t *testing.T) {
	repo := NewResetTokenPostgres(dbtest.Open(t, &entity.PasswordResetToken{}))
	ctx := context.Background()
	now := time.Now().UTC()

	for _, tok := range []*entity.PasswordResetToken{
		{UserID: 1, Token: "a", ExpiresAt: now.Add(time.Hour)},
		{UserID: 1, Token: "b", ExpiresAt: now.Add(time.Hour), Used: true},
		{UserID: 2, Token: "c", ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, repo.Create(ctx, tok))
	}

	n, err := repo.DeleteUnusedByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByToken(ctx, "a")
	assert.ErrorIs(t, err, usecase.ErrResetTokenNotFound)
	_, err = repo.FindByToken(ctx, "b")
	assert.NoError(t, err)
	c, err := repo.FindByToken(ctx, "c")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.FindByToken(ctx, "c")
	assert.ErrorIs(t, err, usecase.ErrResetTokenNotFound)
}
