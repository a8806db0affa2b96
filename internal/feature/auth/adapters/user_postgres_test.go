package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/usecase"
	platformdb "expense_tracker/internal/platform/db"
	"expense_tracker/internal/platform/db/dbtest"
)

func strPtr(s string) *string { return &s }

func TestUserPostgres_Create(t *testing.T) {
	t.Run("assigns id and timestamps", func(t *testing.T) {
		repo := NewUserPostgres(dbtest.Open(t, &entity.User{}))
		u := &entity.User{Name: "Alice", Email: "alice@example.com", PasswordHash: strPtr("hash"), IsVerified: true}

		require.NoError(t, repo.Create(context.Background(), u))
		assert.NotZero(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := NewUserPostgres(dbtest.Open(t, &entity.User{}))
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, &entity.User{Name: "A", Email: "dup@example.com", IsVerified: true}))

		err := repo.Create(ctx, &entity.User{Name: "B", Email: "dup@example.com", IsVerified: true})
		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("several password-less users without provider", func(t *testing.T) {
		repo := NewUserPostgres(dbtest.Open(t, &entity.User{}))
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, &entity.User{Name: "A", Email: "a@example.com"}))
		assert.NoError(t, repo.Create(ctx, &entity.User{Name: "B", Email: "b@example.com"}),
			"null provider columns must not collide on the oauth index")
	})
}

func TestUserPostgres_Find(t *testing.T) {
	repo := NewUserPostgres(dbtest.Open(t, &entity.User{}))
	ctx := context.Background()
	u := &entity.User{Name: "Bob", Email: "bob@example.com", IsVerified: true,
		OAuthProvider: strPtr("google"), OAuthID: strPtr("sub-1")}
	require.NoError(t, repo.Create(ctx, u))

	byEmail, err := repo.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", byID.Name)

	byOAuth, err := repo.FindByOAuth(ctx, "google", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byOAuth.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	_, err = repo.FindByOAuth(ctx, "google", "other")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestUserPostgres_LinkOAuthAndPassword(t *testing.T) {
	repo := NewUserPostgres(dbtest.Open(t, &entity.User{}))
	ctx := context.Background()
	u := &entity.User{Name: "Carol", Email: "carol@example.com", PasswordHash: strPtr("old"), IsVerified: true}
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.LinkOAuth(ctx, u.ID, "google", "sub-9"))
	linked, err := repo.FindByOAuth(ctx, "google", "sub-9")
	require.NoError(t, err)
	assert.Equal(t, u.ID, linked.ID)

	require.NoError(t, repo.UpdatePasswordHash(ctx, u.ID, "new"))
	updated, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", *updated.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, 999, "x"), usecase.ErrUserNotFound)
	assert.ErrorIs(t, repo.LinkOAuth(ctx, 999, "google", "x"), usecase.ErrUserNotFound)
}

func TestUserPostgres_JoinsTransaction(t *testing.T) {
	db := dbtest.Open(t, &entity.User{})
	repo := NewUserPostgres(db)
	tx := platformdb.NewTxManager(db)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, &entity.User{Name: "T", Email: "t@example.com"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = repo.FindByEmail(ctx, "t@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound, "insert must roll back with the transaction")
}
