package persistence

import (
	"context"
	"testing"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "Sacha@Example.com", "sacha")
	u.SetStripeCustomer("cus_123")
	require.NoError(t, u.GrantRole(identity.RoleAdmin))
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByEmail(ctx, "  SACHA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.IsAdmin())
	assert.True(t, found.VerifyPassword("motdepasse1"))

	byCustomer, err := repo.FindByStripeCustomerID(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byCustomer.ID)

	exists, err := repo.ExistsByUsername(ctx, "sacha")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormUserRepository_Save_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "ondine@example.com", "ondine")

	dup, err := identity.NewUser("ondine@example.com", "ondine2", "motdepasse1")
	require.NoError(t, err)

	err = NewGormUserRepository(db).Save(context.Background(), dup)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormUserRepository_Likes(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "pierre@example.com", "pierre")
	productID := uuid.New()

	require.NoError(t, repo.Like(ctx, u.ID, productID))
	require.NoError(t, repo.Like(ctx, u.ID, productID))

	liked, err := repo.IsLiked(ctx, u.ID, productID)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := repo.CountLikes(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ids, err := repo.FindLikedProductIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{productID}, ids)

	require.NoError(t, repo.Unlike(ctx, u.ID, productID))
	liked, err = repo.IsLiked(ctx, u.ID, productID)
	require.NoError(t, err)
	assert.False(t, liked)
}
