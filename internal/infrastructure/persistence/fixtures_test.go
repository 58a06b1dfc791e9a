package persistence

import (
	"context"
	"testing"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db *gorm.DB, email, username string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, username, "motdepasse1")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), u))
	return u
}

func createProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, title, price string, stock int) *marketplace.Product {
	t.Helper()
	p, err := marketplace.NewProduct(sellerID, marketplace.ProductInput{
		Title:     title,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Condition: marketplace.ConditionNearMint,
		Language:  "fr",
	})
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}
