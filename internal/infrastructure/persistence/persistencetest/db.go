// Package persistencetest opens throwaway SQLite databases carrying the
// full schema, for service tests that run against the real repositories.
package persistencetest

import (
	"context"
	"strings"
	"testing"

	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns an in-memory database migrated with every model
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(persistence.Models()...))
	return db
}

// CreateUser stores a user with password "motdepasse1"
func CreateUser(t *testing.T, db *gorm.DB, email, username string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, username, "motdepasse1")
	require.NoError(t, err)
	u.ClearDomainEvents()
	require.NoError(t, persistence.NewGormUserRepository(db).Save(context.Background(), u))
	return u
}

// CreateProduct stores a near-mint listing
func CreateProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, title, price string, stock int) *marketplace.Product {
	t.Helper()
	p, err := marketplace.NewProduct(sellerID, marketplace.ProductInput{
		Title:     title,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Condition: marketplace.ConditionNearMint,
		Language:  "fr",
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

// ReloadProduct reads a product back
func ReloadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) *marketplace.Product {
	t.Helper()
	p, err := persistence.NewGormProductRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// CreateCard stores a card inside a fresh serie and extension derived from
// apiID ("sv01-025" lives in extension "sv01" of serie "sv01-serie")
func CreateCard(t *testing.T, db *gorm.DB, apiID, name string) *catalog.PokemonCard {
	t.Helper()
	ctx := context.Background()
	setID, number, _ := strings.Cut(apiID, "-")

	serie, err := catalog.NewSerie(setID+"-serie", "Série "+setID)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSerieRepository(db).Save(ctx, serie))

	ext, err := catalog.NewExtension(serie.ID, setID, "Extension "+setID)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormExtensionRepository(db).Save(ctx, ext))

	card, err := catalog.NewPokemonCard(ext.ID, apiID, name, number)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormPokemonCardRepository(db).Save(ctx, card))
	return card
}
