package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSeeder(db *gorm.DB) *Seeder {
	return NewSeeder(
		persistence.NewGormUserRepository(db),
		persistence.NewGormAddressRepository(db),
		persistence.NewGormProductRepository(db),
		persistence.NewGormPokemonCardRepository(db),
		nil,
	)
}

func TestSeeder_Run(t *testing.T) {
	db := persistencetest.NewDB(t)
	card := persistencetest.CreateCard(t, db, "sv01-025", "Pikachu")
	ctx := context.Background()

	res, err := newSeeder(db).Run(ctx, Options{Users: 3, ProductsPerUser: 2, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Users)
	assert.Equal(t, 3, res.Addresses)
	assert.Equal(t, 6, res.Products)
	require.Len(t, res.Emails, 3)

	users := persistence.NewGormUserRepository(db)
	for _, email := range res.Emails {
		u, err := users.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.True(t, u.VerifyPassword(DefaultPassword))

		addrs, err := persistence.NewGormAddressRepository(db).FindByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, addrs, 1)
		assert.True(t, addrs[0].IsDefault)
	}

	products, err := persistence.NewGormProductRepository(db).FindAll(ctx, marketplace.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 6)
	for _, p := range products {
		require.NotNil(t, p.PokemonCardID)
		assert.Equal(t, card.ID, *p.PokemonCardID)
		assert.Contains(t, p.Title, "Pikachu")
	}
}

func TestSeeder_Run_EmptyCatalog(t *testing.T) {
	db := persistencetest.NewDB(t)

	res, err := newSeeder(db).Run(context.Background(), Options{Users: 1, ProductsPerUser: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Products)
}

func TestSeeder_Run_Twice(t *testing.T) {
	db := persistencetest.NewDB(t)
	s := newSeeder(db)

	_, err := s.Run(context.Background(), Options{Users: 2})
	require.NoError(t, err)
	_, err = s.Run(context.Background(), Options{Users: 2})
	require.NoError(t, err, "a second run must not collide on emails")
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "jean-luc.dupont.ab0", sanitizeUsername("Jean-Luc.Dupont.ab0"))
	assert.Equal(t, "lo.mller.x1", sanitizeUsername("Lo.Müller.x1"))
	assert.Len(t, sanitizeUsername(strings.Repeat("a", 60)+".7"), 50)
	assert.True(t, strings.HasSuffix(sanitizeUsername(strings.Repeat("a", 60)+".7"), ".7"))
}
