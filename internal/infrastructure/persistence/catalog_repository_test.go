package persistence

import (
	"context"
	"testing"

	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogRepos struct {
	series *GormSerieRepository
	exts   *GormExtensionRepository
	cards  *GormPokemonCardRepository
}

func seedCatalog(t *testing.T, repos catalogRepos) (*catalog.Serie, *catalog.Extension) {
	t.Helper()
	ctx := context.Background()

	serie, err := catalog.NewSerie("sv", "Écarlate et Violet")
	require.NoError(t, err)
	require.NoError(t, repos.series.Save(ctx, serie))

	ext, err := catalog.NewExtension(serie.ID, "sv01", "Écarlate et Violet")
	require.NoError(t, err)
	require.NoError(t, repos.exts.Save(ctx, ext))

	for _, c := range []struct{ api, name, number string }{
		{"sv01-025", "Pikachu", "025"},
		{"sv01-026", "Raichu", "026"},
		{"sv01-150", "Mewtwo", "150"},
	} {
		card, err := catalog.NewPokemonCard(ext.ID, c.api, c.name, c.number)
		require.NoError(t, err)
		require.NoError(t, repos.cards.Save(ctx, card))
	}
	return serie, ext
}

func TestGormCatalogRepositories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repos := catalogRepos{NewGormSerieRepository(db), NewGormExtensionRepository(db), NewGormPokemonCardRepository(db)}

	serie, ext := seedCatalog(t, repos)

	t.Run("find by api id", func(t *testing.T) {
		found, err := repos.series.FindByAPIID(ctx, "sv")
		require.NoError(t, err)
		assert.Equal(t, serie.ID, found.ID)

		card, err := repos.cards.FindByAPIID(ctx, "sv01-150")
		require.NoError(t, err)
		assert.Equal(t, "Mewtwo", card.Name)

		_, err = repos.exts.FindByAPIID(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by api id honours exclusion", func(t *testing.T) {
		exists, err := repos.exts.ExistsByAPIID(ctx, "sv01", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repos.exts.ExistsByAPIID(ctx, "sv01", &ext.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate api id is rejected", func(t *testing.T) {
		dup, err := catalog.NewSerie("sv", "Doublon")
		require.NoError(t, err)
		assert.ErrorIs(t, repos.series.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("search by name or number", func(t *testing.T) {
		filter := catalog.CardFilter{Filter: shared.Filter{Search: "CHU", PageSize: 10}}
		cards, total, err := repos.cards.Search(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, cards, 2)
		assert.Equal(t, "Pikachu", cards[0].Name)

		filter = catalog.CardFilter{Filter: shared.Filter{Search: "150"}, ExtensionID: &ext.ID}
		cards, total, err = repos.cards.Search(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Mewtwo", cards[0].Name)
	})

	t.Run("counts and listings", func(t *testing.T) {
		n, err := repos.cards.CountByExtension(ctx, ext.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = repos.exts.CountBySerie(ctx, serie.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		cards, err := repos.cards.FindByExtension(ctx, ext.ID)
		require.NoError(t, err)
		require.Len(t, cards, 3)
		assert.Equal(t, "025", cards[0].Number)

		exts, err := repos.exts.FindBySerie(ctx, serie.ID)
		require.NoError(t, err)
		assert.Len(t, exts, 1)
	})

	t.Run("delete", func(t *testing.T) {
		card, err := repos.cards.FindByAPIID(ctx, "sv01-026")
		require.NoError(t, err)
		require.NoError(t, repos.cards.Delete(ctx, card.ID))
		assert.ErrorIs(t, repos.cards.Delete(ctx, card.ID), shared.ErrNotFound)
	})
}
