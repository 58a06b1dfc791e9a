package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/destocard/backend/internal/infrastructure/tcgdex"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRow struct {
	id  uuid.UUID
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*uuid.UUID)) = r.id
	return nil
}

type fakeBatchResults struct {
	pgx.BatchResults
	failAt int
	calls  int
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.calls++
	if b.failAt > 0 && b.calls == b.failAt {
		return pgconn.CommandTag{}, errors.New("constraint violation")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (b *fakeBatchResults) Close() error { return nil }

type fakeDB struct {
	rows        []string
	ids         map[string]uuid.UUID
	batches     []*pgx.Batch
	failBatchAt int
}

func newFakeDB() *fakeDB {
	return &fakeDB{ids: make(map[string]uuid.UUID)}
}

func (d *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	apiID := args[1].(string)
	if strings.Contains(sql, "INSERT INTO extension") {
		apiID = args[2].(string)
	}
	d.rows = append(d.rows, apiID)
	id, ok := d.ids[apiID]
	if !ok {
		id = args[0].(uuid.UUID)
		d.ids[apiID] = id
	}
	return fakeRow{id: id}
}

func (d *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	d.batches = append(d.batches, b)
	return &fakeBatchResults{failAt: d.failBatchAt}
}

type fakeSource struct {
	series map[string]*tcgdex.Serie
	sets   map[string]*tcgdex.Set
	cards  map[string]*tcgdex.Card
}

func (s *fakeSource) FetchSerie(_ context.Context, id string) (*tcgdex.Serie, error) {
	if v, ok := s.series[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", tcgdex.ErrNotFound, id)
}

func (s *fakeSource) FetchSet(_ context.Context, id string) (*tcgdex.Set, error) {
	if v, ok := s.sets[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", tcgdex.ErrNotFound, id)
}

func (s *fakeSource) FetchCard(_ context.Context, id string) (*tcgdex.Card, error) {
	if v, ok := s.cards[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", tcgdex.ErrNotFound, id)
}

func newSource() *fakeSource {
	return &fakeSource{
		series: map[string]*tcgdex.Serie{
			"sv": {ID: "sv", Name: "Écarlate et Violet", SetIDs: []string{"sv01", "sv02", "gone"}},
		},
		sets: map[string]*tcgdex.Set{
			"sv01": {ID: "sv01", Name: "Écarlate et Violet", SerieID: "sv", SerieName: "Écarlate et Violet", CardCount: 198,
				Cards: []tcgdex.CardBrief{
					{ID: "sv01-001", LocalID: "001", Name: "Pomdepik"},
					{ID: "sv01-002", LocalID: "002", Name: "Foretress"},
					{ID: "sv01-003", LocalID: "", Name: "Sans numéro"},
				}},
			"sv02": {ID: "sv02", Name: "Évolutions à Paldea", SerieID: "sv", SerieName: "Écarlate et Violet",
				Cards: []tcgdex.CardBrief{
					{ID: "sv02-001", LocalID: "001", Name: "Papilusion"},
				}},
		},
		cards: map[string]*tcgdex.Card{
			"sv01-001": {ID: "sv01-001", LocalID: "001", Name: "Pomdepik", Rarity: "Commune", HP: 70, SetID: "sv01"},
		},
	}
}

func TestSyncer_SyncSet(t *testing.T) {
	db := newFakeDB()
	s := NewSyncer(db, newSource(), zap.NewNop())

	stats, err := s.SyncSet(context.Background(), "sv01")
	require.NoError(t, err)

	assert.Equal(t, Stats{Series: 1, Extensions: 1, Cards: 2, Skipped: 1}, stats)
	assert.Equal(t, []string{"sv", "sv01"}, db.rows)
	require.Len(t, db.batches, 1)
	assert.Equal(t, 2, db.batches[0].Len())

	q := db.batches[0].QueuedQueries[0]
	assert.Contains(t, q.SQL, "ON CONFLICT (api_id)")
	assert.Equal(t, db.ids["sv01"], q.Arguments[1])
	assert.Equal(t, "sv01-001", q.Arguments[2])
}

func TestSyncer_SyncSerie(t *testing.T) {
	db := newFakeDB()
	s := NewSyncer(db, newSource(), zap.NewNop(), WithBatchSize(1))

	stats, err := s.SyncSerie(context.Background(), "sv")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Series)
	assert.Equal(t, 2, stats.Extensions)
	assert.Equal(t, 3, stats.Cards)
	// one card without number plus the missing set
	assert.Equal(t, 2, stats.Skipped)
	assert.Len(t, db.batches, 3)
}

func TestSyncer_CardDetails(t *testing.T) {
	db := newFakeDB()
	s := NewSyncer(db, newSource(), zap.NewNop(), WithCardDetails(true))

	_, err := s.SyncSet(context.Background(), "sv01")
	require.NoError(t, err)

	args := db.batches[0].QueuedQueries[0].Arguments
	assert.Equal(t, "Commune", args[5])
	assert.Equal(t, 70, args[9])

	// sv01-002 has no detail and falls back to the listing
	args = db.batches[0].QueuedQueries[1].Arguments
	assert.Equal(t, "", args[5])
}

func TestSyncer_Errors(t *testing.T) {
	t.Run("unknown serie", func(t *testing.T) {
		s := NewSyncer(newFakeDB(), newSource(), zap.NewNop())
		_, err := s.SyncSerie(context.Background(), "xy")
		assert.ErrorIs(t, err, tcgdex.ErrNotFound)
	})

	t.Run("batch failure", func(t *testing.T) {
		db := newFakeDB()
		db.failBatchAt = 2
		s := NewSyncer(db, newSource(), zap.NewNop())

		_, err := s.SyncSet(context.Background(), "sv01")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "constraint violation")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := NewSyncer(newFakeDB(), newSource(), zap.NewNop())

		_, err := s.SyncSerie(ctx, "sv")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
