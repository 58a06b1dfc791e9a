// Package catalogsync bulk-imports series, extensions and cards from TCGdex
// straight into PostgreSQL through a pgx pool. Rows are upserted by API id,
// so running a sync twice is safe.
package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/destocard/backend/internal/infrastructure/tcgdex"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultBatchSize = 200

// Source is the remote card database
type Source interface {
	FetchSerie(ctx context.Context, id string) (*tcgdex.Serie, error)
	FetchSet(ctx context.Context, id string) (*tcgdex.Set, error)
	FetchCard(ctx context.Context, id string) (*tcgdex.Card, error)
}

// DB is the subset of *pgxpool.Pool the syncer needs
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Stats counts what a sync wrote
type Stats struct {
	Series     int
	Extensions int
	Cards      int
	Skipped    int
}

// Add accumulates other into s
func (s *Stats) Add(other Stats) {
	s.Series += other.Series
	s.Extensions += other.Extensions
	s.Cards += other.Cards
	s.Skipped += other.Skipped
}

// Option configures a Syncer
type Option func(*Syncer)

// WithBatchSize sets how many card upserts are sent per round trip
func WithBatchSize(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithCardDetails fetches every card individually to fill rarity, HP and
// illustrator. Without it only the set listing is used.
func WithCardDetails(enabled bool) Option {
	return func(s *Syncer) {
		s.cardDetails = enabled
	}
}

// Syncer imports the catalog
type Syncer struct {
	db          DB
	source      Source
	logger      *zap.Logger
	batchSize   int
	cardDetails bool
}

// NewSyncer creates a syncer
func NewSyncer(db DB, source Source, logger *zap.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		db:        db,
		source:    source,
		logger:    logger,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects a pgx pool and checks it is reachable
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// SyncSerie imports a serie and every set in it
func (s *Syncer) SyncSerie(ctx context.Context, serieID string) (Stats, error) {
	var stats Stats

	serie, err := s.source.FetchSerie(ctx, serieID)
	if err != nil {
		return stats, err
	}
	if _, err := s.upsertSerie(ctx, serie.ID, serie.Name, serie.LogoURL); err != nil {
		return stats, err
	}
	stats.Series++

	for _, setID := range serie.SetIDs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		setStats, err := s.SyncSet(ctx, setID)
		if err != nil {
			if errors.Is(err, tcgdex.ErrNotFound) {
				s.logger.Warn("Set listed in serie not found, skipping",
					zap.String("serie", serie.ID),
					zap.String("set", setID),
				)
				stats.Skipped++
				continue
			}
			return stats, err
		}
		// The serie row was already counted above.
		setStats.Series = 0
		stats.Add(setStats)
	}

	s.logger.Info("Serie synchronized",
		zap.String("serie", serie.ID),
		zap.Int("extensions", stats.Extensions),
		zap.Int("cards", stats.Cards),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// SyncSet imports one set, its serie row and its cards
func (s *Syncer) SyncSet(ctx context.Context, setID string) (Stats, error) {
	var stats Stats

	set, err := s.source.FetchSet(ctx, setID)
	if err != nil {
		return stats, err
	}

	serieUUID, err := s.upsertSerie(ctx, set.SerieID, set.SerieName, "")
	if err != nil {
		return stats, err
	}
	stats.Series++

	extUUID, err := s.upsertExtension(ctx, serieUUID, set)
	if err != nil {
		return stats, err
	}
	stats.Extensions++

	batch := &pgx.Batch{}
	for _, brief := range set.Cards {
		card := tcgdex.Card{ID: brief.ID, LocalID: brief.LocalID, Name: brief.Name, ImageURL: brief.ImageURL}
		if s.cardDetails {
			full, err := s.source.FetchCard(ctx, brief.ID)
			if err != nil {
				s.logger.Warn("Card detail unavailable, using set listing",
					zap.String("card", brief.ID),
					zap.Error(err),
				)
			} else {
				card = *full
			}
		}
		if !validCard(card) {
			stats.Skipped++
			continue
		}
		queueCardUpsert(batch, extUUID, card)

		if batch.Len() >= s.batchSize {
			if err := s.flush(ctx, batch); err != nil {
				return stats, err
			}
			stats.Cards += batch.Len()
			batch = &pgx.Batch{}
		}
	}
	if batch.Len() > 0 {
		if err := s.flush(ctx, batch); err != nil {
			return stats, err
		}
		stats.Cards += batch.Len()
	}

	s.logger.Debug("Set synchronized",
		zap.String("set", set.ID),
		zap.Int("cards", stats.Cards),
	)
	return stats, nil
}

const upsertSerieSQL = `
INSERT INTO serie (id, api_id, name, logo_url, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
ON CONFLICT (api_id) DO UPDATE SET
    name       = EXCLUDED.name,
    logo_url   = COALESCE(NULLIF(EXCLUDED.logo_url, ''), serie.logo_url),
    updated_at = NOW(),
    version    = serie.version + 1
RETURNING id`

func (s *Syncer) upsertSerie(ctx context.Context, apiID, name, logoURL string) (uuid.UUID, error) {
	if strings.TrimSpace(apiID) == "" || strings.TrimSpace(name) == "" {
		return uuid.Nil, fmt.Errorf("catalogsync: serie %q has no id or name", apiID)
	}
	var id uuid.UUID
	if err := s.db.QueryRow(ctx, upsertSerieSQL, uuid.New(), apiID, name, logoURL).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("upsert serie %s: %w", apiID, err)
	}
	return id, nil
}

const upsertExtensionSQL = `
INSERT INTO extension (id, serie_id, api_id, name, logo_url, symbol_url, card_count, release_date, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW(), 1)
ON CONFLICT (api_id) DO UPDATE SET
    serie_id     = EXCLUDED.serie_id,
    name         = EXCLUDED.name,
    logo_url     = EXCLUDED.logo_url,
    symbol_url   = EXCLUDED.symbol_url,
    card_count   = EXCLUDED.card_count,
    release_date = EXCLUDED.release_date,
    updated_at   = NOW(),
    version      = extension.version + 1
RETURNING id`

func (s *Syncer) upsertExtension(ctx context.Context, serieID uuid.UUID, set *tcgdex.Set) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, upsertExtensionSQL,
		uuid.New(), serieID, set.ID, set.Name, set.LogoURL, set.SymbolURL, set.CardCount, set.ReleaseDate,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert extension %s: %w", set.ID, err)
	}
	return id, nil
}

const upsertCardSQL = `
INSERT INTO pokemon_card (id, extension_id, api_id, name, number, rarity, category, illustrator, image_url, hp, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), 1)
ON CONFLICT (api_id) DO UPDATE SET
    extension_id = EXCLUDED.extension_id,
    name         = EXCLUDED.name,
    number       = EXCLUDED.number,
    rarity       = COALESCE(NULLIF(EXCLUDED.rarity, ''), pokemon_card.rarity),
    category     = COALESCE(NULLIF(EXCLUDED.category, ''), pokemon_card.category),
    illustrator  = COALESCE(NULLIF(EXCLUDED.illustrator, ''), pokemon_card.illustrator),
    image_url    = COALESCE(NULLIF(EXCLUDED.image_url, ''), pokemon_card.image_url),
    hp           = CASE WHEN EXCLUDED.hp > 0 THEN EXCLUDED.hp ELSE pokemon_card.hp END,
    updated_at   = NOW(),
    version      = pokemon_card.version + 1`

func queueCardUpsert(batch *pgx.Batch, extensionID uuid.UUID, c tcgdex.Card) {
	batch.Queue(upsertCardSQL,
		uuid.New(), extensionID, c.ID, c.Name, c.LocalID,
		c.Rarity, c.Category, c.Illustrator, c.ImageURL, c.HP,
	)
}

func (s *Syncer) flush(ctx context.Context, batch *pgx.Batch) error {
	br := s.db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert card %d of batch: %w", i, err)
		}
	}
	return br.Close()
}

func validCard(c tcgdex.Card) bool {
	return c.ID != "" && len(c.ID) <= 50 &&
		strings.TrimSpace(c.Name) != "" && len(c.Name) <= 150 &&
		c.LocalID != "" && len(c.LocalID) <= 20 &&
		c.HP >= 0
}
