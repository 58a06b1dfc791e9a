package catalog

import (
	"context"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SerieRepository defines persistence for series
type SerieRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Serie, error)
	FindByAPIID(ctx context.Context, apiID string) (*Serie, error)
	FindAll(ctx context.Context) ([]Serie, error)
	ExistsByAPIID(ctx context.Context, apiID string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, serie *Serie) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExtensionRepository defines persistence for extensions
type ExtensionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Extension, error)
	FindByAPIID(ctx context.Context, apiID string) (*Extension, error)
	FindBySerie(ctx context.Context, serieID uuid.UUID) ([]Extension, error)
	CountBySerie(ctx context.Context, serieID uuid.UUID) (int64, error)
	ExistsByAPIID(ctx context.Context, apiID string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, extension *Extension) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CardFilter narrows a card search
type CardFilter struct {
	shared.Filter
	ExtensionID *uuid.UUID
}

// PokemonCardRepository defines persistence for cards
type PokemonCardRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PokemonCard, error)
	FindByAPIID(ctx context.Context, apiID string) (*PokemonCard, error)
	FindByExtension(ctx context.Context, extensionID uuid.UUID) ([]PokemonCard, error)
	// Search matches the filter's Search against name and number
	Search(ctx context.Context, filter CardFilter) ([]PokemonCard, int64, error)
	CountByExtension(ctx context.Context, extensionID uuid.UUID) (int64, error)
	ExistsByAPIID(ctx context.Context, apiID string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, card *PokemonCard) error
	Delete(ctx context.Context, id uuid.UUID) error
}
