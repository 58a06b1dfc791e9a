package marketplace

import (
	"context"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows a product listing query
type ProductFilter struct {
	shared.Filter
	SellerID      *uuid.UUID
	PokemonCardID *uuid.UUID
	Status        *ProductStatus
	Condition     *Condition
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	// IDs restricts the result to the given products
	IDs []uuid.UUID
}

// ProductRepository defines persistence for listings
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	CountByPokemonCard(ctx context.Context, cardID uuid.UUID) (int64, error)
	Save(ctx context.Context, product *Product) error
	// SaveWithLock persists the product only if its version is unchanged
	// since it was loaded, then bumps the version
	SaveWithLock(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
