package media

import (
	"context"

	"github.com/google/uuid"
)

// MediaRepository defines persistence for uploaded media
type MediaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Media, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Media, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]Media, error)
	Save(ctx context.Context, m *Media) error
	Delete(ctx context.Context, id uuid.UUID) error
}
