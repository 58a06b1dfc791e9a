package address

import (
	"context"

	"github.com/google/uuid"
)

// AddressRepository defines persistence for addresses
type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, a *Address) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearDefault unflags every default address of userID
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}
