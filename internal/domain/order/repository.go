package order

import (
	"context"
	"time"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines persistence for orders. Finders preload Items.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]Order, int64, error)
	FindPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)
	// Save inserts a new order together with its lines
	Save(ctx context.Context, o *Order) error
	// SaveWithLock updates order columns if the version is unchanged, then bumps it
	SaveWithLock(ctx context.Context, o *Order) error
}
