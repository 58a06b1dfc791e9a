package order

import (
	"context"
	"fmt"

	"github.com/destocard/backend/internal/domain/order"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleNotifier sends a system message to a seller
type SaleNotifier interface {
	NotifySale(ctx context.Context, sellerID, productID uuid.UUID, title string, quantity int) error
}

// SaleNotificationHandler tells each seller that their listing sold once
// the order is paid
type SaleNotificationHandler struct {
	notifier SaleNotifier
	logger   *zap.Logger
}

// NewSaleNotificationHandler creates the handler
func NewSaleNotificationHandler(notifier SaleNotifier, logger *zap.Logger) *SaleNotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleNotificationHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleNotificationHandler) EventTypes() []string {
	return []string{order.EventTypeOrderCompleted}
}

// Handle sends one message per sold line
func (h *SaleNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*order.OrderCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	for _, line := range completed.Lines {
		if err := h.notifier.NotifySale(ctx, line.SellerID, line.ProductID, line.Title, line.Quantity); err != nil {
			h.logger.Error("Failed to notify seller",
				zap.String("reference", completed.Reference),
				zap.String("seller_id", line.SellerID.String()),
				zap.Error(err))
			return err
		}
	}

	h.logger.Debug("Sellers notified",
		zap.String("reference", completed.Reference),
		zap.Int("lines", len(completed.Lines)))
	return nil
}

var _ shared.EventHandler = (*SaleNotificationHandler)(nil)
