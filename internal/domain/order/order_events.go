package order

import (
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type of Order events
const AggregateTypeOrder = "Order"

// Order domain event types
const (
	EventTypeOrderPlaced    = "OrderPlaced"
	EventTypeOrderCompleted = "OrderCompleted"
	EventTypeOrderFailed    = "OrderFailed"
)

// EventLine is a line snapshot carried by order events
type EventLine struct {
	ProductID uuid.UUID `json:"product_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
}

func eventLines(o *Order) []EventLine {
	lines := make([]EventLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = EventLine{ProductID: it.ProductID, SellerID: it.SellerID, Title: it.Title, Quantity: it.Quantity}
	}
	return lines
}

// OrderPlacedEvent is published when checkout creates a pending order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	BuyerID   uuid.UUID       `json:"buyer_id"`
	Total     decimal.Decimal `json:"total"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		Reference:       o.Reference,
		BuyerID:         o.BuyerID,
		Total:           o.Total,
	}
}

// OrderCompletedEvent is published when payment succeeds
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	Reference string      `json:"reference"`
	BuyerID   uuid.UUID   `json:"buyer_id"`
	Lines     []EventLine `json:"lines"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, o.ID),
		Reference:       o.Reference,
		BuyerID:         o.BuyerID,
		Lines:           eventLines(o),
	}
}

// OrderFailedEvent is published when payment fails or the order expires
type OrderFailedEvent struct {
	shared.BaseDomainEvent
	Reference string      `json:"reference"`
	BuyerID   uuid.UUID   `json:"buyer_id"`
	Reason    string      `json:"reason"`
	Lines     []EventLine `json:"lines"`
}

// NewOrderFailedEvent creates a new OrderFailedEvent
func NewOrderFailedEvent(o *Order) *OrderFailedEvent {
	return &OrderFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFailed, AggregateTypeOrder, o.ID),
		Reference:       o.Reference,
		BuyerID:         o.BuyerID,
		Reason:          o.FailureReason,
		Lines:           eventLines(o),
	}
}
