package order

import (
	"time"

	"github.com/destocard/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemResponse is one line of an order
type ItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderResponse is an order as shown to its buyer
type OrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	Reference         string          `json:"reference"`
	Status            string          `json:"status"`
	Total             decimal.Decimal `json:"total"`
	Currency          string          `json:"currency"`
	ShippingAddressID *uuid.UUID      `json:"shipping_address_id,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	FailureReason     string          `json:"failure_reason,omitempty"`
	ItemCount         int             `json:"item_count"`
	Items             []ItemResponse  `json:"items"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToOrderResponse maps a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			ProductID: it.ProductID,
			SellerID:  it.SellerID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		}
	}
	return OrderResponse{
		ID:                o.ID,
		Reference:         o.Reference,
		Status:            string(o.Status),
		Total:             o.Total,
		Currency:          o.Currency,
		ShippingAddressID: o.ShippingAddressID,
		PaidAt:            o.PaidAt,
		FailureReason:     o.FailureReason,
		ItemCount:         o.ItemCount(),
		Items:             items,
		CreatedAt:         o.CreatedAt,
	}
}

// ListOrdersQuery pages through a buyer's orders
type ListOrdersQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
