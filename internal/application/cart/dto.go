package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=99"`
}

// UpdateItemRequest changes a line quantity; 0 removes the line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=99"`
}

// CheckoutRequest starts the payment of the cart
type CheckoutRequest struct {
	AddressID *uuid.UUID `json:"address_id"`
}

// LineResponse is a cart line with a snapshot of its product
type LineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// CartResponse is the content of a cart
type CartResponse struct {
	Lines    []LineResponse  `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Currency string          `json:"currency"`
}

// CheckoutResponse is returned once the order exists and the PaymentIntent
// is ready to be confirmed by the browser
type CheckoutResponse struct {
	OrderID         uuid.UUID       `json:"order_id"`
	Reference       string          `json:"reference"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	PublishableKey  string          `json:"publishable_key"`
}
