package order

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment state of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Order is a placed purchase. It is created pending at checkout and moved to
// completed or failed by the payment webhook.
type Order struct {
	shared.BaseAggregateRoot
	Reference         string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	BuyerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShippingAddressID *uuid.UUID      `gorm:"type:uuid"`
	Status            Status          `gorm:"type:varchar(20);not null;index"`
	Total             decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency          string          `gorm:"type:char(3);not null"`
	PaymentIntentID   *string         `gorm:"type:varchar(100);uniqueIndex"`
	PaidAt            *time.Time
	FailureReason     string         `gorm:"type:varchar(255)"`
	Items             []OrderProduct `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderProduct is one line of an order (orders_products row)
type OrderProduct struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title     string          `gorm:"type:varchar(150);not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (OrderProduct) TableName() string {
	return "orders_products"
}

// LineTotal returns unit price × quantity
func (l OrderProduct) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineInput describes a product bought at checkout
type LineInput struct {
	ProductID uuid.UUID
	SellerID  uuid.UUID
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// NewOrder creates a pending order from checkout lines
func NewOrder(buyerID uuid.UUID, shippingAddressID *uuid.UUID, lines []LineInput) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "L'acheteur est obligatoire")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "La commande doit contenir au moins un produit")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuyerID:           buyerID,
		ShippingAddressID: shippingAddressID,
		Status:            StatusPending,
		Currency:          string(valueobject.DefaultCurrency),
	}
	o.Reference = NewReference(o.CreatedAt, o.ID)

	total := decimal.Zero
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
		}
		if !l.UnitPrice.IsPositive() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Le prix doit être supérieur à 0")
		}
		if seen[l.ProductID] {
			return nil, shared.NewDomainError("DUPLICATE_LINE", "Un produit apparaît deux fois dans la commande")
		}
		seen[l.ProductID] = true

		item := OrderProduct{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			SellerID:  l.SellerID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
		total = total.Add(item.LineTotal())
		o.Items = append(o.Items, item)
	}
	o.Total = total

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// NewReference builds a human-readable order reference: DC-20261018-3F2A9C
func NewReference(at time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6])
	return "DC-" + at.Format("20060102") + "-" + suffix
}

// AttachPaymentIntent stores the Stripe PaymentIntent id
func (o *Order) AttachPaymentIntent(paymentIntentID string) error {
	if strings.TrimSpace(paymentIntentID) == "" {
		return shared.NewDomainError("INVALID_PAYMENT_INTENT", "Identifiant de paiement manquant")
	}
	if !o.IsPending() {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "La commande n'est plus en attente de paiement")
	}
	o.PaymentIntentID = &paymentIntentID
	o.Touch()
	return nil
}

// Complete marks the order paid. It returns false without error when the
// order is already completed so that repeated webhook deliveries are no-ops.
func (o *Order) Complete() (bool, error) {
	switch o.Status {
	case StatusCompleted:
		return false, nil
	case StatusPending:
	default:
		return false, shared.NewDomainError(shared.ErrInvalidState.Code, "Impossible de valider une commande en échec")
	}
	now := time.Now()
	o.Status = StatusCompleted
	o.PaidAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return true, nil
}

// maxFailureReason matches the failure_reason column width in characters
const maxFailureReason = 255

// Fail marks the order as failed. It returns false without error when the
// order is already failed.
func (o *Order) Fail(reason string) (bool, error) {
	switch o.Status {
	case StatusFailed:
		return false, nil
	case StatusPending:
	default:
		return false, shared.NewDomainError(shared.ErrInvalidState.Code, "Impossible d'annuler une commande déjà payée")
	}
	if utf8.RuneCountInString(reason) > maxFailureReason {
		reason = string([]rune(reason)[:maxFailureReason])
	}
	o.Status = StatusFailed
	o.FailureReason = reason
	o.Touch()
	o.AddDomainEvent(NewOrderFailedEvent(o))
	return true, nil
}

// IsPending reports whether the order awaits payment
func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.BuyerID == userID
}

// TotalMoney returns the total as money
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(o.Total)
}

// ItemCount returns the number of units bought
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// SubtotalBySeller groups line totals per seller
func (o *Order) SubtotalBySeller() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, it := range o.Items {
		out[it.SellerID] = out[it.SellerID].Add(it.LineTotal())
	}
	return out
}
