package marketplace

import (
	"strings"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Condition grades the physical state of a card
type Condition string

const (
	ConditionMint        Condition = "mint"
	ConditionNearMint    Condition = "near_mint"
	ConditionExcellent   Condition = "excellent"
	ConditionGood        Condition = "good"
	ConditionLightPlayed Condition = "light_played"
	ConditionPlayed      Condition = "played"
	ConditionPoor        Condition = "poor"
)

// AllConditions lists every grade from best to worst
var AllConditions = []Condition{
	ConditionMint, ConditionNearMint, ConditionExcellent, ConditionGood,
	ConditionLightPlayed, ConditionPlayed, ConditionPoor,
}

// IsValid checks if the condition is a known grade
func (c Condition) IsValid() bool {
	for _, known := range AllConditions {
		if c == known {
			return true
		}
	}
	return false
}

// ProductStatus is the listing state
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusSoldOut  ProductStatus = "sold_out"
	ProductStatusArchived ProductStatus = "archived"
)

// MaxPrice caps a listing price
var MaxPrice = decimal.NewFromInt(100000)

// Product is a listing put up for sale by a user
type Product struct {
	shared.BaseAggregateRoot
	SellerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PokemonCardID *uuid.UUID      `gorm:"type:uuid;index"`
	Title         string          `gorm:"type:varchar(150);not null"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock         int             `gorm:"not null;default:0"`
	Condition     Condition       `gorm:"type:varchar(20);not null"`
	Language      string          `gorm:"type:varchar(5);not null;default:'fr'"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductInput carries the editable listing fields
type ProductInput struct {
	Title         string
	Description   string
	Price         decimal.Decimal
	Stock         int
	Condition     Condition
	Language      string
	PokemonCardID *uuid.UUID
}

// NewProduct creates an active listing
func NewProduct(sellerID uuid.UUID, in ProductInput) (*Product, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Le vendeur est obligatoire")
	}
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
	}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	p.refreshStatus()
	return p, nil
}

// Update replaces the listing fields. Archived listings are read-only.
func (p *Product) Update(in ProductInput) error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("PRODUCT_ARCHIVED", "Cette annonce est archivée")
	}
	if err := p.apply(in); err != nil {
		return err
	}
	p.refreshStatus()
	p.Touch()
	return nil
}

func (p *Product) apply(in ProductInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Le titre est obligatoire")
	}
	if len(title) > 150 {
		return shared.NewDomainError("INVALID_TITLE", "Le titre ne peut pas dépasser 150 caractères")
	}
	if len(in.Description) > 5000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "La description ne peut pas dépasser 5000 caractères")
	}
	if err := validatePrice(in.Price); err != nil {
		return err
	}
	if in.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Le stock ne peut pas être négatif")
	}
	if !in.Condition.IsValid() {
		return shared.NewDomainError("INVALID_CONDITION", "L'état de la carte est invalide")
	}
	lang := strings.ToLower(strings.TrimSpace(in.Language))
	if lang == "" {
		lang = "fr"
	}
	if len(lang) > 5 {
		return shared.NewDomainError("INVALID_LANGUAGE", "La langue est invalide")
	}

	p.Title = title
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.Stock = in.Stock
	p.Condition = in.Condition
	p.Language = lang
	p.PokemonCardID = in.PokemonCardID
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Le prix doit être supérieur à 0")
	}
	if price.GreaterThan(MaxPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Le prix est trop élevé")
	}
	return nil
}

// SetPrice changes the unit price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.Price = price.Round(2)
	p.Touch()
	return nil
}

// SetStock overwrites the stock level
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Le stock ne peut pas être négatif")
	}
	p.Stock = stock
	p.refreshStatus()
	p.Touch()
	return nil
}

// DecreaseStock removes quantity units
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
	}
	if p.Stock < quantity {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code, "Stock insuffisant pour « "+p.Title+" »")
	}
	p.Stock -= quantity
	p.refreshStatus()
	p.Touch()
	return nil
}

// IncreaseStock puts quantity units back, e.g. after a failed payment
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
	}
	p.Stock += quantity
	p.refreshStatus()
	p.Touch()
	return nil
}

// Archive withdraws the listing from sale
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("PRODUCT_ARCHIVED", "Cette annonce est déjà archivée")
	}
	p.Status = ProductStatusArchived
	p.Touch()
	return nil
}

func (p *Product) refreshStatus() {
	if p.Status == ProductStatusArchived {
		return
	}
	if p.Stock == 0 {
		p.Status = ProductStatusSoldOut
	} else {
		p.Status = ProductStatusActive
	}
}

// IsAvailable reports whether the listing can be bought
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive && p.Stock > 0
}

// IsOwnedBy reports whether userID is the seller
func (p *Product) IsOwnedBy(userID uuid.UUID) bool {
	return p.SellerID == userID
}

// UnitPrice returns the price as money
func (p *Product) UnitPrice() valueobject.Money {
	return valueobject.NewMoneyEUR(p.Price)
}
