package catalog

import (
	"strconv"
	"strings"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PokemonCard is one printed card variant of an extension
type PokemonCard struct {
	shared.BaseAggregateRoot
	ExtensionID uuid.UUID `gorm:"type:uuid;not null;index"`
	APIID       string    `gorm:"column:api_id;type:varchar(50);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(150);not null;index"`
	Number      string    `gorm:"type:varchar(20);not null"`
	Rarity      string    `gorm:"type:varchar(50)"`
	Category    string    `gorm:"type:varchar(30)"`
	Illustrator string    `gorm:"type:varchar(100)"`
	ImageURL    string    `gorm:"type:varchar(500)"`
	HP          int       `gorm:"column:hp;not null;default:0"`
}

// TableName returns the table name for GORM
func (PokemonCard) TableName() string {
	return "pokemon_card"
}

// CardDetails carries the optional descriptive fields of a card
type CardDetails struct {
	Rarity      string
	Category    string
	Illustrator string
	ImageURL    string
	HP          int
}

// NewPokemonCard creates a card inside an extension
func NewPokemonCard(extensionID uuid.UUID, apiID, name, number string) (*PokemonCard, error) {
	if extensionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EXTENSION", "L'extension est obligatoire")
	}
	c := &PokemonCard{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExtensionID:       extensionID,
	}
	if err := c.Update(apiID, name, number, CardDetails{}); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the card fields
func (c *PokemonCard) Update(apiID, name, number string, details CardDetails) error {
	apiID = strings.TrimSpace(apiID)
	name = strings.TrimSpace(name)
	number = strings.TrimSpace(number)
	if err := validateAPIID(apiID); err != nil {
		return err
	}
	if err := validateName(name, 150); err != nil {
		return err
	}
	if number == "" || len(number) > 20 {
		return shared.NewDomainError("INVALID_NUMBER", "Le numéro de la carte est invalide")
	}
	if details.HP < 0 {
		return shared.NewDomainError("INVALID_HP", "Les PV ne peuvent pas être négatifs")
	}
	c.APIID = apiID
	c.Name = name
	c.Number = number
	c.Rarity = strings.TrimSpace(details.Rarity)
	c.Category = strings.TrimSpace(details.Category)
	c.Illustrator = strings.TrimSpace(details.Illustrator)
	c.ImageURL = strings.TrimSpace(details.ImageURL)
	c.HP = details.HP
	c.Touch()
	return nil
}

// MoveToExtension reattaches the card
func (c *PokemonCard) MoveToExtension(extensionID uuid.UUID) error {
	if extensionID == uuid.Nil {
		return shared.NewDomainError("INVALID_EXTENSION", "L'extension est obligatoire")
	}
	c.ExtensionID = extensionID
	c.Touch()
	return nil
}

// DisplayName returns "Pikachu 25/165"
func (c *PokemonCard) DisplayName(ext *Extension) string {
	if ext != nil && ext.CardCount > 0 {
		return c.Name + " " + c.Number + "/" + strconv.Itoa(ext.CardCount)
	}
	return c.Name + " " + c.Number
}
