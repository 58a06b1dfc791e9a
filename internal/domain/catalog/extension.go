package catalog

import (
	"strings"
	"time"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Extension is a printed card set belonging to a serie
type Extension struct {
	shared.BaseAggregateRoot
	SerieID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	APIID       string     `gorm:"column:api_id;type:varchar(50);not null;uniqueIndex"`
	Name        string     `gorm:"type:varchar(150);not null"`
	LogoURL     string     `gorm:"type:varchar(500)"`
	SymbolURL   string     `gorm:"type:varchar(500)"`
	CardCount   int        `gorm:"not null;default:0"`
	ReleaseDate *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (Extension) TableName() string {
	return "extension"
}

// NewExtension creates an extension inside a serie
func NewExtension(serieID uuid.UUID, apiID, name string) (*Extension, error) {
	if serieID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERIE", "La série est obligatoire")
	}
	e := &Extension{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SerieID:           serieID,
	}
	if err := e.Update(apiID, name, "", "", 0); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the descriptive fields
func (e *Extension) Update(apiID, name, logoURL, symbolURL string, cardCount int) error {
	apiID = strings.TrimSpace(apiID)
	name = strings.TrimSpace(name)
	if err := validateAPIID(apiID); err != nil {
		return err
	}
	if err := validateName(name, 150); err != nil {
		return err
	}
	if cardCount < 0 {
		return shared.NewDomainError("INVALID_CARD_COUNT", "Le nombre de cartes ne peut pas être négatif")
	}
	e.APIID = apiID
	e.Name = name
	e.LogoURL = strings.TrimSpace(logoURL)
	e.SymbolURL = strings.TrimSpace(symbolURL)
	e.CardCount = cardCount
	e.Touch()
	return nil
}

// MoveToSerie reattaches the extension
func (e *Extension) MoveToSerie(serieID uuid.UUID) error {
	if serieID == uuid.Nil {
		return shared.NewDomainError("INVALID_SERIE", "La série est obligatoire")
	}
	e.SerieID = serieID
	e.Touch()
	return nil
}

// SetReleaseDate sets the release date; nil clears it
func (e *Extension) SetReleaseDate(d *time.Time) {
	e.ReleaseDate = d
	e.Touch()
}
