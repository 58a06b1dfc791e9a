package catalog

import (
	"strings"
	"time"

	"github.com/destocard/backend/internal/domain/shared"
)

// Serie groups extensions, e.g. "Écarlate et Violet"
type Serie struct {
	shared.BaseAggregateRoot
	APIID       string     `gorm:"column:api_id;type:varchar(50);not null;uniqueIndex"`
	Name        string     `gorm:"type:varchar(150);not null"`
	LogoURL     string     `gorm:"type:varchar(500)"`
	ReleaseDate *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (Serie) TableName() string {
	return "serie"
}

// NewSerie creates a serie
func NewSerie(apiID, name string) (*Serie, error) {
	s := &Serie{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := s.Update(apiID, name, ""); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the descriptive fields
func (s *Serie) Update(apiID, name, logoURL string) error {
	apiID = strings.TrimSpace(apiID)
	name = strings.TrimSpace(name)
	if err := validateAPIID(apiID); err != nil {
		return err
	}
	if err := validateName(name, 150); err != nil {
		return err
	}
	s.APIID = apiID
	s.Name = name
	s.LogoURL = strings.TrimSpace(logoURL)
	s.Touch()
	return nil
}

// SetReleaseDate sets the release date; nil clears it
func (s *Serie) SetReleaseDate(d *time.Time) {
	s.ReleaseDate = d
	s.Touch()
}

func validateAPIID(apiID string) error {
	if apiID == "" {
		return shared.NewDomainError("INVALID_API_ID", "L'identifiant API est obligatoire")
	}
	if len(apiID) > 50 {
		return shared.NewDomainError("INVALID_API_ID", "L'identifiant API ne peut pas dépasser 50 caractères")
	}
	return nil
}

func validateName(name string, max int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Le nom est obligatoire")
	}
	if len(name) > max {
		return shared.NewDomainError("INVALID_NAME", "Le nom est trop long")
	}
	return nil
}
