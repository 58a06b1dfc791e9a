package address

import (
	"regexp"
	"strings"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	frPostalCode = regexp.MustCompile(`^[0-9]{5}$`)
	countryCode  = regexp.MustCompile(`^[A-Z]{2}$`)
	phoneRegex   = regexp.MustCompile(`^\+?[0-9 .\-]{6,20}$`)
)

// Address is a shipping address owned by a user
type Address struct {
	shared.BaseAggregateRoot
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Label      string    `gorm:"type:varchar(50)"`
	FullName   string    `gorm:"type:varchar(150);not null"`
	Street     string    `gorm:"type:varchar(255);not null"`
	Complement string    `gorm:"type:varchar(255)"`
	PostalCode string    `gorm:"type:varchar(10);not null"`
	City       string    `gorm:"type:varchar(100);not null"`
	Country    string    `gorm:"type:char(2);not null"`
	Phone      string    `gorm:"type:varchar(20)"`
	IsDefault  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// Fields carries the editable address fields
type Fields struct {
	Label      string
	FullName   string
	Street     string
	Complement string
	PostalCode string
	City       string
	Country    string
	Phone      string
}

// NewAddress creates an address for userID
func NewAddress(userID uuid.UUID, f Fields) (*Address, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "L'utilisateur est obligatoire")
	}
	a := &Address{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
	}
	if err := a.apply(f); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the address fields
func (a *Address) Update(f Fields) error {
	if err := a.apply(f); err != nil {
		return err
	}
	a.Touch()
	a.IncrementVersion()
	return nil
}

func (a *Address) apply(f Fields) error {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Street = strings.TrimSpace(f.Street)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.ReplaceAll(strings.TrimSpace(f.PostalCode), " ", "")
	f.Country = strings.ToUpper(strings.TrimSpace(f.Country))
	f.Phone = strings.TrimSpace(f.Phone)
	if f.Country == "" {
		f.Country = "FR"
	}

	if f.FullName == "" {
		return shared.NewDomainError("INVALID_FULL_NAME", "Le nom complet est obligatoire")
	}
	if f.Street == "" {
		return shared.NewDomainError("INVALID_STREET", "L'adresse est obligatoire")
	}
	if f.City == "" {
		return shared.NewDomainError("INVALID_CITY", "La ville est obligatoire")
	}
	if !countryCode.MatchString(f.Country) {
		return shared.NewDomainError("INVALID_COUNTRY", "Le pays est invalide")
	}
	if f.PostalCode == "" {
		return shared.NewDomainError("INVALID_POSTAL_CODE", "Le code postal est obligatoire")
	}
	if f.Country == "FR" && !frPostalCode.MatchString(f.PostalCode) {
		return shared.NewDomainError("INVALID_POSTAL_CODE", "Le code postal doit contenir 5 chiffres")
	}
	if len(f.PostalCode) > 10 {
		return shared.NewDomainError("INVALID_POSTAL_CODE", "Le code postal est invalide")
	}
	if f.Phone != "" && !phoneRegex.MatchString(f.Phone) {
		return shared.NewDomainError("INVALID_PHONE", "Le numéro de téléphone est invalide")
	}
	if len(f.FullName) > 150 || len(f.Street) > 255 || len(f.Complement) > 255 || len(f.City) > 100 || len(f.Label) > 50 {
		return shared.NewDomainError("INVALID_ADDRESS", "Un des champs de l'adresse est trop long")
	}

	a.Label = strings.TrimSpace(f.Label)
	a.FullName = f.FullName
	a.Street = f.Street
	a.Complement = strings.TrimSpace(f.Complement)
	a.PostalCode = f.PostalCode
	a.City = f.City
	a.Country = f.Country
	a.Phone = f.Phone
	return nil
}

// MarkDefault flags the address as the user's default
func (a *Address) MarkDefault() {
	a.IsDefault = true
	a.Touch()
}

// IsOwnedBy reports whether userID owns the address
func (a *Address) IsOwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}

// OneLine renders the address on a single line for invoices
func (a *Address) OneLine() string {
	parts := []string{a.Street}
	if a.Complement != "" {
		parts = append(parts, a.Complement)
	}
	parts = append(parts, a.PostalCode+" "+a.City, a.Country)
	return strings.Join(parts, ", ")
}

// ErrAccessDenied is returned when a user touches another user's address
var ErrAccessDenied = shared.NewDomainError(shared.ErrForbidden.Code, "Vous n'avez pas accès à cette adresse")
