package address

import (
	"time"

	"github.com/destocard/backend/internal/domain/address"
	"github.com/google/uuid"
)

// AddressRequest creates or replaces an address
type AddressRequest struct {
	Label      string `json:"label" binding:"max=50"`
	FullName   string `json:"full_name" binding:"required,max=150"`
	Street     string `json:"street" binding:"required,max=255"`
	Complement string `json:"complement" binding:"max=255"`
	PostalCode string `json:"postal_code" binding:"required,fr_postcode"`
	City       string `json:"city" binding:"required,max=100"`
	Country    string `json:"country" binding:"omitempty,len=2"`
	Phone      string `json:"phone" binding:"max=20"`
}

func (r AddressRequest) fields() address.Fields {
	return address.Fields{
		Label:      r.Label,
		FullName:   r.FullName,
		Street:     r.Street,
		Complement: r.Complement,
		PostalCode: r.PostalCode,
		City:       r.City,
		Country:    r.Country,
		Phone:      r.Phone,
	}
}

// AddressResponse is an address
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label,omitempty"`
	FullName   string    `json:"full_name"`
	Street     string    `json:"street"`
	Complement string    `json:"complement,omitempty"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone,omitempty"`
	IsDefault  bool      `json:"is_default"`
	OneLine    string    `json:"one_line"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToAddressResponse converts an address
func ToAddressResponse(a *address.Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID,
		Label:      a.Label,
		FullName:   a.FullName,
		Street:     a.Street,
		Complement: a.Complement,
		PostalCode: a.PostalCode,
		City:       a.City,
		Country:    a.Country,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
		OneLine:    a.OneLine(),
		CreatedAt:  a.CreatedAt,
	}
}
