package catalog

import (
	"time"

	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// SerieRequest creates or edits a serie
type SerieRequest struct {
	APIID       string     `json:"api_id" binding:"required,max=50"`
	Name        string     `json:"name" binding:"required,max=150"`
	LogoURL     string     `json:"logo_url" binding:"omitempty,url,max=500"`
	ReleaseDate *time.Time `json:"release_date"`
}

// ExtensionRequest creates or edits an extension
type ExtensionRequest struct {
	SerieID     uuid.UUID  `json:"serie_id" binding:"required"`
	APIID       string     `json:"api_id" binding:"required,max=50"`
	Name        string     `json:"name" binding:"required,max=150"`
	LogoURL     string     `json:"logo_url" binding:"omitempty,url,max=500"`
	SymbolURL   string     `json:"symbol_url" binding:"omitempty,url,max=500"`
	CardCount   int        `json:"card_count" binding:"min=0"`
	ReleaseDate *time.Time `json:"release_date"`
}

// CardRequest creates or edits a card
type CardRequest struct {
	ExtensionID uuid.UUID `json:"extension_id" binding:"required"`
	APIID       string    `json:"api_id" binding:"required,max=50"`
	Name        string    `json:"name" binding:"required,max=150"`
	Number      string    `json:"number" binding:"required,max=20"`
	Rarity      string    `json:"rarity" binding:"max=50"`
	Category    string    `json:"category" binding:"max=30"`
	Illustrator string    `json:"illustrator" binding:"max=100"`
	ImageURL    string    `json:"image_url" binding:"omitempty,url,max=500"`
	HP          int       `json:"hp" binding:"min=0"`
}

func (r CardRequest) details() catalog.CardDetails {
	return catalog.CardDetails{
		Rarity:      r.Rarity,
		Category:    r.Category,
		Illustrator: r.Illustrator,
		ImageURL:    r.ImageURL,
		HP:          r.HP,
	}
}

// SearchCardsQuery backs the card search
type SearchCardsQuery struct {
	Q           string     `form:"q" binding:"max=100"`
	ExtensionID *uuid.UUID `form:"extension_id"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetCardQuery looks a card up by id or by TCGdex id
type GetCardQuery struct {
	ID    *uuid.UUID `form:"id"`
	APIID string     `form:"api_id" binding:"max=50"`
}

// SerieResponse is a serie
type SerieResponse struct {
	ID          uuid.UUID  `json:"id"`
	APIID       string     `json:"api_id"`
	Name        string     `json:"name"`
	LogoURL     string     `json:"logo_url,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

// ExtensionResponse is an extension
type ExtensionResponse struct {
	ID          uuid.UUID  `json:"id"`
	SerieID     uuid.UUID  `json:"serie_id"`
	APIID       string     `json:"api_id"`
	Name        string     `json:"name"`
	LogoURL     string     `json:"logo_url,omitempty"`
	SymbolURL   string     `json:"symbol_url,omitempty"`
	CardCount   int        `json:"card_count"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

// CardResponse is a card
type CardResponse struct {
	ID          uuid.UUID `json:"id"`
	ExtensionID uuid.UUID `json:"extension_id"`
	APIID       string    `json:"api_id"`
	Name        string    `json:"name"`
	Number      string    `json:"number"`
	Rarity      string    `json:"rarity,omitempty"`
	Category    string    `json:"category,omitempty"`
	Illustrator string    `json:"illustrator,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	HP          int       `json:"hp,omitempty"`
}

// CardDetailResponse is a card with its extension and listing count
type CardDetailResponse struct {
	CardResponse
	DisplayName  string             `json:"display_name"`
	Extension    *ExtensionResponse `json:"extension,omitempty"`
	ListingCount int64              `json:"listing_count"`
}

// ImportResponse reports what ImportCard wrote
type ImportResponse struct {
	Serie     SerieResponse     `json:"serie"`
	Extension ExtensionResponse `json:"extension"`
	Card      CardResponse      `json:"card"`
	Created   bool              `json:"created"`
}

func toSerieResponse(s *catalog.Serie) SerieResponse {
	return SerieResponse{
		ID:          s.ID,
		APIID:       s.APIID,
		Name:        s.Name,
		LogoURL:     s.LogoURL,
		ReleaseDate: s.ReleaseDate,
	}
}

func toExtensionResponse(e *catalog.Extension) ExtensionResponse {
	return ExtensionResponse{
		ID:          e.ID,
		SerieID:     e.SerieID,
		APIID:       e.APIID,
		Name:        e.Name,
		LogoURL:     e.LogoURL,
		SymbolURL:   e.SymbolURL,
		CardCount:   e.CardCount,
		ReleaseDate: e.ReleaseDate,
	}
}

func toCardResponse(c *catalog.PokemonCard) CardResponse {
	return CardResponse{
		ID:          c.ID,
		ExtensionID: c.ExtensionID,
		APIID:       c.APIID,
		Name:        c.Name,
		Number:      c.Number,
		Rarity:      c.Rarity,
		Category:    c.Category,
		Illustrator: c.Illustrator,
		ImageURL:    c.ImageURL,
		HP:          c.HP,
	}
}

func toCardResponses(list []catalog.PokemonCard) []CardResponse {
	out := make([]CardResponse, len(list))
	for i := range list {
		out[i] = toCardResponse(&list[i])
	}
	return out
}
