package marketplace

import (
	"time"

	appmedia "github.com/destocard/backend/internal/application/media"
	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRequest carries the editable fields of a listing
type ProductRequest struct {
	Title         string          `json:"title" binding:"required,max=150"`
	Description   string          `json:"description" binding:"max=5000"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" binding:"min=0,max=10000"`
	Condition     string          `json:"condition" binding:"required,card_condition"`
	Language      string          `json:"language" binding:"omitempty,len=2"`
	PokemonCardID *uuid.UUID      `json:"pokemon_card_id"`
}

func (r ProductRequest) toInput() marketplace.ProductInput {
	return marketplace.ProductInput{
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		Stock:         r.Stock,
		Condition:     marketplace.Condition(r.Condition),
		Language:      r.Language,
		PokemonCardID: r.PokemonCardID,
	}
}

// ListProductsQuery filters the public listing
type ListProductsQuery struct {
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search    string     `form:"q" binding:"max=100"`
	SellerID  *uuid.UUID `form:"seller_id"`
	CardID    *uuid.UUID `form:"card_id"`
	Condition string     `form:"condition" binding:"omitempty,card_condition"`
	MinPrice  string     `form:"min_price" binding:"omitempty,numeric"`
	MaxPrice  string     `form:"max_price" binding:"omitempty,numeric"`
	OrderBy   string     `form:"sort" binding:"omitempty,oneof=created_at price title"`
	OrderDir  string     `form:"dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse is a listing
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	SellerID      uuid.UUID       `json:"seller_id"`
	PokemonCardID *uuid.UUID      `json:"pokemon_card_id,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Condition     string          `json:"condition"`
	Language      string          `json:"language"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CardSummary is the catalog card a listing refers to
type CardSummary struct {
	ID       uuid.UUID `json:"id"`
	APIID    string    `json:"api_id"`
	Name     string    `json:"name"`
	Number   string    `json:"number"`
	Rarity   string    `json:"rarity,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
}

// ProductDetailResponse is a listing with its media, card and likes
type ProductDetailResponse struct {
	ProductResponse
	Media     []appmedia.MediaResponse `json:"media"`
	Card      *CardSummary             `json:"card,omitempty"`
	LikeCount int64                    `json:"like_count"`
	Liked     bool                     `json:"liked"`
}

// LikeResponse is the result of ToggleLike
type LikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ToProductResponse maps a domain product
func ToProductResponse(p *marketplace.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SellerID:      p.SellerID,
		PokemonCardID: p.PokemonCardID,
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		Stock:         p.Stock,
		Condition:     string(p.Condition),
		Language:      p.Language,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponses maps a list of domain products
func ToProductResponses(list []marketplace.Product) []ProductResponse {
	out := make([]ProductResponse, len(list))
	for i := range list {
		out[i] = ToProductResponse(&list[i])
	}
	return out
}

func toCardSummary(c *catalog.PokemonCard) *CardSummary {
	return &CardSummary{
		ID:       c.ID,
		APIID:    c.APIID,
		Name:     c.Name,
		Number:   c.Number,
		Rarity:   c.Rarity,
		ImageURL: c.ImageURL,
	}
}
