package media

import (
	"time"

	"github.com/destocard/backend/internal/domain/media"
	"github.com/google/uuid"
)

// WebcamUploadRequest carries a webcam capture encoded as a data URI
type WebcamUploadRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	Image     string     `json:"image" binding:"required"`
}

// MediaResponse is an uploaded file
type MediaResponse struct {
	ID           uuid.UUID  `json:"id"`
	ProductID    *uuid.UUID `json:"product_id,omitempty"`
	Kind         string     `json:"kind"`
	URL          string     `json:"url"`
	ContentType  string     `json:"content_type"`
	Size         int64      `json:"size"`
	Width        int        `json:"width,omitempty"`
	Height       int        `json:"height,omitempty"`
	OriginalName string     `json:"original_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToMediaResponse maps a domain media
func ToMediaResponse(m *media.Media) MediaResponse {
	return MediaResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Kind:         string(m.Kind),
		URL:          m.URL,
		ContentType:  m.ContentType,
		Size:         m.Size,
		Width:        m.Width,
		Height:       m.Height,
		OriginalName: m.OriginalName,
		CreatedAt:    m.CreatedAt,
	}
}

// ToMediaResponses maps a list of domain media
func ToMediaResponses(list []media.Media) []MediaResponse {
	out := make([]MediaResponse, len(list))
	for i := range list {
		out[i] = ToMediaResponse(&list[i])
	}
	return out
}
