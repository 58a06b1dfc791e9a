package messaging

import (
	"time"

	"github.com/destocard/backend/internal/domain/messaging"
	"github.com/google/uuid"
)

// SendMessageRequest is a new message
type SendMessageRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id" binding:"required"`
	ProductID   *uuid.UUID `json:"product_id"`
	Content     string     `json:"content" binding:"required,max=2000"`
}

// PageQuery pages inbox and conversation listings
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MessageResponse is a message
type MessageResponse struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Content     string     `json:"content"`
	System      bool       `json:"system"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UnreadResponse is the unread badge count
type UnreadResponse struct {
	Unread int64 `json:"unread"`
}

// ToMessageResponse converts a message
func ToMessageResponse(m *messaging.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		ProductID:   m.ProductID,
		Content:     m.Content,
		System:      m.System,
		Read:        m.IsRead(),
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toMessageResponses(list []messaging.Message) []MessageResponse {
	out := make([]MessageResponse, len(list))
	for i := range list {
		out[i] = ToMessageResponse(&list[i])
	}
	return out
}
