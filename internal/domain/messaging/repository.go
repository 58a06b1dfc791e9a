package messaging

import (
	"context"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MessageRepository defines persistence for messages
type MessageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	// FindInbox returns messages received by userID, newest first
	FindInbox(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Message, int64, error)
	// FindConversation returns messages exchanged between a and b, oldest first
	FindConversation(ctx context.Context, a, b uuid.UUID, filter shared.Filter) ([]Message, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, m *Message) error
}
