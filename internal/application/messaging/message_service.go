// Package messaging sends private messages between users and the system
// notifications sellers receive when a listing sells.
package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/messaging"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messaging errors
var (
	ErrRecipientNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Destinataire introuvable")
	ErrMessageForbidden  = shared.NewDomainError(shared.ErrForbidden.Code, "Vous n'avez pas accès à ce message")
)

// MessageService sends and lists messages
type MessageService struct {
	messageRepo messaging.MessageRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewMessageService creates a message service
func NewMessageService(messageRepo messaging.MessageRepository, userRepo identity.UserRepository, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo, logger: logger}
}

// Send delivers a message to an existing user
func (s *MessageService) Send(ctx context.Context, senderID uuid.UUID, req SendMessageRequest) (*MessageResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	m, err := messaging.NewMessage(senderID, req.RecipientID, req.ProductID, req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Debug("Message sent",
		zap.String("message_id", m.ID.String()),
		zap.String("recipient_id", req.RecipientID.String()))
	resp := ToMessageResponse(m)
	return &resp, nil
}

// Inbox lists the messages received by userID, newest first
func (s *MessageService) Inbox(ctx context.Context, userID uuid.UUID, q PageQuery) (shared.Paginated[MessageResponse], error) {
	filter := pageFilter(q)
	list, total, err := s.messageRepo.FindInbox(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[MessageResponse]{}, err
	}
	return shared.NewPaginated(toMessageResponses(list), total, filter.Page, filter.Limit()), nil
}

// Conversation lists the messages exchanged with otherID, oldest first
func (s *MessageService) Conversation(ctx context.Context, userID, otherID uuid.UUID, q PageQuery) ([]MessageResponse, error) {
	list, err := s.messageRepo.FindConversation(ctx, userID, otherID, pageFilter(q))
	if err != nil {
		return nil, err
	}
	return toMessageResponses(list), nil
}

// MarkRead marks a received message as read
func (s *MessageService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*MessageResponse, error) {
	m, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Involves(userID) {
		return nil, ErrMessageForbidden
	}
	if err := m.MarkRead(userID); err != nil {
		return nil, err
	}
	if err := s.messageRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	resp := ToMessageResponse(m)
	return &resp, nil
}

// UnreadCount counts unread received messages
func (s *MessageService) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadResponse, error) {
	n, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadResponse{Unread: n}, nil
}

// NotifySale tells a seller that their listing sold
func (s *MessageService) NotifySale(ctx context.Context, sellerID, productID uuid.UUID, title string, quantity int) error {
	content := fmt.Sprintf("Votre annonce « %s » a été vendue", title)
	if quantity > 1 {
		content = fmt.Sprintf("Votre annonce « %s » a été vendue en %d exemplaires", title, quantity)
	}
	m, err := messaging.NewSystemMessage(sellerID, &productID, content)
	if err != nil {
		return err
	}
	return s.messageRepo.Save(ctx, m)
}

func pageFilter(q PageQuery) shared.Filter {
	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	return filter
}
