package messaging

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxContentLength bounds a message body, in characters
const MaxContentLength = 2000

// Message is a private message between two users, optionally about a listing
type Message struct {
	shared.BaseEntity
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid;index"`
	Content     string     `gorm:"type:text;not null"`
	System      bool       `gorm:"not null;default:false"`
	ReadAt      *time.Time
}

// TableName returns the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// NewMessage creates a message from sender to recipient
func NewMessage(senderID, recipientID uuid.UUID, productID *uuid.UUID, content string) (*Message, error) {
	if senderID == uuid.Nil || recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTICIPANT", "L'expéditeur et le destinataire sont obligatoires")
	}
	if senderID == recipientID {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Vous ne pouvez pas vous envoyer un message")
	}
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	return &Message{
		BaseEntity:  shared.NewBaseEntity(),
		SenderID:    senderID,
		RecipientID: recipientID,
		ProductID:   productID,
		Content:     content,
	}, nil
}

// NewSystemMessage creates a notification addressed to recipientID.
// Sender and recipient are the same account.
func NewSystemMessage(recipientID uuid.UUID, productID *uuid.UUID, content string) (*Message, error) {
	if recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTICIPANT", "Le destinataire est obligatoire")
	}
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	return &Message{
		BaseEntity:  shared.NewBaseEntity(),
		SenderID:    recipientID,
		RecipientID: recipientID,
		ProductID:   productID,
		Content:     content,
		System:      true,
	}, nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", shared.NewDomainError("INVALID_CONTENT", "Le message ne peut pas être vide")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", shared.NewDomainError("INVALID_CONTENT", "Le message ne peut pas dépasser 2000 caractères")
	}
	return content, nil
}

// MarkRead stamps the read time. Only the recipient may do it; reading twice keeps the first time.
func (m *Message) MarkRead(userID uuid.UUID) error {
	if m.RecipientID != userID {
		return shared.NewDomainError(shared.ErrForbidden.Code, "Vous n'avez pas accès à ce message")
	}
	if m.ReadAt != nil {
		return nil
	}
	now := time.Now()
	m.ReadAt = &now
	m.UpdatedAt = now
	return nil
}

// IsRead reports whether the recipient opened the message
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// Involves reports whether userID is the sender or the recipient
func (m *Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}
