package persistence

import (
	"context"

	"github.com/destocard/backend/internal/domain/messaging"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMessageRepository implements MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// FindByID finds a message by ID
func (r *GormMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*messaging.Message, error) {
	var m messaging.Message
	if err := findFirst(ctx, r.db, &m, "id = ?", id); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindInbox returns received messages, newest first
func (r *GormMessageRepository) FindInbox(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]messaging.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&messaging.Message{}).Where("recipient_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []messaging.Message
	err := query.Order("created_at DESC").Limit(filter.Limit()).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

// FindConversation returns the messages between a and b, oldest first
func (r *GormMessageRepository) FindConversation(ctx context.Context, a, b uuid.UUID, filter shared.Filter) ([]messaging.Message, error) {
	var list []messaging.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Where("system = ?", false).
		Order("created_at ASC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&list).Error
	return list, err
}

// CountUnread counts unread messages received by userID
func (r *GormMessageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&messaging.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// Save creates or updates a message
func (r *GormMessageRepository) Save(ctx context.Context, m *messaging.Message) error {
	return r.db.WithContext(ctx).Save(m).Error
}

var _ messaging.MessageRepository = (*GormMessageRepository)(nil)
