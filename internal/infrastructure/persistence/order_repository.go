package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/destocard/backend/internal/domain/order"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).Preload("Items").Where(query, args...).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByPaymentIntentID finds the order paid by a PaymentIntent
func (r *GormOrderRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*order.Order, error) {
	return r.findOne(ctx, "payment_intent_id = ?", paymentIntentID)
}

// FindByBuyer lists a buyer's orders, paginated
func (r *GormOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("buyer_id = ?", buyerID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []order.Order
	err := paginate(query.Preload("Items"), filter, OrderSortFields, "created_at", "DESC").Find(&orders).Error
	return orders, total, err
}

// FindPendingOlderThan returns pending orders created before cutoff
func (r *GormOrderRepository) FindPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]order.Order, error) {
	var orders []order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND created_at < ?", order.StatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// Save inserts a new order and its lines
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return mapWriteError(r.db.WithContext(ctx).Create(o).Error)
}

// SaveWithLock updates the order columns if the stored version matches
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"status":            o.Status,
			"payment_intent_id": o.PaymentIntentID,
			"paid_at":           o.PaidAt,
			"failure_reason":    o.FailureReason,
			"version":           o.Version + 1,
			"updated_at":        o.UpdatedAt,
		})
	if result.Error != nil {
		return mapWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	o.IncrementVersion()
	return nil
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
