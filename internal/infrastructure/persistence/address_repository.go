package persistence

import (
	"context"

	"github.com/destocard/backend/internal/domain/address"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*address.Address, error) {
	var a address.Address
	if err := findFirst(ctx, r.db, &a, "id = ?", id); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByUser lists the addresses of a user, default first
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	var list []address.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&list).Error
	return list, err
}

// CountByUser counts the addresses of a user
func (r *GormAddressRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&address.Address{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Save creates or updates an address
func (r *GormAddressRepository) Save(ctx context.Context, a *address.Address) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Delete deletes an address
func (r *GormAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &address.Address{}, id)
}

// ClearDefault unflags the default address of a user
func (r *GormAddressRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&address.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

var _ address.AddressRepository = (*GormAddressRepository)(nil)
