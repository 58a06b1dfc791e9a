package persistence

import (
	"context"

	"github.com/destocard/backend/internal/domain/media"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMediaRepository implements MediaRepository using GORM
type GormMediaRepository struct {
	db *gorm.DB
}

// NewGormMediaRepository creates a new GormMediaRepository
func NewGormMediaRepository(db *gorm.DB) *GormMediaRepository {
	return &GormMediaRepository{db: db}
}

// FindByID finds a media by ID
func (r *GormMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*media.Media, error) {
	var m media.Media
	if err := findFirst(ctx, r.db, &m, "id = ?", id); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByProduct lists the media of a product in upload order
func (r *GormMediaRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]media.Media, error) {
	var list []media.Media
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at ASC").Find(&list).Error
	return list, err
}

// FindByOwner lists the media uploaded by a user
func (r *GormMediaRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]media.Media, error) {
	var list []media.Media
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// Save creates or updates a media
func (r *GormMediaRepository) Save(ctx context.Context, m *media.Media) error {
	return mapWriteError(r.db.WithContext(ctx).Save(m).Error)
}

// Delete deletes a media
func (r *GormMediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &media.Media{}, id)
}

var _ media.MediaRepository = (*GormMediaRepository)(nil)
