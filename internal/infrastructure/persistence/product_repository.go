package persistence

import (
	"context"

	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Product, error) {
	var p marketplace.Product
	if err := findFirst(ctx, r.db, &p, "id = ?", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs finds products by IDs; missing ids are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]marketplace.Product, error) {
	if len(ids) == 0 {
		return []marketplace.Product{}, nil
	}
	var products []marketplace.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll lists products matching filter, paginated
func (r *GormProductRepository) FindAll(ctx context.Context, filter marketplace.ProductFilter) ([]marketplace.Product, error) {
	var products []marketplace.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&marketplace.Product{}), filter)
	if err := paginate(query, filter.Filter, ProductSortFields, "created_at", "DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching filter
func (r *GormProductRepository) Count(ctx context.Context, filter marketplace.ProductFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&marketplace.Product{}), filter).Count(&count).Error
	return count, err
}

// CountByPokemonCard counts listings referencing a card
func (r *GormProductRepository) CountByPokemonCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&marketplace.Product{}).
		Where("pokemon_card_id = ?", cardID).
		Count(&count).Error
	return count, err
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *marketplace.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// SaveWithLock writes the editable fields only if the stored version still
// matches, then bumps the version.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *marketplace.Product) error {
	result := r.db.WithContext(ctx).
		Model(&marketplace.Product{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]any{
			"pokemon_card_id": product.PokemonCardID,
			"title":           product.Title,
			"description":     product.Description,
			"price":           product.Price,
			"stock":           product.Stock,
			"condition":       product.Condition,
			"language":        product.Language,
			"status":          product.Status,
			"version":         product.Version + 1,
			"updated_at":      product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	product.IncrementVersion()
	return nil
}

// Delete deletes a product and its likes
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_likes WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &marketplace.Product{}, id)
	})
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter marketplace.ProductFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(likeClause("title")+" OR "+likeClause("description"), pattern, pattern)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.PokemonCardID != nil {
		query = query.Where("pokemon_card_id = ?", *filter.PokemonCardID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Condition != nil {
		query = query.Where("condition = ?", *filter.Condition)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	}
	return query
}

var _ marketplace.ProductRepository = (*GormProductRepository)(nil)
