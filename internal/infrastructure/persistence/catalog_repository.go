package persistence

import (
	"context"
	"errors"

	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// findFirst loads the first row matching query into dest
func findFirst(ctx context.Context, db *gorm.DB, dest any, query string, args ...any) error {
	if err := db.WithContext(ctx).Where(query, args...).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// existsByAPIID checks an api_id, optionally ignoring one row
func existsByAPIID(ctx context.Context, db *gorm.DB, model any, apiID string, excludeID *uuid.UUID) (bool, error) {
	query := db.WithContext(ctx).Model(model).Where("api_id = ?", apiID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// deleteByID deletes one row, ErrNotFound when absent
func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormSerieRepository implements SerieRepository using GORM
type GormSerieRepository struct {
	db *gorm.DB
}

// NewGormSerieRepository creates a new GormSerieRepository
func NewGormSerieRepository(db *gorm.DB) *GormSerieRepository {
	return &GormSerieRepository{db: db}
}

// FindByID finds a serie by ID
func (r *GormSerieRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Serie, error) {
	var s catalog.Serie
	if err := findFirst(ctx, r.db, &s, "id = ?", id); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByAPIID finds a serie by its card database id
func (r *GormSerieRepository) FindByAPIID(ctx context.Context, apiID string) (*catalog.Serie, error) {
	var s catalog.Serie
	if err := findFirst(ctx, r.db, &s, "api_id = ?", apiID); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindAll lists series, newest release first
func (r *GormSerieRepository) FindAll(ctx context.Context) ([]catalog.Serie, error) {
	var series []catalog.Serie
	err := r.db.WithContext(ctx).Order("release_date DESC, name ASC").Find(&series).Error
	return series, err
}

// ExistsByAPIID checks if a serie uses apiID
func (r *GormSerieRepository) ExistsByAPIID(ctx context.Context, apiID string, excludeID *uuid.UUID) (bool, error) {
	return existsByAPIID(ctx, r.db, &catalog.Serie{}, apiID, excludeID)
}

// Save creates or updates a serie
func (r *GormSerieRepository) Save(ctx context.Context, serie *catalog.Serie) error {
	return mapWriteError(r.db.WithContext(ctx).Save(serie).Error)
}

// Delete deletes a serie
func (r *GormSerieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &catalog.Serie{}, id)
}

// GormExtensionRepository implements ExtensionRepository using GORM
type GormExtensionRepository struct {
	db *gorm.DB
}

// NewGormExtensionRepository creates a new GormExtensionRepository
func NewGormExtensionRepository(db *gorm.DB) *GormExtensionRepository {
	return &GormExtensionRepository{db: db}
}

// FindByID finds an extension by ID
func (r *GormExtensionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Extension, error) {
	var e catalog.Extension
	if err := findFirst(ctx, r.db, &e, "id = ?", id); err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByAPIID finds an extension by its card database id
func (r *GormExtensionRepository) FindByAPIID(ctx context.Context, apiID string) (*catalog.Extension, error) {
	var e catalog.Extension
	if err := findFirst(ctx, r.db, &e, "api_id = ?", apiID); err != nil {
		return nil, err
	}
	return &e, nil
}

// FindBySerie lists the extensions of a serie
func (r *GormExtensionRepository) FindBySerie(ctx context.Context, serieID uuid.UUID) ([]catalog.Extension, error) {
	var exts []catalog.Extension
	err := r.db.WithContext(ctx).
		Where("serie_id = ?", serieID).
		Order("release_date DESC, name ASC").
		Find(&exts).Error
	return exts, err
}

// CountBySerie counts the extensions of a serie
func (r *GormExtensionRepository) CountBySerie(ctx context.Context, serieID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Extension{}).Where("serie_id = ?", serieID).Count(&count).Error
	return count, err
}

// ExistsByAPIID checks if an extension uses apiID
func (r *GormExtensionRepository) ExistsByAPIID(ctx context.Context, apiID string, excludeID *uuid.UUID) (bool, error) {
	return existsByAPIID(ctx, r.db, &catalog.Extension{}, apiID, excludeID)
}

// Save creates or updates an extension
func (r *GormExtensionRepository) Save(ctx context.Context, ext *catalog.Extension) error {
	return mapWriteError(r.db.WithContext(ctx).Save(ext).Error)
}

// Delete deletes an extension
func (r *GormExtensionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &catalog.Extension{}, id)
}

// GormPokemonCardRepository implements PokemonCardRepository using GORM
type GormPokemonCardRepository struct {
	db *gorm.DB
}

// NewGormPokemonCardRepository creates a new GormPokemonCardRepository
func NewGormPokemonCardRepository(db *gorm.DB) *GormPokemonCardRepository {
	return &GormPokemonCardRepository{db: db}
}

// FindByID finds a card by ID
func (r *GormPokemonCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PokemonCard, error) {
	var c catalog.PokemonCard
	if err := findFirst(ctx, r.db, &c, "id = ?", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByAPIID finds a card by its card database id
func (r *GormPokemonCardRepository) FindByAPIID(ctx context.Context, apiID string) (*catalog.PokemonCard, error) {
	var c catalog.PokemonCard
	if err := findFirst(ctx, r.db, &c, "api_id = ?", apiID); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByExtension lists the cards of an extension by number
func (r *GormPokemonCardRepository) FindByExtension(ctx context.Context, extensionID uuid.UUID) ([]catalog.PokemonCard, error) {
	var cards []catalog.PokemonCard
	err := r.db.WithContext(ctx).
		Where("extension_id = ?", extensionID).
		Order("number ASC").
		Find(&cards).Error
	return cards, err
}

// Search matches name or number, optionally within one extension
func (r *GormPokemonCardRepository) Search(ctx context.Context, filter catalog.CardFilter) ([]catalog.PokemonCard, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.PokemonCard{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(likeClause("name")+" OR "+likeClause("number"), pattern, pattern)
	}
	if filter.ExtensionID != nil {
		query = query.Where("extension_id = ?", *filter.ExtensionID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cards []catalog.PokemonCard
	if err := paginate(query, filter.Filter, CardSortFields, "name", "ASC").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// CountByExtension counts the cards of an extension
func (r *GormPokemonCardRepository) CountByExtension(ctx context.Context, extensionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.PokemonCard{}).Where("extension_id = ?", extensionID).Count(&count).Error
	return count, err
}

// ExistsByAPIID checks if a card uses apiID
func (r *GormPokemonCardRepository) ExistsByAPIID(ctx context.Context, apiID string, excludeID *uuid.UUID) (bool, error) {
	return existsByAPIID(ctx, r.db, &catalog.PokemonCard{}, apiID, excludeID)
}

// Save creates or updates a card
func (r *GormPokemonCardRepository) Save(ctx context.Context, card *catalog.PokemonCard) error {
	return mapWriteError(r.db.WithContext(ctx).Save(card).Error)
}

// Delete deletes a card
func (r *GormPokemonCardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &catalog.PokemonCard{}, id)
}

var (
	_ catalog.SerieRepository       = (*GormSerieRepository)(nil)
	_ catalog.ExtensionRepository   = (*GormExtensionRepository)(nil)
	_ catalog.PokemonCardRepository = (*GormPokemonCardRepository)(nil)
)
