// Package marketplace manages the listings sellers put up for sale.
package marketplace

import (
	"context"
	"errors"

	appmedia "github.com/destocard/backend/internal/application/media"
	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product errors
var (
	ErrNotSeller    = shared.NewDomainError(shared.ErrForbidden.Code, "Vous n'êtes pas le vendeur de ce produit")
	ErrCardNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Carte introuvable")
)

// MediaCatalog lists and removes product files
type MediaCatalog interface {
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]appmedia.MediaResponse, error)
	DeleteForProduct(ctx context.Context, productID uuid.UUID) error
}

// ProductService handles listing CRUD and likes
type ProductService struct {
	productRepo marketplace.ProductRepository
	cardRepo    catalog.PokemonCardRepository
	userRepo    identity.UserRepository
	media       MediaCatalog
	logger      *zap.Logger
}

// NewProductService creates a product service
func NewProductService(
	productRepo marketplace.ProductRepository,
	cardRepo catalog.PokemonCardRepository,
	userRepo identity.UserRepository,
	media MediaCatalog,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		cardRepo:    cardRepo,
		userRepo:    userRepo,
		media:       media,
		logger:      logger,
	}
}

// Create puts a new listing up for sale
func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	if err := s.checkCard(ctx, req.PokemonCardID); err != nil {
		return nil, err
	}
	p, err := marketplace.NewProduct(sellerID, req.toInput())
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", p.ID.String()),
		zap.String("seller_id", sellerID.String()))
	resp := ToProductResponse(p)
	return &resp, nil
}

// Update edits a listing owned by userID
func (s *ProductService) Update(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	p, err := s.loadEditable(ctx, userID, isAdmin, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCard(ctx, req.PokemonCardID); err != nil {
		return nil, err
	}
	if err := p.Update(req.toInput()); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// Archive withdraws a listing from sale without deleting it. Archived
// listings stay visible to their seller and in past orders.
func (s *ProductService) Archive(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.loadEditable(ctx, userID, isAdmin, id)
	if err != nil {
		return nil, err
	}
	if err := p.Archive(); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Product archived",
		zap.String("product_id", p.ID.String()),
		zap.String("by", userID.String()))
	resp := ToProductResponse(p)
	return &resp, nil
}

// Delete removes a listing and its media
func (s *ProductService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	p, err := s.loadEditable(ctx, userID, isAdmin, id)
	if err != nil {
		return err
	}
	if s.media != nil {
		if err := s.media.DeleteForProduct(ctx, p.ID); err != nil {
			return err
		}
	}
	if err := s.productRepo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.logger.Info("Product deleted",
		zap.String("product_id", p.ID.String()),
		zap.String("by", userID.String()))
	return nil
}

// Get returns a listing with its media, card and like count. viewerID is nil
// for anonymous visitors.
func (s *ProductService) Get(ctx context.Context, viewerID *uuid.UUID, id uuid.UUID) (*ProductDetailResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &ProductDetailResponse{ProductResponse: ToProductResponse(p), Media: []appmedia.MediaResponse{}}

	if s.media != nil {
		list, err := s.media.ListForProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		resp.Media = list
	}

	if p.PokemonCardID != nil {
		card, err := s.cardRepo.FindByID(ctx, *p.PokemonCardID)
		switch {
		case err == nil:
			resp.Card = toCardSummary(card)
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}

	if resp.LikeCount, err = s.userRepo.CountLikes(ctx, p.ID); err != nil {
		return nil, err
	}
	if viewerID != nil {
		if resp.Liked, err = s.userRepo.IsLiked(ctx, *viewerID, p.ID); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// List pages through listings. Only listings for sale are shown unless a
// seller filter is given.
func (s *ProductService) List(ctx context.Context, query ListProductsQuery) (shared.Paginated[ProductResponse], error) {
	filter, err := query.toFilter()
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.Limit()), nil
}

// ToggleLike likes the product, or unlikes it when already liked
func (s *ProductService) ToggleLike(ctx context.Context, userID, id uuid.UUID) (*LikeResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	liked, err := s.userRepo.IsLiked(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if liked {
		err = s.userRepo.Unlike(ctx, userID, id)
	} else {
		err = s.userRepo.Like(ctx, userID, id)
	}
	if err != nil {
		return nil, err
	}

	count, err := s.userRepo.CountLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: !liked, LikeCount: count}, nil
}

// ListLiked returns the products userID likes
func (s *ProductService) ListLiked(ctx context.Context, userID uuid.UUID) ([]ProductResponse, error) {
	ids, err := s.userRepo.FindLikedProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []ProductResponse{}, nil
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

func (s *ProductService) loadEditable(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*marketplace.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !p.IsOwnedBy(userID) {
		return nil, ErrNotSeller
	}
	return p, nil
}

func (s *ProductService) checkCard(ctx context.Context, cardID *uuid.UUID) error {
	if cardID == nil {
		return nil
	}
	if _, err := s.cardRepo.FindByID(ctx, *cardID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrCardNotFound
		}
		return err
	}
	return nil
}

func (q ListProductsQuery) toFilter() (marketplace.ProductFilter, error) {
	filter := marketplace.ProductFilter{Filter: shared.DefaultFilter()}
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	filter.Search = q.Search
	filter.SellerID = q.SellerID
	filter.PokemonCardID = q.CardID

	if q.SellerID == nil {
		active := marketplace.ProductStatusActive
		filter.Status = &active
	}
	if q.Condition != "" {
		c := marketplace.Condition(q.Condition)
		filter.Condition = &c
	}
	for _, bound := range []struct {
		raw string
		dst **decimal.Decimal
	}{{q.MinPrice, &filter.MinPrice}, {q.MaxPrice, &filter.MaxPrice}} {
		if bound.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(bound.raw)
		if err != nil {
			return filter, shared.NewDomainError(shared.ErrInvalidInput.Code, "Prix invalide")
		}
		*bound.dst = &v
	}
	return filter, nil
}
