// Package catalog manages the reference card database: series, extensions
// and cards, edited by admins or imported from TCGdex.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/tcgdex"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog errors
var (
	ErrAPIIDTaken        = shared.NewDomainError(shared.ErrAlreadyExists.Code, "Cet identifiant API est déjà utilisé")
	ErrSerieInUse        = shared.NewDomainError(shared.ErrInUse.Code, "Cette série contient encore des extensions")
	ErrExtensionInUse    = shared.NewDomainError(shared.ErrInUse.Code, "Cette extension contient encore des cartes")
	ErrCardInUse         = shared.NewDomainError(shared.ErrInUse.Code, "Cette carte est utilisée par des annonces")
	ErrCardNotFound      = shared.NewDomainError(shared.ErrNotFound.Code, "Carte introuvable")
	ErrCardQueryRequired = shared.NewDomainError(shared.ErrInvalidInput.Code, "Identifiant de carte manquant")
	ErrImportUnavailable = shared.NewDomainError("IMPORT_UNAVAILABLE", "L'import TCGdex est momentanément indisponible")
)

// CardSource fetches cards from an external catalog
type CardSource interface {
	FetchCard(ctx context.Context, id string) (*tcgdex.Card, error)
	FetchSet(ctx context.Context, id string) (*tcgdex.Set, error)
}

// CatalogService serves the card catalog
type CatalogService struct {
	serieRepo     catalog.SerieRepository
	extensionRepo catalog.ExtensionRepository
	cardRepo      catalog.PokemonCardRepository
	productRepo   marketplace.ProductRepository
	source        CardSource
	logger        *zap.Logger
}

// CatalogServiceConfig lists the dependencies of CatalogService
type CatalogServiceConfig struct {
	SerieRepo     catalog.SerieRepository
	ExtensionRepo catalog.ExtensionRepository
	CardRepo      catalog.PokemonCardRepository
	ProductRepo   marketplace.ProductRepository
	Source        CardSource
	Logger        *zap.Logger
}

// NewCatalogService creates a catalog service
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		serieRepo:     cfg.SerieRepo,
		extensionRepo: cfg.ExtensionRepo,
		cardRepo:      cfg.CardRepo,
		productRepo:   cfg.ProductRepo,
		source:        cfg.Source,
		logger:        logger,
	}
}

// ListSeries returns every serie
func (s *CatalogService) ListSeries(ctx context.Context) ([]SerieResponse, error) {
	series, err := s.serieRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SerieResponse, len(series))
	for i := range series {
		out[i] = toSerieResponse(&series[i])
	}
	return out, nil
}

// ListExtensions returns the extensions of a serie
func (s *CatalogService) ListExtensions(ctx context.Context, serieID uuid.UUID) ([]ExtensionResponse, error) {
	if _, err := s.serieRepo.FindByID(ctx, serieID); err != nil {
		return nil, err
	}
	exts, err := s.extensionRepo.FindBySerie(ctx, serieID)
	if err != nil {
		return nil, err
	}
	out := make([]ExtensionResponse, len(exts))
	for i := range exts {
		out[i] = toExtensionResponse(&exts[i])
	}
	return out, nil
}

// ListCards returns the cards of an extension
func (s *CatalogService) ListCards(ctx context.Context, extensionID uuid.UUID) ([]CardResponse, error) {
	if _, err := s.extensionRepo.FindByID(ctx, extensionID); err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.FindByExtension(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	return toCardResponses(cards), nil
}

// SearchCards searches cards by name, optionally inside one extension
func (s *CatalogService) SearchCards(ctx context.Context, q SearchCardsQuery) (shared.Paginated[CardResponse], error) {
	filter := catalog.CardFilter{Filter: shared.DefaultFilter(), ExtensionID: q.ExtensionID}
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = strings.TrimSpace(q.Q)
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}

	cards, total, err := s.cardRepo.Search(ctx, filter)
	if err != nil {
		return shared.Paginated[CardResponse]{}, err
	}
	return shared.NewPaginated(toCardResponses(cards), total, filter.Page, filter.Limit()), nil
}

// GetCard returns a card by id or TCGdex id, with its extension
func (s *CatalogService) GetCard(ctx context.Context, q GetCardQuery) (*CardDetailResponse, error) {
	var (
		card *catalog.PokemonCard
		err  error
	)
	switch {
	case q.ID != nil:
		card, err = s.cardRepo.FindByID(ctx, *q.ID)
	case strings.TrimSpace(q.APIID) != "":
		card, err = s.cardRepo.FindByAPIID(ctx, strings.TrimSpace(q.APIID))
	default:
		return nil, ErrCardQueryRequired
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	resp := &CardDetailResponse{CardResponse: toCardResponse(card)}
	ext, err := s.extensionRepo.FindByID(ctx, card.ExtensionID)
	switch {
	case err == nil:
		e := toExtensionResponse(ext)
		resp.Extension = &e
		resp.DisplayName = card.DisplayName(ext)
	case errors.Is(err, shared.ErrNotFound):
		resp.DisplayName = card.DisplayName(nil)
	default:
		return nil, err
	}

	if resp.ListingCount, err = s.productRepo.CountByPokemonCard(ctx, card.ID); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateSerie adds a serie
func (s *CatalogService) CreateSerie(ctx context.Context, req SerieRequest) (*SerieResponse, error) {
	if err := s.checkSerieAPIID(ctx, req.APIID, nil); err != nil {
		return nil, err
	}
	serie, err := catalog.NewSerie(req.APIID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := serie.Update(req.APIID, req.Name, req.LogoURL); err != nil {
		return nil, err
	}
	serie.SetReleaseDate(req.ReleaseDate)
	if err := s.serieRepo.Save(ctx, serie); err != nil {
		return nil, err
	}
	resp := toSerieResponse(serie)
	return &resp, nil
}

// UpdateSerie edits a serie
func (s *CatalogService) UpdateSerie(ctx context.Context, id uuid.UUID, req SerieRequest) (*SerieResponse, error) {
	serie, err := s.serieRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSerieAPIID(ctx, req.APIID, &id); err != nil {
		return nil, err
	}
	if err := serie.Update(req.APIID, req.Name, req.LogoURL); err != nil {
		return nil, err
	}
	serie.SetReleaseDate(req.ReleaseDate)
	if err := s.serieRepo.Save(ctx, serie); err != nil {
		return nil, err
	}
	resp := toSerieResponse(serie)
	return &resp, nil
}

// DeleteSerie removes an empty serie
func (s *CatalogService) DeleteSerie(ctx context.Context, id uuid.UUID) error {
	if _, err := s.serieRepo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.extensionRepo.CountBySerie(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSerieInUse
	}
	return s.serieRepo.Delete(ctx, id)
}

// CreateExtension adds an extension to a serie
func (s *CatalogService) CreateExtension(ctx context.Context, req ExtensionRequest) (*ExtensionResponse, error) {
	if _, err := s.serieRepo.FindByID(ctx, req.SerieID); err != nil {
		return nil, err
	}
	if err := s.checkExtensionAPIID(ctx, req.APIID, nil); err != nil {
		return nil, err
	}
	ext, err := catalog.NewExtension(req.SerieID, req.APIID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.applyExtension(ext, req); err != nil {
		return nil, err
	}
	if err := s.extensionRepo.Save(ctx, ext); err != nil {
		return nil, err
	}
	resp := toExtensionResponse(ext)
	return &resp, nil
}

// UpdateExtension edits an extension, possibly moving it to another serie
func (s *CatalogService) UpdateExtension(ctx context.Context, id uuid.UUID, req ExtensionRequest) (*ExtensionResponse, error) {
	ext, err := s.extensionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SerieID != ext.SerieID {
		if _, err := s.serieRepo.FindByID(ctx, req.SerieID); err != nil {
			return nil, err
		}
	}
	if err := s.checkExtensionAPIID(ctx, req.APIID, &id); err != nil {
		return nil, err
	}
	if err := s.applyExtension(ext, req); err != nil {
		return nil, err
	}
	if err := s.extensionRepo.Save(ctx, ext); err != nil {
		return nil, err
	}
	resp := toExtensionResponse(ext)
	return &resp, nil
}

func (s *CatalogService) applyExtension(ext *catalog.Extension, req ExtensionRequest) error {
	if err := ext.Update(req.APIID, req.Name, req.LogoURL, req.SymbolURL, req.CardCount); err != nil {
		return err
	}
	if err := ext.MoveToSerie(req.SerieID); err != nil {
		return err
	}
	ext.SetReleaseDate(req.ReleaseDate)
	return nil
}

// DeleteExtension removes an empty extension
func (s *CatalogService) DeleteExtension(ctx context.Context, id uuid.UUID) error {
	if _, err := s.extensionRepo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.cardRepo.CountByExtension(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrExtensionInUse
	}
	return s.extensionRepo.Delete(ctx, id)
}

// CreateCard adds a card to an extension
func (s *CatalogService) CreateCard(ctx context.Context, req CardRequest) (*CardResponse, error) {
	if _, err := s.extensionRepo.FindByID(ctx, req.ExtensionID); err != nil {
		return nil, err
	}
	if err := s.checkCardAPIID(ctx, req.APIID, nil); err != nil {
		return nil, err
	}
	card, err := catalog.NewPokemonCard(req.ExtensionID, req.APIID, req.Name, req.Number)
	if err != nil {
		return nil, err
	}
	if err := card.Update(req.APIID, req.Name, req.Number, req.details()); err != nil {
		return nil, err
	}
	if err := s.cardRepo.Save(ctx, card); err != nil {
		return nil, err
	}
	resp := toCardResponse(card)
	return &resp, nil
}

// UpdateCard edits a card
func (s *CatalogService) UpdateCard(ctx context.Context, id uuid.UUID, req CardRequest) (*CardResponse, error) {
	card, err := s.cardRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ExtensionID != card.ExtensionID {
		if _, err := s.extensionRepo.FindByID(ctx, req.ExtensionID); err != nil {
			return nil, err
		}
		if err := card.MoveToExtension(req.ExtensionID); err != nil {
			return nil, err
		}
	}
	if err := s.checkCardAPIID(ctx, req.APIID, &id); err != nil {
		return nil, err
	}
	if err := card.Update(req.APIID, req.Name, req.Number, req.details()); err != nil {
		return nil, err
	}
	if err := s.cardRepo.Save(ctx, card); err != nil {
		return nil, err
	}
	resp := toCardResponse(card)
	return &resp, nil
}

// DeleteCard removes a card no listing refers to
func (s *CatalogService) DeleteCard(ctx context.Context, id uuid.UUID) error {
	if _, err := s.cardRepo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.productRepo.CountByPokemonCard(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCardInUse
	}
	return s.cardRepo.Delete(ctx, id)
}

func (s *CatalogService) checkSerieAPIID(ctx context.Context, apiID string, exclude *uuid.UUID) error {
	return apiIDFree(s.serieRepo.ExistsByAPIID(ctx, strings.TrimSpace(apiID), exclude))
}

func (s *CatalogService) checkExtensionAPIID(ctx context.Context, apiID string, exclude *uuid.UUID) error {
	return apiIDFree(s.extensionRepo.ExistsByAPIID(ctx, strings.TrimSpace(apiID), exclude))
}

func (s *CatalogService) checkCardAPIID(ctx context.Context, apiID string, exclude *uuid.UUID) error {
	return apiIDFree(s.cardRepo.ExistsByAPIID(ctx, strings.TrimSpace(apiID), exclude))
}

func apiIDFree(exists bool, err error) error {
	if err != nil {
		return err
	}
	if exists {
		return ErrAPIIDTaken
	}
	return nil
}
