package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/tcgdex"
	"go.uber.org/zap"
)

// ErrUnknownRemoteCard is returned when TCGdex has no card with the API id
var ErrUnknownRemoteCard = shared.NewDomainError(shared.ErrNotFound.Code, "Carte introuvable sur TCGdex")

// ImportCard fetches a card, its set and its serie from TCGdex and upserts
// them by API id
func (s *CatalogService) ImportCard(ctx context.Context, apiID string) (*ImportResponse, error) {
	if s.source == nil {
		return nil, ErrImportUnavailable
	}
	apiID = strings.TrimSpace(apiID)

	remote, err := s.source.FetchCard(ctx, apiID)
	if err != nil {
		return nil, s.remoteError(apiID, err)
	}
	set, err := s.source.FetchSet(ctx, remote.SetID)
	if err != nil {
		return nil, s.remoteError(remote.SetID, err)
	}

	serie, err := s.upsertSerie(ctx, set)
	if err != nil {
		return nil, err
	}
	ext, err := s.upsertExtension(ctx, serie, set)
	if err != nil {
		return nil, err
	}
	card, created, err := s.upsertCard(ctx, ext, remote)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Card imported",
		zap.String("api_id", card.APIID),
		zap.String("extension", ext.APIID),
		zap.Bool("created", created))

	return &ImportResponse{
		Serie:     toSerieResponse(serie),
		Extension: toExtensionResponse(ext),
		Card:      toCardResponse(card),
		Created:   created,
	}, nil
}

func (s *CatalogService) remoteError(id string, err error) error {
	switch {
	case errors.Is(err, tcgdex.ErrNotFound), errors.Is(err, tcgdex.ErrInvalidID):
		return ErrUnknownRemoteCard
	default:
		s.logger.Warn("TCGdex request failed", zap.String("id", id), zap.Error(err))
		return ErrImportUnavailable
	}
}

func (s *CatalogService) upsertSerie(ctx context.Context, set *tcgdex.Set) (*catalog.Serie, error) {
	serieID := set.SerieID
	if serieID == "" {
		serieID = set.ID
	}
	name := set.SerieName
	if name == "" {
		name = serieID
	}

	serie, err := s.serieRepo.FindByAPIID(ctx, serieID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if serie, err = catalog.NewSerie(serieID, name); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := serie.Update(serieID, name, serie.LogoURL); err != nil {
			return nil, err
		}
	}
	if serie.ReleaseDate == nil && set.ReleaseDate != nil {
		serie.SetReleaseDate(set.ReleaseDate)
	}
	if err := s.serieRepo.Save(ctx, serie); err != nil {
		return nil, err
	}
	return serie, nil
}

func (s *CatalogService) upsertExtension(ctx context.Context, serie *catalog.Serie, set *tcgdex.Set) (*catalog.Extension, error) {
	ext, err := s.extensionRepo.FindByAPIID(ctx, set.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if ext, err = catalog.NewExtension(serie.ID, set.ID, set.Name); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	if err := ext.Update(set.ID, set.Name, set.LogoURL, set.SymbolURL, set.CardCount); err != nil {
		return nil, err
	}
	if err := ext.MoveToSerie(serie.ID); err != nil {
		return nil, err
	}
	if set.ReleaseDate != nil {
		ext.SetReleaseDate(set.ReleaseDate)
	}
	if err := s.extensionRepo.Save(ctx, ext); err != nil {
		return nil, err
	}
	return ext, nil
}

func (s *CatalogService) upsertCard(ctx context.Context, ext *catalog.Extension, remote *tcgdex.Card) (*catalog.PokemonCard, bool, error) {
	created := false
	card, err := s.cardRepo.FindByAPIID(ctx, remote.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if card, err = catalog.NewPokemonCard(ext.ID, remote.ID, remote.Name, remote.LocalID); err != nil {
			return nil, false, err
		}
		created = true
	case err != nil:
		return nil, false, err
	default:
		if err := card.MoveToExtension(ext.ID); err != nil {
			return nil, false, err
		}
	}

	details := catalog.CardDetails{
		Rarity:      remote.Rarity,
		Category:    remote.Category,
		Illustrator: remote.Illustrator,
		ImageURL:    remote.ImageURL,
		HP:          remote.HP,
	}
	if err := card.Update(remote.ID, remote.Name, remote.LocalID, details); err != nil {
		return nil, false, err
	}
	if err := s.cardRepo.Save(ctx, card); err != nil {
		return nil, false, err
	}
	return card, created, nil
}
