// Package address manages the shipping addresses of a user.
package address

import (
	"context"

	"github.com/destocard/backend/internal/application/shared"
	"github.com/destocard/backend/internal/domain/address"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressService manages shipping addresses
type AddressService struct {
	repo    address.AddressRepository
	txScope shared.TransactionScope
	logger  *zap.Logger
}

// NewAddressService creates an address service. txScope may be nil, in which
// case default switches run without a transaction.
func NewAddressService(repo address.AddressRepository, txScope shared.TransactionScope, logger *zap.Logger) *AddressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressService{repo: repo, txScope: txScope, logger: logger}
}

// Create adds an address. The user's first address becomes the default.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	a, err := address.NewAddress(userID, req.fields())
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		a.MarkDefault()
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// List returns the user's addresses, default first
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	list, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressResponse, len(list))
	for i := range list {
		out[i] = ToAddressResponse(&list[i])
	}
	return out, nil
}

// Get returns one of the user's addresses
func (s *AddressService) Get(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Update replaces the fields of one of the user's addresses
func (s *AddressService) Update(ctx context.Context, userID, id uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := a.Update(req.fields()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Delete removes one of the user's addresses. When the default goes, the
// oldest remaining address takes over.
func (s *AddressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	a, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context, repo address.AddressRepository) error {
		if err := repo.Delete(ctx, a.ID); err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}
		rest, err := repo.FindByUser(ctx, userID)
		if err != nil || len(rest) == 0 {
			return err
		}
		// FindByUser lists the oldest first once the default is gone
		rest[0].MarkDefault()
		return repo.Save(ctx, &rest[0])
	})
}

// SetDefault makes one of the user's addresses the default
func (s *AddressService) SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !a.IsDefault {
		err = s.inTx(ctx, func(ctx context.Context, repo address.AddressRepository) error {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
			a.MarkDefault()
			return repo.Save(ctx, a)
		})
		if err != nil {
			return nil, err
		}
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

func (s *AddressService) load(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsOwnedBy(userID) {
		s.logger.Warn("Address access denied",
			zap.String("address_id", id.String()),
			zap.String("user_id", userID.String()))
		return nil, address.ErrAccessDenied
	}
	return a, nil
}

func (s *AddressService) inTx(ctx context.Context, fn func(context.Context, address.AddressRepository) error) error {
	if s.txScope == nil {
		return fn(ctx, s.repo)
	}
	return s.txScope.Execute(ctx, func(repos shared.TransactionalRepositories) error {
		return fn(ctx, repos.AddressRepo())
	})
}
