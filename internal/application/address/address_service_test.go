package address

import (
	"context"
	"testing"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddressService(t *testing.T) *AddressService {
	t.Helper()
	db := persistencetest.NewDB(t)
	return NewAddressService(persistence.NewGormAddressRepository(db), persistence.NewGormTransactionScope(db), nil)
}

func homeRequest(label string) AddressRequest {
	return AddressRequest{
		Label:      label,
		FullName:   "Sacha Ketchum",
		Street:     "1 rue du Bourg",
		PostalCode: "75001",
		City:       "Paris",
	}
}

func TestAddressService_DefaultHandling(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()
	user := uuid.New()

	first, err := svc.Create(ctx, user, homeRequest("Maison"))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "FR", first.Country)

	second, err := svc.Create(ctx, user, homeRequest("Bureau"))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	switched, err := svc.SetDefault(ctx, user, second.ID)
	require.NoError(t, err)
	assert.True(t, switched.IsDefault)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.False(t, list[1].IsDefault)

	t.Run("deleting the default promotes the next one", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, user, second.ID))
		got, err := svc.Get(ctx, user, first.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDefault)
	})
}

func TestAddressService_Ownership(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	a, err := svc.Create(ctx, owner, homeRequest("Maison"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, a.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, "Vous n'avez pas accès à cette adresse", err.Error())

	_, err = svc.Update(ctx, stranger, a.ID, homeRequest("Volée"))
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, stranger, a.ID), shared.ErrForbidden)
	_, err = svc.SetDefault(ctx, stranger, a.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Get(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddressService_Update(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()
	user := uuid.New()

	a, err := svc.Create(ctx, user, homeRequest("Maison"))
	require.NoError(t, err)

	req := homeRequest("Maison")
	req.PostalCode = "7500"
	_, err = svc.Update(ctx, user, a.ID, req)
	require.Error(t, err)
	assert.Equal(t, "Le code postal doit contenir 5 chiffres", err.Error())

	req.PostalCode = "13001"
	req.City = "Marseille"
	updated, err := svc.Update(ctx, user, a.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "1 rue du Bourg, 13001 Marseille, FR", updated.OneLine)
	assert.True(t, updated.IsDefault)
}
