package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/payment"
	"github.com/destocard/backend/internal/domain/payment/paymentmock"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBillingService_Subscribe(t *testing.T) {
	db := persistencetest.NewDB(t)
	users := persistence.NewGormUserRepository(db)
	gateway := &paymentmock.Gateway{}
	svc := NewBillingService(users, gateway, "price_pro", nil)
	ctx := context.Background()

	seller := persistencetest.CreateUser(t, db, "ondine@example.com", "ondine")
	periodEnd := time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC)

	gateway.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(r payment.CustomerRequest) bool {
		return r.Email == "ondine@example.com"
	})).Return("cus_ondine", nil).Once()
	gateway.On("CreateSubscription", mock.Anything, "cus_ondine", "price_pro").
		Return(&payment.Subscription{ID: "sub_1", CustomerID: "cus_ondine", Status: "active", CurrentPeriodEnd: periodEnd}, nil).Once()

	resp, err := svc.Subscribe(ctx, seller.ID)
	require.NoError(t, err)
	assert.True(t, resp.Pro)
	assert.Equal(t, "sub_1", resp.SubscriptionID)
	require.NotNil(t, resp.CurrentPeriodEnd)
	assert.True(t, periodEnd.Equal(*resp.CurrentPeriodEnd))

	stored, err := users.FindByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_ondine", stored.StripeCustomerID)
	assert.True(t, stored.IsPro())

	_, err = svc.Subscribe(ctx, seller.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	gateway.AssertExpectations(t)

	t.Run("cancel", func(t *testing.T) {
		gateway.On("CancelSubscription", mock.Anything, "sub_1").
			Return(&payment.Subscription{ID: "sub_1", CustomerID: "cus_ondine", Status: "canceled"}, nil).Once()

		resp, err := svc.CancelSubscription(ctx, seller.ID)
		require.NoError(t, err)
		assert.False(t, resp.Pro)
		assert.Equal(t, "canceled", resp.Status)

		_, err = svc.CancelSubscription(ctx, seller.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("gateway failure", func(t *testing.T) {
		other := persistencetest.CreateUser(t, db, "brock@example.com", "brock")
		gateway.On("CreateCustomer", mock.Anything, mock.Anything).Return("cus_brock", nil).Once()
		gateway.On("CreateSubscription", mock.Anything, "cus_brock", "price_pro").
			Return(nil, errors.New("stripe down")).Once()

		_, err := svc.Subscribe(ctx, other.ID)
		assert.ErrorIs(t, err, ErrBillingUnavailable)

		got, err := svc.GetSubscription(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "none", got.Status)
		assert.False(t, got.Pro)
	})
}

func TestBillingService_SubscribeWithoutPrice(t *testing.T) {
	svc := NewBillingService(nil, &paymentmock.Gateway{}, "", nil)
	_, err := svc.Subscribe(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBillingUnavailable)
}

func TestBillingService_SyncSubscription(t *testing.T) {
	db := persistencetest.NewDB(t)
	users := persistence.NewGormUserRepository(db)
	svc := NewBillingService(users, &paymentmock.Gateway{}, "price_pro", nil)
	ctx := context.Background()

	seller := persistencetest.CreateUser(t, db, "flora@example.com", "flora")
	seller.SetStripeCustomer("cus_flora")
	require.NoError(t, users.Save(ctx, seller))

	require.NoError(t, svc.SyncSubscription(ctx, &payment.Subscription{ID: "sub_9", CustomerID: "cus_flora", Status: "past_due"}))

	stored, err := users.FindByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.SubscriptionPastDue, stored.SubscriptionStatus)
	assert.False(t, stored.IsPro())

	assert.NoError(t, svc.SyncSubscription(ctx, &payment.Subscription{ID: "sub_x", CustomerID: "cus_unknown", Status: "active"}),
		"unknown customers are acknowledged")
	assert.NoError(t, svc.SyncSubscription(ctx, nil))
}
