package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/destocard/backend/internal/domain/payment"
	"github.com/destocard/backend/internal/domain/payment/paymentmock"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPaymentEventHandler is a mock implementation of PaymentEventHandler
type MockPaymentEventHandler struct {
	mock.Mock
}

func (m *MockPaymentEventHandler) HandlePaymentSucceeded(ctx context.Context, paymentIntentID string) error {
	args := m.Called(ctx, paymentIntentID)
	return args.Error(0)
}

func (m *MockPaymentEventHandler) HandlePaymentFailed(ctx context.Context, paymentIntentID, reason string) error {
	args := m.Called(ctx, paymentIntentID, reason)
	return args.Error(0)
}

// MockSubscriptionSyncer is a mock implementation of SubscriptionSyncer
type MockSubscriptionSyncer struct {
	mock.Mock
}

func (m *MockSubscriptionSyncer) SyncSubscription(ctx context.Context, sub *payment.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type outcomeRecorder struct {
	outcomes []string
}

func (r *outcomeRecorder) WebhookEvent(eventType, outcome string) {
	r.outcomes = append(r.outcomes, eventType+":"+outcome)
}

type webhookFixture struct {
	svc      *StripeWebhookService
	gateway  *paymentmock.Gateway
	payments *MockPaymentEventHandler
	subs     *MockSubscriptionSyncer
	store    *cache.InMemoryIdempotencyStore
	metrics  *outcomeRecorder
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	f := &webhookFixture{
		gateway:  &paymentmock.Gateway{},
		payments: &MockPaymentEventHandler{},
		subs:     &MockSubscriptionSyncer{},
		store:    cache.NewInMemoryIdempotencyStore(),
		metrics:  &outcomeRecorder{},
	}
	t.Cleanup(func() { _ = f.store.Close() })
	f.svc = NewStripeWebhookService(WebhookServiceConfig{
		Gateway:       f.gateway,
		Payments:      f.payments,
		Subscriptions: f.subs,
		Idempotency:   f.store,
		IdemConfig:    shared.DefaultIdempotencyConfig(),
		Metrics:       f.metrics,
	})
	return f
}

func (f *webhookFixture) expectEvent(payload string, event *payment.Event) {
	f.gateway.On("ConstructEvent", []byte(payload), "sig").Return(event, nil)
}

func TestStripeWebhookService_PaymentSucceeded(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	f.expectEvent("evt1", &payment.Event{
		ID:     "evt_1",
		Type:   payment.EventPaymentSucceeded,
		Intent: &payment.IntentEvent{IntentID: "pi_1"},
	})
	f.payments.On("HandlePaymentSucceeded", mock.Anything, "pi_1").Return(nil).Once()

	result, err := f.svc.HandleWebhook(ctx, []byte("evt1"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "evt_1", result.EventID)

	t.Run("redelivery is skipped", func(t *testing.T) {
		result, err := f.svc.HandleWebhook(ctx, []byte("evt1"), "sig")
		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "already processed", result.Message)
	})

	f.payments.AssertExpectations(t)
	assert.Equal(t, []string{
		"payment_intent.succeeded:processed",
		"payment_intent.succeeded:duplicate",
	}, f.metrics.outcomes)
}

func TestStripeWebhookService_PaymentFailed(t *testing.T) {
	tests := []struct {
		name       string
		eventType  payment.EventType
		reason     string
		wantReason string
	}{
		{"payment failed", payment.EventPaymentFailed, "card_declined", "card_declined"},
		{"canceled", payment.EventPaymentCanceled, "", "canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWebhookFixture(t)
			f.expectEvent("evt", &payment.Event{
				ID:     "evt_" + tt.name,
				Type:   tt.eventType,
				Intent: &payment.IntentEvent{IntentID: "pi_2", FailureReason: tt.reason},
			})
			f.payments.On("HandlePaymentFailed", mock.Anything, "pi_2", tt.wantReason).Return(nil).Once()

			result, err := f.svc.HandleWebhook(context.Background(), []byte("evt"), "sig")
			require.NoError(t, err)
			assert.True(t, result.Processed)
			f.payments.AssertExpectations(t)
		})
	}
}

func TestStripeWebhookService_HandlerErrorAllowsRetry(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	f.expectEvent("evt", &payment.Event{
		ID:     "evt_retry",
		Type:   payment.EventPaymentSucceeded,
		Intent: &payment.IntentEvent{IntentID: "pi_3"},
	})
	f.payments.On("HandlePaymentSucceeded", mock.Anything, "pi_3").Return(shared.ErrConcurrencyConflict).Once()
	f.payments.On("HandlePaymentSucceeded", mock.Anything, "pi_3").Return(nil).Once()

	_, err := f.svc.HandleWebhook(ctx, []byte("evt"), "sig")
	require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	processed, err := f.store.IsProcessed(ctx, "stripe:evt_retry")
	require.NoError(t, err)
	assert.False(t, processed, "failed deliveries release their key")

	result, err := f.svc.HandleWebhook(ctx, []byte("evt"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)
	f.payments.AssertExpectations(t)
}

func TestStripeWebhookService_Subscription(t *testing.T) {
	f := newWebhookFixture(t)
	f.expectEvent("evt", &payment.Event{
		ID:           "evt_sub",
		Type:         payment.EventSubscriptionDeleted,
		Subscription: &payment.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "active"},
	})
	f.subs.On("SyncSubscription", mock.Anything, mock.MatchedBy(func(s *payment.Subscription) bool {
		return s.ID == "sub_1" && s.Status == "canceled"
	})).Return(nil).Once()

	result, err := f.svc.HandleWebhook(context.Background(), []byte("evt"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)
	f.subs.AssertExpectations(t)
}

func TestStripeWebhookService_IgnoredAndRejected(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	t.Run("unknown type is acknowledged", func(t *testing.T) {
		f.expectEvent("other", &payment.Event{ID: "evt_x", Type: "charge.refunded"})
		result, err := f.svc.HandleWebhook(ctx, []byte("other"), "sig")
		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "event type not handled", result.Message)
	})

	t.Run("invalid signature", func(t *testing.T) {
		f.gateway.On("ConstructEvent", []byte("forged"), "bad").
			Return(nil, payment.ErrInvalidSignature)
		_, err := f.svc.HandleWebhook(ctx, []byte("forged"), "bad")
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("other construct errors", func(t *testing.T) {
		f.gateway.On("ConstructEvent", []byte("junk"), "sig").
			Return(nil, errors.New("unexpected end of JSON input"))
		_, err := f.svc.HandleWebhook(ctx, []byte("junk"), "sig")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidSignature)
	})

	f.payments.AssertNotCalled(t, "HandlePaymentSucceeded", mock.Anything, mock.Anything)
}
