// Package paymentmock provides a testify mock of payment.Gateway.
package paymentmock

import (
	"context"

	"github.com/destocard/backend/internal/domain/payment"
	"github.com/stretchr/testify/mock"
)

// Gateway is a mock payment.Gateway
type Gateway struct {
	mock.Mock
}

func (m *Gateway) CreatePaymentIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *Gateway) CancelPaymentIntent(ctx context.Context, intentID string) error {
	args := m.Called(ctx, intentID)
	return args.Error(0)
}

func (m *Gateway) CreateCustomer(ctx context.Context, req payment.CustomerRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *Gateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*payment.Subscription, error) {
	args := m.Called(ctx, customerID, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Subscription), args.Error(1)
}

func (m *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*payment.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Subscription), args.Error(1)
}

func (m *Gateway) ConstructEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

func (m *Gateway) PublishableKey() string {
	args := m.Called()
	return args.String(0)
}

var _ payment.Gateway = (*Gateway)(nil)
