package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/destocard/backend/internal/domain/payment"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeAdapter implements payment.Gateway with stripe-go
type StripeAdapter struct {
	config *StripeConfig
	api    *client.API
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter. backends may be nil to use
// the default HTTP backends.
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger, backends *stripe.Backends) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &StripeAdapter{
		config: config,
		api:    client.New(config.SecretKey, backends),
		logger: logger,
	}, nil
}

// PublishableKey returns the key the frontend uses with Stripe.js
func (a *StripeAdapter) PublishableKey() string {
	return a.config.PublishableKey
}

// CreatePaymentIntent creates a PaymentIntent with automatic payment methods
func (a *StripeAdapter) CreatePaymentIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("stripe: amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = a.config.Currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := a.api.PaymentIntents.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe payment intent",
			zap.Int64("amount", req.AmountCents),
			zap.Error(err))
		return nil, fmt.Errorf("%w: create payment intent: %w", payment.ErrGatewayUnavailable, err)
	}

	a.logger.Info("Created Stripe payment intent",
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", pi.Amount))

	return &payment.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// CancelPaymentIntent cancels an unpaid PaymentIntent
func (a *StripeAdapter) CancelPaymentIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := a.api.PaymentIntents.Cancel(intentID, params); err != nil {
		a.logger.Error("Failed to cancel Stripe payment intent",
			zap.String("payment_intent_id", intentID),
			zap.Error(err))
		return fmt.Errorf("%w: cancel payment intent: %w", payment.ErrGatewayUnavailable, err)
	}
	return nil
}

// CreateCustomer creates a customer and returns its id
func (a *StripeAdapter) CreateCustomer(ctx context.Context, req payment.CustomerRequest) (string, error) {
	params := &stripe.CustomerParams{
		Email:            stripe.String(req.Email),
		PreferredLocales: stripe.StringSlice([]string{"fr"}),
	}
	params.Context = ctx
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	params.Metadata = map[string]string{}
	maps.Copy(params.Metadata, req.Metadata)

	cust, err := a.api.Customers.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe customer",
			zap.String("email", req.Email),
			zap.Error(err))
		return "", fmt.Errorf("%w: create customer: %w", payment.ErrGatewayUnavailable, err)
	}

	a.logger.Info("Created Stripe customer", zap.String("customer_id", cust.ID))
	return cust.ID, nil
}

// CreateSubscription subscribes customerID to priceID
func (a *StripeAdapter) CreateSubscription(ctx context.Context, customerID, priceID string) (*payment.Subscription, error) {
	if priceID == "" {
		priceID = a.config.ProPriceID
	}
	if priceID == "" {
		return nil, fmt.Errorf("stripe: no subscription price configured")
	}
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.Context = ctx

	sub, err := a.api.Subscriptions.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe subscription",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: create subscription: %w", payment.ErrGatewayUnavailable, err)
	}
	return toSubscription(sub), nil
}

// CancelSubscription cancels a subscription immediately
func (a *StripeAdapter) CancelSubscription(ctx context.Context, subscriptionID string) (*payment.Subscription, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	sub, err := a.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		a.logger.Error("Failed to cancel Stripe subscription",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: cancel subscription: %w", payment.ErrGatewayUnavailable, err)
	}
	return toSubscription(sub), nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
// Events sent with a different API version are accepted: only the fields
// read below are used.
func (a *StripeAdapter) ConstructEvent(payload []byte, signature string) (*payment.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, a.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrInvalidSignature, err)
	}

	out := &payment.Event{ID: event.ID, Type: payment.EventType(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case payment.EventPaymentSucceeded, payment.EventPaymentFailed, payment.EventPaymentCanceled:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
		}
		out.Intent = &payment.IntentEvent{
			IntentID:      pi.ID,
			Metadata:      pi.Metadata,
			FailureReason: failureReason(&pi),
		}
	case payment.EventSubscriptionCreated, payment.EventSubscriptionUpdated, payment.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
		}
		out.Subscription = toSubscription(&sub)
	}
	return out, nil
}

func failureReason(pi *stripe.PaymentIntent) string {
	if pi.LastPaymentError != nil {
		if pi.LastPaymentError.Msg != "" {
			return pi.LastPaymentError.Msg
		}
		if pi.LastPaymentError.Code != "" {
			return string(pi.LastPaymentError.Code)
		}
	}
	if pi.Status == stripe.PaymentIntentStatusCanceled {
		if pi.CancellationReason != "" {
			return "canceled: " + string(pi.CancellationReason)
		}
		return "canceled"
	}
	return ""
}

func toSubscription(sub *stripe.Subscription) *payment.Subscription {
	out := &payment.Subscription{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0)
	}
	return out
}

// IsCardError reports whether err is a declined-card error from Stripe
func IsCardError(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard
}

var _ payment.Gateway = (*StripeAdapter)(nil)
