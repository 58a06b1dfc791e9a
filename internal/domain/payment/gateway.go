// Package payment declares the payment provider port used by checkout,
// the webhook consumer and subscriptions.
package payment

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidSignature is returned when a webhook payload cannot be authenticated
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	// ErrGatewayUnavailable wraps provider failures
	ErrGatewayUnavailable = errors.New("payment: gateway request failed")
)

// EventType is a provider webhook event type
type EventType string

const (
	EventPaymentSucceeded    EventType = "payment_intent.succeeded"
	EventPaymentFailed       EventType = "payment_intent.payment_failed"
	EventPaymentCanceled     EventType = "payment_intent.canceled"
	EventSubscriptionCreated EventType = "customer.subscription.created"
	EventSubscriptionUpdated EventType = "customer.subscription.updated"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
)

// IntentRequest describes a PaymentIntent to create
type IntentRequest struct {
	// AmountCents is the amount in the currency's smallest unit
	AmountCents int64
	Currency    string
	CustomerID  string
	Description string
	Metadata    map[string]string
	// IdempotencyKey makes a retried creation return the first intent
	IdempotencyKey string
}

// Intent is a created PaymentIntent
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
}

// CustomerRequest describes a customer to create
type CustomerRequest struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// Subscription is the provider view of a subscription
type Subscription struct {
	ID               string
	CustomerID       string
	Status           string
	CurrentPeriodEnd time.Time
}

// IntentEvent carries the PaymentIntent of a payment webhook event
type IntentEvent struct {
	IntentID      string
	Metadata      map[string]string
	FailureReason string
}

// Event is an authenticated webhook event
type Event struct {
	ID           string
	Type         EventType
	Intent       *IntentEvent
	Subscription *Subscription
}

// Gateway is the payment provider
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	CancelPaymentIntent(ctx context.Context, intentID string) error
	CreateCustomer(ctx context.Context, req CustomerRequest) (string, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	// ConstructEvent authenticates and decodes a webhook delivery
	ConstructEvent(payload []byte, signature string) (*Event, error)
	PublishableKey() string
}
