package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/destocard/backend/internal/domain/payment"
	"github.com/destocard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrInvalidSignature is returned for webhook payloads that fail verification
var ErrInvalidSignature = shared.NewDomainError(shared.ErrInvalidInput.Code, "Signature du webhook invalide")

const idempotencyPrefix = "stripe:"

// PaymentEventHandler settles orders from PaymentIntent events
type PaymentEventHandler interface {
	HandlePaymentSucceeded(ctx context.Context, paymentIntentID string) error
	HandlePaymentFailed(ctx context.Context, paymentIntentID, reason string) error
}

// SubscriptionSyncer mirrors subscription events
type SubscriptionSyncer interface {
	SyncSubscription(ctx context.Context, sub *payment.Subscription) error
}

// WebhookMetrics counts webhook deliveries by outcome
type WebhookMetrics interface {
	WebhookEvent(eventType, outcome string)
}

type noopWebhookMetrics struct{}

func (noopWebhookMetrics) WebhookEvent(string, string) {}

// Webhook outcomes
const (
	OutcomeProcessed        = "processed"
	OutcomeDuplicate        = "duplicate"
	OutcomeIgnored          = "ignored"
	OutcomeFailed           = "failed"
	OutcomeInvalidSignature = "invalid_signature"
)

// StripeWebhookService verifies, de-duplicates and dispatches Stripe events
type StripeWebhookService struct {
	gateway       payment.Gateway
	payments      PaymentEventHandler
	subscriptions SubscriptionSyncer
	idempotency   shared.IdempotencyStore
	ttl           time.Duration
	metrics       WebhookMetrics
	logger        *zap.Logger
}

// WebhookServiceConfig lists the dependencies of StripeWebhookService
type WebhookServiceConfig struct {
	Gateway       payment.Gateway
	Payments      PaymentEventHandler
	Subscriptions SubscriptionSyncer
	Idempotency   shared.IdempotencyStore
	IdemConfig    shared.IdempotencyConfig
	Metrics       WebhookMetrics
	Logger        *zap.Logger
}

// NewStripeWebhookService creates the webhook service
func NewStripeWebhookService(cfg WebhookServiceConfig) *StripeWebhookService {
	s := &StripeWebhookService{
		gateway:       cfg.Gateway,
		payments:      cfg.Payments,
		subscriptions: cfg.Subscriptions,
		idempotency:   cfg.Idempotency,
		ttl:           cfg.IdemConfig.TTL,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}
	if !cfg.IdemConfig.Enabled {
		s.idempotency = nil
	}
	if s.ttl <= 0 {
		s.ttl = shared.DefaultIdempotencyConfig().TTL
	}
	if s.metrics == nil {
		s.metrics = noopWebhookMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// HandleWebhook processes one Stripe delivery. A returned error other than
// ErrInvalidSignature means Stripe should retry.
func (s *StripeWebhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent("unknown", OutcomeInvalidSignature)
		if errors.Is(err, payment.ErrInvalidSignature) {
			s.logger.Warn("Rejected Stripe webhook", zap.Error(err))
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("construct event: %w", err)
	}

	result := &WebhookResult{EventID: event.ID, EventType: string(event.Type)}
	log := s.logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	log.Info("Processing Stripe webhook event")

	key := idempotencyPrefix + event.ID
	if s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, key, s.ttl)
		switch {
		case err != nil:
			// Order status guards still make redelivery safe.
			log.Warn("Idempotency store unavailable", zap.Error(err))
		case !fresh:
			result.Message = "already processed"
			s.metrics.WebhookEvent(string(event.Type), OutcomeDuplicate)
			log.Debug("Duplicate Stripe event skipped")
			return result, nil
		}
	}

	handled, err := s.dispatch(ctx, event)
	if err != nil {
		if s.idempotency != nil {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				log.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		}
		s.metrics.WebhookEvent(string(event.Type), OutcomeFailed)
		log.Error("Stripe webhook processing failed", zap.Error(err))
		return nil, err
	}

	if !handled {
		result.Message = "event type not handled"
		s.metrics.WebhookEvent(string(event.Type), OutcomeIgnored)
		return result, nil
	}

	result.Processed = true
	s.metrics.WebhookEvent(string(event.Type), OutcomeProcessed)
	return result, nil
}

func (s *StripeWebhookService) dispatch(ctx context.Context, event *payment.Event) (bool, error) {
	switch event.Type {
	case payment.EventPaymentSucceeded:
		if event.Intent == nil {
			return false, nil
		}
		return true, s.payments.HandlePaymentSucceeded(ctx, event.Intent.IntentID)

	case payment.EventPaymentFailed, payment.EventPaymentCanceled:
		if event.Intent == nil {
			return false, nil
		}
		reason := event.Intent.FailureReason
		if reason == "" && event.Type == payment.EventPaymentCanceled {
			reason = "canceled"
		}
		return true, s.payments.HandlePaymentFailed(ctx, event.Intent.IntentID, reason)

	case payment.EventSubscriptionCreated, payment.EventSubscriptionUpdated, payment.EventSubscriptionDeleted:
		if event.Subscription == nil || s.subscriptions == nil {
			return false, nil
		}
		sub := *event.Subscription
		if event.Type == payment.EventSubscriptionDeleted {
			sub.Status = "canceled"
		}
		return true, s.subscriptions.SyncSubscription(ctx, &sub)

	default:
		return false, nil
	}
}
