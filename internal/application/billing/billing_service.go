// Package billing runs the Stripe side of Destocard: the webhook consumer and
// the seller Pro subscription.
package billing

import (
	"context"
	"errors"
	"time"

	appshared "github.com/destocard/backend/internal/application/shared"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/payment"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Billing errors
var (
	ErrAlreadySubscribed  = shared.NewDomainError(shared.ErrAlreadyExists.Code, "Vous êtes déjà abonné à l'offre Pro")
	ErrNoSubscription     = shared.NewDomainError(shared.ErrNotFound.Code, "Aucun abonnement en cours")
	ErrBillingUnavailable = shared.NewDomainError("PAYMENT_UNAVAILABLE", "L'abonnement est momentanément indisponible")
)

// BillingService manages the seller Pro subscription
type BillingService struct {
	userRepo   identity.UserRepository
	gateway    payment.Gateway
	proPriceID string
	logger     *zap.Logger
}

// NewBillingService creates a billing service
func NewBillingService(userRepo identity.UserRepository, gateway payment.Gateway, proPriceID string, logger *zap.Logger) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		userRepo:   userRepo,
		gateway:    gateway,
		proPriceID: proPriceID,
		logger:     logger,
	}
}

// Subscribe creates the Pro subscription of userID, creating their Stripe
// customer first when needed
func (s *BillingService) Subscribe(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	if s.proPriceID == "" {
		return nil, ErrBillingUnavailable
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsPro() {
		return nil, ErrAlreadySubscribed
	}

	user, err = appshared.EnsureStripeCustomer(ctx, s.gateway, s.userRepo, userID)
	if err != nil {
		s.logger.Error("Failed to create Stripe customer", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrBillingUnavailable
	}

	sub, err := s.gateway.CreateSubscription(ctx, user.StripeCustomerID, s.proPriceID)
	if err != nil {
		s.logger.Error("Failed to create subscription", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrBillingUnavailable
	}

	user.SetSubscription(sub.ID, identity.SubscriptionStatus(sub.Status))
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Subscription created",
		zap.String("user_id", userID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", sub.Status))

	resp := toSubscriptionResponse(user, sub.CurrentPeriodEnd)
	return &resp, nil
}

// CancelSubscription cancels the subscription of userID immediately
func (s *BillingService) CancelSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionID == "" || user.SubscriptionStatus == identity.SubscriptionCanceled {
		return nil, ErrNoSubscription
	}

	sub, err := s.gateway.CancelSubscription(ctx, user.SubscriptionID)
	if err != nil {
		s.logger.Error("Failed to cancel subscription", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrBillingUnavailable
	}

	user.SetSubscription(sub.ID, identity.SubscriptionStatus(sub.Status))
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Subscription canceled", zap.String("user_id", userID.String()))
	resp := toSubscriptionResponse(user, sub.CurrentPeriodEnd)
	return &resp, nil
}

// GetSubscription returns the subscription state of userID
func (s *BillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toSubscriptionResponse(user, time.Time{})
	return &resp, nil
}

// SyncSubscription mirrors a Stripe subscription change onto its user.
// Unknown customers are acknowledged so Stripe stops retrying.
func (s *BillingService) SyncSubscription(ctx context.Context, sub *payment.Subscription) error {
	if sub == nil || sub.CustomerID == "" {
		return nil
	}

	user, err := s.userRepo.FindByStripeCustomerID(ctx, sub.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Subscription event for unknown customer",
				zap.String("customer_id", sub.CustomerID),
				zap.String("subscription_id", sub.ID))
			return nil
		}
		return err
	}

	status := identity.SubscriptionStatus(sub.Status)
	if user.SubscriptionID == sub.ID && user.SubscriptionStatus == status {
		return nil
	}
	user.SetSubscription(sub.ID, status)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Subscription synchronized",
		zap.String("user_id", user.ID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", sub.Status))
	return nil
}
