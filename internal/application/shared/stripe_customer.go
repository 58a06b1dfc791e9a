package shared

import (
	"context"
	"fmt"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/payment"
	"github.com/google/uuid"
)

// EnsureStripeCustomer returns the Stripe customer of userID, creating and
// storing it on first use
func EnsureStripeCustomer(ctx context.Context, gateway payment.Gateway, users identity.UserRepository, userID uuid.UUID) (*identity.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID != "" {
		return user, nil
	}

	customerID, err := gateway.CreateCustomer(ctx, payment.CustomerRequest{
		Email:    user.Email,
		Name:     user.FullName(),
		Metadata: map[string]string{"user_id": user.ID.String()},
	})
	if err != nil {
		return nil, err
	}
	user.SetStripeCustomer(customerID)
	if err := users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save stripe customer: %w", err)
	}
	return user, nil
}
