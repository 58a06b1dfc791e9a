package billing

import (
	"fmt"
	"strings"

	"github.com/destocard/backend/internal/infrastructure/config"
)

// StripeConfig holds configuration for the Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string
	// PublishableKey is handed to the frontend to confirm payments
	PublishableKey string
	// WebhookSecret verifies webhook signatures (whsec_xxx)
	WebhookSecret string
	Currency      string
	// ProPriceID is the recurring price of the Pro subscription
	ProPriceID string
}

// NewStripeConfig maps the application configuration
func NewStripeConfig(cfg config.StripeConfig) *StripeConfig {
	return &StripeConfig{
		SecretKey:      cfg.SecretKey,
		PublishableKey: cfg.PublishableKey,
		WebhookSecret:  cfg.WebhookSecret,
		Currency:       strings.ToLower(cfg.Currency),
		ProPriceID:     cfg.ProPriceID,
	}
}

// IsTestMode reports whether the secret key is a test key
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.SecretKey, "sk_test_")
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_test_") && !strings.HasPrefix(c.SecretKey, "sk_live_") &&
		!strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key has an unknown format")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("stripe: currency must be an ISO 4217 code")
	}
	return nil
}
