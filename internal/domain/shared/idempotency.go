package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which external deliveries (Stripe events,
// retried jobs) were already handled.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL. It returns true when the key was
	// newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsProcessed checks whether key was recorded
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release forgets key so that a failed delivery can be retried
	Release(ctx context.Context, key string) error
	// Close releases resources held by the store
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL after which the same key can be processed again. Default: 72h,
	// which covers Stripe's automatic retry window.
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     72 * time.Hour,
		Enabled: true,
	}
}
