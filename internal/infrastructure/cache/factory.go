package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/destocard/backend/internal/domain/cart"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores groups the session-scoped stores backed by Redis or memory
type Stores struct {
	Cart        cart.Store
	Idempotency shared.IdempotencyStore
	// Redis is nil when the in-memory stores are used
	Redis *redis.Client
}

// Close releases the stores and the Redis client
func (s *Stores) Close() error {
	var errs []error
	if s.Idempotency != nil {
		errs = append(errs, s.Idempotency.Close())
	}
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	return errors.Join(errs...)
}

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	cartTTL               time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to memory when Redis is
// unreachable. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(redisCfg config.RedisConfig, cartTTL time.Duration, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           redisCfg,
		cartTTL:               cartTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemory creates process-local stores.
// Carts and webhook de-duplication are not shared between instances.
func (f *StoreFactory) CreateInMemory() *Stores {
	return &Stores{
		Cart:        NewInMemoryCartStore(f.cartTTL),
		Idempotency: NewInMemoryIdempotencyStore(),
	}
}

// Create returns Redis stores when Redis is enabled and reachable, and
// in-memory stores otherwise
func (f *StoreFactory) Create() (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory cart and idempotency stores")
		return f.CreateInMemory(), nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis cart and idempotency stores", zap.String("addr", f.redisConfig.Addr))
		return &Stores{
			Cart:        NewRedisCartStore(client, f.cartTTL),
			Idempotency: NewRedisIdempotencyStore(client, ""),
			Redis:       client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory stores",
		zap.Error(err),
	)
	return f.CreateInMemory(), nil
}
