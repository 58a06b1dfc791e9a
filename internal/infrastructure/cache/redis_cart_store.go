package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/destocard/backend/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "destocard:cart:"

// RedisCartStore keeps each cart in a Redis hash field=productID value=quantity.
// Every write refreshes the hash TTL.
type RedisCartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCartStore creates a cart store on an existing client
func NewRedisCartStore(client redis.UniversalClient, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func (s *RedisCartStore) redisKey(key cart.Key) string {
	return cartKeyPrefix + string(key)
}

// Get returns the cart. Unparseable fields are dropped.
func (s *RedisCartStore) Get(ctx context.Context, key cart.Key) (cart.Cart, error) {
	fields, err := s.client.HGetAll(ctx, s.redisKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	c := make(cart.Cart, len(fields))
	for field, value := range fields {
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		q, err := strconv.Atoi(value)
		if err != nil || q <= 0 {
			continue
		}
		c[id] = q
	}
	return c, nil
}

// Set stores quantity for productID. A non-positive quantity removes the line.
func (s *RedisCartStore) Set(ctx context.Context, key cart.Key, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, key, productID)
	}
	rk := s.redisKey(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rk, productID.String(), quantity)
		pipe.Expire(ctx, rk, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

// Remove drops productID from the cart
func (s *RedisCartStore) Remove(ctx context.Context, key cart.Key, productID uuid.UUID) error {
	if err := s.client.HDel(ctx, s.redisKey(key), productID.String()).Err(); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

// Clear deletes the cart
func (s *RedisCartStore) Clear(ctx context.Context, key cart.Key) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Replace overwrites the cart atomically
func (s *RedisCartStore) Replace(ctx context.Context, key cart.Key, lines []cart.Line) error {
	rk := s.redisKey(key)
	values := make([]any, 0, len(lines)*2)
	for _, l := range lines {
		if l.Quantity > 0 {
			values = append(values, l.ProductID.String(), l.Quantity)
		}
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, rk)
		if len(values) > 0 {
			pipe.HSet(ctx, rk, values...)
			pipe.Expire(ctx, rk, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

var _ cart.Store = (*RedisCartStore)(nil)
