package cache

import (
	"testing"
	"time"

	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// 127.0.0.1:1 refuses connections immediately
var unreachableRedis = config.RedisConfig{Enabled: true, Addr: "127.0.0.1:1"}

func TestStoreFactory_Create_RedisDisabled(t *testing.T) {
	stores, err := NewStoreFactory(config.RedisConfig{}, time.Hour).Create()
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &InMemoryCartStore{}, stores.Cart)
	assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
	assert.Nil(t, stores.Redis)
}

func TestStoreFactory_Create_FallsBackWhenRedisUnreachable(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	stores, err := NewStoreFactory(unreachableRedis, time.Hour, WithLogger(zap.New(core))).Create()
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &InMemoryCartStore{}, stores.Cart)
	assert.Equal(t, 1, logs.FilterMessageSnippet("falling back").Len())
}

func TestStoreFactory_Create_NoFallback(t *testing.T) {
	_, err := NewStoreFactory(unreachableRedis, time.Hour, WithInMemoryFallback(false)).Create()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis required")
}
