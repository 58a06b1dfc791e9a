package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	completed := newTestHandler("OrderCompleted")
	failed := newTestHandler("OrderFailed")
	all := newTestHandler()
	bus.Subscribe(completed)
	bus.Subscribe(failed)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("OrderCompleted"),
		newTestEvent("OrderCompleted"),
		newTestEvent("OrderFailed"),
	))

	assert.Equal(t, 2, completed.count())
	assert.Equal(t, 1, failed.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_Publish_IsolatesFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	broken := newTestHandler("OrderCompleted")
	broken.err = errors.New("smtp down")
	panicking := newTestHandler("OrderCompleted")
	panicking.panicWith = "nil map"
	healthy := newTestHandler("OrderCompleted")

	bus.Subscribe(broken)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCompleted")))
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("OrderCompleted")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCompleted")))
	assert.Zero(t, h.count())
	assert.Empty(t, bus.registry.GetHandlers("OrderCompleted"))
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	inner := newTestHandler("OrderCompleted")
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())

	event := newTestEvent("OrderCompleted")
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, 1, inner.count())
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 1}, h.Stats())
	assert.Equal(t, []string{"OrderCompleted"}, h.EventTypes())
}

func TestIdempotentHandler_ReleasesOnFailure(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	inner := newTestHandler("OrderCompleted")
	inner.err = errors.New("temporary")
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())

	event := newTestEvent("OrderCompleted")
	require.Error(t, h.Handle(context.Background(), event))

	inner.err = nil
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, int64(1), h.Stats().EventsFailed)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	inner := newTestHandler("OrderCompleted")
	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{Enabled: false}, zap.NewNop())

	event := newTestEvent("OrderCompleted")
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 2, inner.count())
}
