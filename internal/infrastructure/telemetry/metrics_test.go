package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_RequestStarted(t *testing.T) {
	m := NewMetrics()

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))

	done(http.MethodGet, "/api/products/:id", http.StatusOK, 20*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/products/:id", "200")))

	m.RequestStarted()(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_BusinessCounters(t *testing.T) {
	m := NewMetrics()

	m.OrderCreated(45)
	m.OrderCreated(12.5)
	m.OrderSettled("completed")
	m.WebhookEvent("payment_intent.succeeded", "processed")
	m.WebhookEvent("payment_intent.succeeded", "duplicate")
	m.MediaUploaded("image")
	m.CartOperation("add")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersSettled.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("payment_intent.succeeded", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mediaUploads.WithLabelValues("image")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartOperations.WithLabelValues("add")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.OrderCreated(10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "destocard_orders_created_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetrics_MirrorTo(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := NewMetrics()
	require.NoError(t, m.MirrorTo(provider.Meter("test")))

	m.OrderCreated(20)
	m.OrderCreated(5)
	m.OrderSettled("failed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := map[string]int64{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[md.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), sums["destocard.orders.created"])
	assert.Equal(t, int64(1), sums["destocard.orders.settled"])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated), "Prometheus keeps counting")
}
