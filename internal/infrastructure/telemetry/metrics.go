package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const metricsNamespace = "destocard"

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	ordersCreated  prometheus.Counter
	orderAmount    prometheus.Histogram
	ordersSettled  *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	mediaUploads   *prometheus.CounterVec
	cartOperations *prometheus.CounterVec

	// set by MirrorTo
	otel *otelCounters
}

// NewMetrics creates a registry with process and Go runtime collectors plus
// the HTTP and business metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders created at checkout.",
		}),
		orderAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "orders",
			Name:      "amount_euros",
			Help:      "Order totals in euros.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		ordersSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "orders",
			Name:      "settled_total",
			Help:      "Orders leaving the pending state, by final status.",
		}, []string{"status"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "stripe",
			Name:      "webhook_events_total",
			Help:      "Stripe webhook deliveries by event type and outcome.",
		}, []string{"type", "outcome"}),
		mediaUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Stored media by kind.",
		}, []string{"kind"}),
		cartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.ordersCreated,
		m.orderAmount,
		m.ordersSettled,
		m.webhookEvents,
		m.mediaUploads,
		m.cartOperations,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MirrorTo also records the business counters on meter, so they reach the
// OTLP collector. Call it before the metrics are shared.
func (m *Metrics) MirrorTo(meter metric.Meter) error {
	c, err := newOTelCounters(meter)
	if err != nil {
		return err
	}
	m.otel = c
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge and returns the function
// that records the finished request.
func (m *Metrics) RequestStarted() func(method, route string, status int, elapsed time.Duration) {
	m.httpInFlight.Inc()
	return func(method, route string, status int, elapsed time.Duration) {
		m.httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
}

// OrderCreated records a checkout.
func (m *Metrics) OrderCreated(totalEuros float64) {
	m.ordersCreated.Inc()
	m.orderAmount.Observe(totalEuros)
	if m.otel != nil {
		m.otel.ordersCreated.Add(context.Background(), 1)
		m.otel.orderAmount.Record(context.Background(), totalEuros)
	}
}

// OrderSettled records a pending order becoming completed or failed.
func (m *Metrics) OrderSettled(status string) {
	m.ordersSettled.WithLabelValues(status).Inc()
	if m.otel != nil {
		m.otel.ordersSettled.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("status", status)))
	}
}

// WebhookEvent records a Stripe delivery. outcome is processed, duplicate,
// ignored or error.
func (m *Metrics) WebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
	if m.otel != nil {
		m.otel.webhookEvents.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("type", eventType),
			attribute.String("outcome", outcome),
		))
	}
}

// MediaUploaded records a stored upload.
func (m *Metrics) MediaUploaded(kind string) {
	m.mediaUploads.WithLabelValues(kind).Inc()
	if m.otel != nil {
		m.otel.mediaUploads.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// CartOperation records add, update, remove and clear calls.
func (m *Metrics) CartOperation(operation string) {
	m.cartOperations.WithLabelValues(operation).Inc()
}
