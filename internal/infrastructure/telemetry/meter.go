package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/destocard/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterProvider pushes business counters to the OTLP collector alongside
// the Prometheus /metrics endpoint.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates the OTLP gRPC metric exporter and registers the
// global provider. It is a no-op unless both telemetry and metric push are
// enabled.
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}

	if !cfg.Enabled || !cfg.MetricsEnabled {
		logger.Info("OTLP metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = time.Minute
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter, falling back to the global provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are pushed.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.provider != nil
}

// Shutdown flushes pending data points.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("OpenTelemetry MeterProvider shutdown complete")
	return nil
}

// otelCounters mirrors the business counters as OTLP instruments.
type otelCounters struct {
	ordersCreated metric.Int64Counter
	orderAmount   metric.Float64Histogram
	ordersSettled metric.Int64Counter
	webhookEvents metric.Int64Counter
	mediaUploads  metric.Int64Counter
}

func newOTelCounters(meter metric.Meter) (*otelCounters, error) {
	var (
		c   otelCounters
		err error
	)
	if c.ordersCreated, err = meter.Int64Counter("destocard.orders.created",
		metric.WithDescription("Orders created at checkout."),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("failed to create counter destocard.orders.created: %w", err)
	}
	if c.orderAmount, err = meter.Float64Histogram("destocard.orders.amount",
		metric.WithDescription("Order totals."),
		metric.WithUnit("EUR"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000)); err != nil {
		return nil, fmt.Errorf("failed to create histogram destocard.orders.amount: %w", err)
	}
	if c.ordersSettled, err = meter.Int64Counter("destocard.orders.settled",
		metric.WithDescription("Orders leaving the pending state."),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("failed to create counter destocard.orders.settled: %w", err)
	}
	if c.webhookEvents, err = meter.Int64Counter("destocard.stripe.webhook_events",
		metric.WithDescription("Stripe webhook deliveries."),
		metric.WithUnit("{event}")); err != nil {
		return nil, fmt.Errorf("failed to create counter destocard.stripe.webhook_events: %w", err)
	}
	if c.mediaUploads, err = meter.Int64Counter("destocard.media.uploads",
		metric.WithDescription("Stored media."),
		metric.WithUnit("{file}")); err != nil {
		return nil, fmt.Errorf("failed to create counter destocard.media.uploads: %w", err)
	}
	return &c, nil
}
