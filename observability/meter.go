package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/servicehub/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, svc ServiceInfo, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", svc.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for registry and gateway operations.
// Instruments created from the no-op global provider record nothing, so a
// shared *Metrics is safe to use whether or not telemetry is enabled.
type Metrics struct {
	proxyTotal     metric.Int64Counter
	proxyDuration  metric.Float64Histogram
	proxyErrors    metric.Int64Counter
	cacheRefreshes metric.Int64Counter
	registrations  metric.Int64Counter
	heartbeats     metric.Int64Counter
	sweepDemotions metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	proxyTotal, err := meter.Int64Counter("gateway.proxy.total",
		metric.WithDescription("Total proxied requests by service and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gateway.proxy.total counter: %w", err)
	}

	proxyDuration, err := meter.Float64Histogram("gateway.proxy.duration",
		metric.WithDescription("End-to-end duration of proxied requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gateway.proxy.duration histogram: %w", err)
	}

	proxyErrors, err := meter.Int64Counter("gateway.proxy.errors",
		metric.WithDescription("Proxy failures by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gateway.proxy.errors counter: %w", err)
	}

	cacheRefreshes, err := meter.Int64Counter("gateway.cache.refresh.total",
		metric.WithDescription("Discovery cache refresh attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gateway.cache.refresh.total counter: %w", err)
	}

	registrations, err := meter.Int64Counter("registry.registrations.total",
		metric.WithDescription("Registration requests by outcome (created, updated)"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.registrations.total counter: %w", err)
	}

	heartbeats, err := meter.Int64Counter("registry.heartbeats.total",
		metric.WithDescription("Heartbeat requests received"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.heartbeats.total counter: %w", err)
	}

	sweepDemotions, err := meter.Int64Counter("registry.sweep.demoted",
		metric.WithDescription("Services demoted to inactive by the liveness sweep"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.sweep.demoted counter: %w", err)
	}

	return &Metrics{
		proxyTotal:     proxyTotal,
		proxyDuration:  proxyDuration,
		proxyErrors:    proxyErrors,
		cacheRefreshes: cacheRefreshes,
		registrations:  registrations,
		heartbeats:     heartbeats,
		sweepDemotions: sweepDemotions,
	}, nil
}

// RecordProxy records a completed proxy call.
func (m *Metrics) RecordProxy(ctx context.Context, service, method string, status int, duration time.Duration) {
	m.proxyTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("method", method),
		attribute.Int("status", status),
	))
	m.proxyDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("method", method),
	))
}

// RecordProxyError records a proxy failure by error code.
func (m *Metrics) RecordProxyError(ctx context.Context, service, code string) {
	m.proxyErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("code", code),
	))
}

// RecordCacheRefresh records a discovery cache refresh attempt.
func (m *Metrics) RecordCacheRefresh(ctx context.Context, outcome string, services int) {
	m.cacheRefreshes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("services", services),
	))
}

// RecordRegistration records a registration request.
func (m *Metrics) RecordRegistration(ctx context.Context, outcome string) {
	m.registrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordHeartbeat records a heartbeat request.
func (m *Metrics) RecordHeartbeat(ctx context.Context, service string) {
	m.heartbeats.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
	))
}

// RecordSweepDemotions records services demoted by a liveness sweep.
func (m *Metrics) RecordSweepDemotions(ctx context.Context, count int) {
	if count == 0 {
		return
	}
	m.sweepDemotions.Add(ctx, int64(count))
}
