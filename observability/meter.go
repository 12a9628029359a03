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

	"github.com/kbukum/kvbridge/logger"
)

// InitMeter installs an OTLP/HTTP meter provider as the global provider.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns the kvbridge meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the instruments recorded by bridge operations and the
// HTTP surface.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
	requestActive     metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.operationTotal, err = meter.Int64Counter("operation.total",
		metric.WithDescription("Bridge operations by name and status")); err != nil {
		return nil, instrumentError("operation.total", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("operation.duration",
		metric.WithDescription("Bridge operation latency"), metric.WithUnit("s")); err != nil {
		return nil, instrumentError("operation.duration", err)
	}
	if m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Failures by error code and component")); err != nil {
		return nil, instrumentError("error.total", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("request.active",
		metric.WithDescription("In-flight HTTP requests")); err != nil {
		return nil, instrumentError("request.active", err)
	}
	return &m, nil
}

func instrumentError(name string, err error) error {
	return fmt.Errorf("creating instrument %s: %w", name, err)
}

// RecordOperation counts one completed operation and records its latency.
func (m *Metrics) RecordOperation(ctx context.Context, operation, status string, duration time.Duration) {
	op := attribute.String("operation", operation)
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(op, attribute.String("status", status)))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(op))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code), attribute.String("component", component)))
}

// RequestStarted and RequestFinished track in-flight HTTP requests. Both
// are no-ops on a nil receiver.
func (m *Metrics) RequestStarted(ctx context.Context) {
	if m != nil {
		m.requestActive.Add(ctx, 1)
	}
}

func (m *Metrics) RequestFinished(ctx context.Context) {
	if m != nil {
		m.requestActive.Add(ctx, -1)
	}
}
