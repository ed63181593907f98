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

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Outcome values recorded on poll and completion metrics.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeStale  = "stale"
)

// Metrics holds the instruments flowview records.
type Metrics struct {
	fetchTotal    metric.Int64Counter
	fetchDuration metric.Float64Histogram
	completeTotal metric.Int64Counter
	mountedPages  metric.Int64UpDownCounter
}

// NewMetrics creates the flowview instruments on the given meter provider.
// A nil provider uses the global one.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	fetchTotal, err := meter.Int64Counter("flowview.poll.fetch.total",
		metric.WithDescription("Status fetches by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch counter: %w", err)
	}
	fetchDuration, err := meter.Float64Histogram("flowview.poll.fetch.duration",
		metric.WithDescription("Status fetch latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch histogram: %w", err)
	}
	completeTotal, err := meter.Int64Counter("flowview.task.complete.total",
		metric.WithDescription("Task completion requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completion counter: %w", err)
	}
	mountedPages, err := meter.Int64UpDownCounter("flowview.executions.mounted",
		metric.WithDescription("Execution pages currently mounted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mounted gauge: %w", err)
	}

	return &Metrics{
		fetchTotal:    fetchTotal,
		fetchDuration: fetchDuration,
		completeTotal: completeTotal,
		mountedPages:  mountedPages,
	}, nil
}

// RecordFetch records one status fetch.
func (m *Metrics) RecordFetch(ctx context.Context, instanceID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrInstanceID, instanceID),
		attribute.String(AttrOutcome, outcome),
	)
	m.fetchTotal.Add(ctx, 1, attrs)
	if outcome != OutcomeStale {
		m.fetchDuration.Record(ctx, d.Seconds(), attrs)
	}
}

// RecordCompletion records one task completion request.
func (m *Metrics) RecordCompletion(ctx context.Context, mode, outcome string) {
	if m == nil {
		return
	}
	m.completeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String(AttrOutcome, outcome),
	))
}

// PageMounted adjusts the mounted page gauge by delta.
func (m *Metrics) PageMounted(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.mountedPages.Add(ctx, delta)
}
