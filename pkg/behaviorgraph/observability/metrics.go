package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records engine metrics.
// Use NewMetricsRecorder for OTel, NewPrometheusMetrics for Prometheus, or
// NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordNodeVisit records one Handle call and whether it failed.
	RecordNodeVisit(ctx context.Context, graph, kind string, duration time.Duration, err error)

	// RecordGraphStart records a traversal starting.
	RecordGraphStart(ctx context.Context, graph string)

	// RecordGraphEnd records a traversal ending.
	RecordGraphEnd(ctx context.Context, graph string, duration time.Duration)

	// RecordSuspension records how long an engine stayed locked.
	RecordSuspension(ctx context.Context, graph string, duration time.Duration)

	// RecordInterrupt records an interrupt firing.
	RecordInterrupt(ctx context.Context, graph, name string)

	// RecordConditionError records a malformed condition.
	RecordConditionError(ctx context.Context, graph string)

	// RecordActiveEngines records the number of live engines in a host.
	RecordActiveEngines(ctx context.Context, n int)
}

type otelMetrics struct {
	nodeVisits      metric.Int64Counter
	nodeLatency     metric.Float64Histogram
	nodeErrors      metric.Int64Counter
	graphStarts     metric.Int64Counter
	graphDuration   metric.Float64Histogram
	suspensions     metric.Float64Histogram
	interrupts      metric.Int64Counter
	conditionErrors metric.Int64Counter
	activeEngines   metric.Int64Gauge
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter("behaviorgraph"))
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	var m otelMetrics
	var err error

	if m.nodeVisits, err = meter.Int64Counter("behaviorgraph.node.visits",
		metric.WithDescription("Number of node visits"),
	); err != nil {
		return nil, err
	}
	if m.nodeLatency, err = meter.Float64Histogram("behaviorgraph.node.latency_ms",
		metric.WithDescription("Node Handle latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.nodeErrors, err = meter.Int64Counter("behaviorgraph.node.errors",
		metric.WithDescription("Number of node failures absorbed by the engine"),
	); err != nil {
		return nil, err
	}
	if m.graphStarts, err = meter.Int64Counter("behaviorgraph.graph.starts",
		metric.WithDescription("Number of traversals started"),
	); err != nil {
		return nil, err
	}
	if m.graphDuration, err = meter.Float64Histogram("behaviorgraph.graph.duration_ms",
		metric.WithDescription("Traversal duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.suspensions, err = meter.Float64Histogram("behaviorgraph.engine.suspended_ms",
		metric.WithDescription("Time spent locked on a node in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.interrupts, err = meter.Int64Counter("behaviorgraph.interrupts",
		metric.WithDescription("Number of interrupts fired"),
	); err != nil {
		return nil, err
	}
	if m.conditionErrors, err = meter.Int64Counter("behaviorgraph.condition.errors",
		metric.WithDescription("Number of malformed conditions treated as not met"),
	); err != nil {
		return nil, err
	}
	if m.activeEngines, err = meter.Int64Gauge("behaviorgraph.host.engines",
		metric.WithDescription("Live engines in a host"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses the global
// OpenTelemetry meter provider. If initialization fails it logs a warning
// and returns NoopMetrics.
//
// Configure the provider before the first call:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderWithMeter returns an OTel recorder bound to meter.
func NewMetricsRecorderWithMeter(meter metric.Meter) (MetricsRecorder, error) {
	m, err := newOtelMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func (m *otelMetrics) RecordNodeVisit(ctx context.Context, graph, kind string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("graph", graph),
		attribute.String("kind", kind),
	)
	m.nodeVisits.Add(ctx, 1, attrs)
	m.nodeLatency.Record(ctx, ms(duration), attrs)
	if err != nil {
		m.nodeErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordGraphStart(ctx context.Context, graph string) {
	m.graphStarts.Add(ctx, 1, metric.WithAttributes(attribute.String("graph", graph)))
}

func (m *otelMetrics) RecordGraphEnd(ctx context.Context, graph string, duration time.Duration) {
	m.graphDuration.Record(ctx, ms(duration), metric.WithAttributes(attribute.String("graph", graph)))
}

func (m *otelMetrics) RecordSuspension(ctx context.Context, graph string, duration time.Duration) {
	m.suspensions.Record(ctx, ms(duration), metric.WithAttributes(attribute.String("graph", graph)))
}

func (m *otelMetrics) RecordInterrupt(ctx context.Context, graph, name string) {
	m.interrupts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graph", graph),
		attribute.String("interrupt", name),
	))
}

func (m *otelMetrics) RecordConditionError(ctx context.Context, graph string) {
	m.conditionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("graph", graph)))
}

func (m *otelMetrics) RecordActiveEngines(ctx context.Context, n int) {
	m.activeEngines.Record(ctx, int64(n))
}
