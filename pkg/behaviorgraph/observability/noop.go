package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

func (NoopMetrics) RecordNodeVisit(context.Context, string, string, time.Duration, error) {}
func (NoopMetrics) RecordGraphStart(context.Context, string)                              {}
func (NoopMetrics) RecordGraphEnd(context.Context, string, time.Duration)                 {}
func (NoopMetrics) RecordSuspension(context.Context, string, time.Duration)               {}
func (NoopMetrics) RecordInterrupt(context.Context, string, string)                       {}
func (NoopMetrics) RecordConditionError(context.Context, string)                          {}
func (NoopMetrics) RecordActiveEngines(context.Context, int)                              {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartRunSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRunSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartNodeSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartNodeSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}
