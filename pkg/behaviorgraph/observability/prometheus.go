package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	nodeVisits      *prometheus.CounterVec
	nodeErrors      *prometheus.CounterVec
	nodeLatency     *prometheus.HistogramVec
	graphStarts     *prometheus.CounterVec
	graphDuration   *prometheus.HistogramVec
	suspensions     *prometheus.HistogramVec
	interrupts      *prometheus.CounterVec
	conditionErrors *prometheus.CounterVec
	activeEngines   prometheus.Gauge
}

var _ MetricsRecorder = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the collectors on reg. A nil reg uses
// prometheus.DefaultRegisterer. Registering twice on the same registry panics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &PrometheusMetrics{
		nodeVisits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "behaviorgraph_node_visits_total",
			Help: "Total node visits, labelled by graph and kind.",
		}, []string{"graph", "kind"}),
		nodeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "behaviorgraph_node_errors_total",
			Help: "Node failures absorbed by the engine, labelled by graph and kind.",
		}, []string{"graph", "kind"}),
		nodeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "behaviorgraph_node_latency_ms",
			Help:    "Node Handle latency in milliseconds.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
		}, []string{"graph", "kind"}),
		graphStarts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "behaviorgraph_graph_starts_total",
			Help: "Traversals started, labelled by graph.",
		}, []string{"graph"}),
		graphDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "behaviorgraph_graph_duration_ms",
			Help:    "Traversal duration in milliseconds.",
			Buckets: []float64{1, 10, 100, 1000, 10000, 60000, 300000},
		}, []string{"graph"}),
		suspensions: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "behaviorgraph_engine_suspended_ms",
			Help:    "Time spent locked on a node in milliseconds.",
			Buckets: []float64{10, 100, 500, 1000, 5000, 30000},
		}, []string{"graph"}),
		interrupts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "behaviorgraph_interrupts_total",
			Help: "Interrupts fired, labelled by graph and interrupt name.",
		}, []string{"graph", "interrupt"}),
		conditionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "behaviorgraph_condition_errors_total",
			Help: "Malformed conditions treated as not met.",
		}, []string{"graph"}),
		activeEngines: f.NewGauge(prometheus.GaugeOpts{
			Name: "behaviorgraph_host_engines",
			Help: "Live engines in a host.",
		}),
	}
}

// RecordNodeVisit implements MetricsRecorder.
func (p *PrometheusMetrics) RecordNodeVisit(_ context.Context, graph, kind string, duration time.Duration, err error) {
	p.nodeVisits.WithLabelValues(graph, kind).Inc()
	p.nodeLatency.WithLabelValues(graph, kind).Observe(ms(duration))
	if err != nil {
		p.nodeErrors.WithLabelValues(graph, kind).Inc()
	}
}

// RecordGraphStart implements MetricsRecorder.
func (p *PrometheusMetrics) RecordGraphStart(_ context.Context, graph string) {
	p.graphStarts.WithLabelValues(graph).Inc()
}

// RecordGraphEnd implements MetricsRecorder.
func (p *PrometheusMetrics) RecordGraphEnd(_ context.Context, graph string, duration time.Duration) {
	p.graphDuration.WithLabelValues(graph).Observe(ms(duration))
}

// RecordSuspension implements MetricsRecorder.
func (p *PrometheusMetrics) RecordSuspension(_ context.Context, graph string, duration time.Duration) {
	p.suspensions.WithLabelValues(graph).Observe(ms(duration))
}

// RecordInterrupt implements MetricsRecorder.
func (p *PrometheusMetrics) RecordInterrupt(_ context.Context, graph, name string) {
	p.interrupts.WithLabelValues(graph, name).Inc()
}

// RecordConditionError implements MetricsRecorder.
func (p *PrometheusMetrics) RecordConditionError(_ context.Context, graph string) {
	p.conditionErrors.WithLabelValues(graph).Inc()
}

// RecordActiveEngines implements MetricsRecorder.
func (p *PrometheusMetrics) RecordActiveEngines(_ context.Context, n int) {
	p.activeEngines.Set(float64(n))
}
