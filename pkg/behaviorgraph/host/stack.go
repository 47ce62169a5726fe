package host

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/checkpoint"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/config"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/observability"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// Stack holds the stores and recorders selected by Settings.
type Stack struct {
	// Vars is shared by every engine: it is the game's save state.
	Vars        vars.Store
	Checkpoints checkpoint.Store
	Metrics     observability.MetricsRecorder
	Spans       observability.SpanManager
}

// NewStack opens the backends s names. reg receives the Prometheus
// collectors when s.Metrics is prometheus; nil uses the default registry.
// Close the stack when the host is done.
func NewStack(s config.Settings, reg prometheus.Registerer) (*Stack, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	st := &Stack{
		Metrics: observability.NoopMetrics{},
		Spans:   observability.NoopSpanManager{},
	}

	var err error
	switch s.VarsDriver {
	case config.VarsSQLite:
		st.Vars, err = vars.NewSQLiteStore(s.VarsDSN)
	case config.VarsPostgres:
		st.Vars, err = vars.NewPostgresStore(s.VarsDSN)
	default:
		st.Vars = vars.NewMemoryStore(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open variable store: %w", err)
	}

	if s.CheckpointPath != "" {
		cps, err := checkpoint.NewSQLiteStore(s.CheckpointPath)
		if err != nil {
			_ = st.Vars.Close()
			return nil, fmt.Errorf("open checkpoint store: %w", err)
		}
		st.Checkpoints = cps
	} else {
		st.Checkpoints = checkpoint.NewMemoryStore()
	}

	switch s.Metrics {
	case config.MetricsOTel:
		st.Metrics = observability.NewMetricsRecorder()
	case config.MetricsPrometheus:
		st.Metrics = observability.NewPrometheusMetrics(reg)
	}
	if s.Tracing {
		st.Spans = observability.NewSpanManager()
	}
	return st, nil
}

// EngineOptions returns the engine options that wire the stack in.
func (st *Stack) EngineOptions() []behaviorgraph.Option {
	return []behaviorgraph.Option{
		behaviorgraph.WithVars(st.Vars),
		behaviorgraph.WithCheckpointStore(st.Checkpoints),
		behaviorgraph.WithMetrics(st.Metrics),
		behaviorgraph.WithTracing(st.Spans),
	}
}

// HostOptions returns the host options for s and this stack.
func (st *Stack) HostOptions(s config.Settings) []Option {
	return []Option{
		WithSettings(s),
		WithMetrics(st.Metrics),
		WithEngineOptions(st.EngineOptions()...),
	}
}

// Close closes the stores.
func (st *Stack) Close() error {
	var errs []error
	if st.Vars != nil {
		errs = append(errs, st.Vars.Close())
	}
	if st.Checkpoints != nil {
		errs = append(errs, st.Checkpoints.Close())
	}
	return errors.Join(errs...)
}
