package host

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/config"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/observability"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/signal"
)

// hostConfig holds configuration for a Host.
type hostConfig struct {
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	signals      signal.Store
	engineOpts   []behaviorgraph.Option
	tickInterval time.Duration
	maxEngines   int
	parallelism  int
}

func defaultHostConfig() hostConfig {
	return hostConfig{
		logger:       slog.Default(),
		metrics:      observability.NoopMetrics{},
		tickInterval: config.DefaultSettings().TickInterval,
	}
}

// Option configures a Host.
type Option func(*hostConfig)

// WithLogger sets the host logger. Spawned engines log through it too
// unless their own options say otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(c *hostConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records the live engine count and passes m to every engine.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *hostConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSignals shares one signal store between every engine, so a sender
// needs only the target engine's ID. Reap purges an ended engine's
// signals from it.
func WithSignals(store signal.Store) Option {
	return func(c *hostConfig) {
		c.signals = store
	}
}

// WithEngineOptions adds options applied to every spawned engine before
// the options passed to Spawn.
func WithEngineOptions(opts ...behaviorgraph.Option) Option {
	return func(c *hostConfig) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// WithTickInterval sets how often Run ticks. Non-positive values are ignored.
func WithTickInterval(d time.Duration) Option {
	return func(c *hostConfig) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// WithMaxEngines caps live engines. 0 means unlimited.
func WithMaxEngines(n int) Option {
	return func(c *hostConfig) {
		if n >= 0 {
			c.maxEngines = n
		}
	}
}

// WithParallelism bounds how many engines tick at once. Default: unbounded.
func WithParallelism(n int) Option {
	return func(c *hostConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithSettings applies the host-level fields of s: tick interval, engine
// cap and the per-drive step limit.
func WithSettings(s config.Settings) Option {
	return func(c *hostConfig) {
		WithTickInterval(s.TickInterval)(c)
		WithMaxEngines(s.MaxEngines)(c)
		if s.MaxSteps > 0 {
			c.engineOpts = append(c.engineOpts, behaviorgraph.WithMaxSteps(s.MaxSteps))
		}
	}
}
