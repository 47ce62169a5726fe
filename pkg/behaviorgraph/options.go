package behaviorgraph

import (
	"log/slog"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/checkpoint"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/collab"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/event"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/observability"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/signal"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// DefaultMaxSteps bounds the node visits performed by one drive.
const DefaultMaxSteps = 1000

// engineConfig holds configuration for an Engine.
type engineConfig struct {
	engineID    string
	logger      *slog.Logger
	vars        vars.Store
	services    collab.Services
	signals     signal.Store
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
	bus         event.Bus
	checkpoints checkpoint.Store
	maxSteps    int
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		maxSteps: DefaultMaxSteps,
	}
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithEngineID sets the engine ID. Default: a random UUID.
func WithEngineID(id string) Option {
	return func(c *engineConfig) {
		c.engineID = id
	}
}

// WithLogger sets the logger. It is enriched with engine_id, graph,
// node_id and kind as the engine runs. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithVars sets the variable store conditions read and nodes write.
// Default: an empty in-memory store private to the engine.
func WithVars(store vars.Store) Option {
	return func(c *engineConfig) {
		c.vars = store
	}
}

// WithServices sets the collaborators. Nil members become no-ops.
func WithServices(s collab.Services) Option {
	return func(c *engineConfig) {
		c.services = s
	}
}

// WithSignals sets the signal store waiting nodes poll.
// Default: an in-memory store private to the engine.
func WithSignals(store signal.Store) Option {
	return func(c *engineConfig) {
		c.signals = store
	}
}

// WithMetrics enables metrics recording.
//
//	engine := behaviorgraph.NewEngine(
//	    behaviorgraph.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans: one behaviorgraph.run span per
// traversal and one behaviorgraph.node.<id> span per visit.
func WithTracing(sm observability.SpanManager) Option {
	return func(c *engineConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithEventBus publishes lifecycle events to bus.
func WithEventBus(bus event.Bus) Option {
	return func(c *engineConfig) {
		c.bus = bus
	}
}

// WithCheckpointStore saves a checkpoint each time a node is entered and
// when the traversal ends, so the engine can be resumed with Resume.
func WithCheckpointStore(store checkpoint.Store) Option {
	return func(c *engineConfig) {
		c.checkpoints = store
	}
}

// WithMaxSteps sets the maximum node visits per drive. Default: 1000.
// Values below 1 are ignored.
func WithMaxSteps(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}
