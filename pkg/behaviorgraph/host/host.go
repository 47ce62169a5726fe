// Package host runs many behavior engines in one process.
//
// A game server gives every NPC, quest and cutscene its own engine. The
// host owns them by ID, ticks them all each frame (independent engines in
// parallel), drops the ones that ended and answers read-only queries
// about any of them.
//
//	h := host.New(host.WithSettings(settings), host.WithLogger(logger))
//	e, err := h.Spawn(ctx, guardGraph, behaviorgraph.WithEngineID("guard-7"))
//	go h.Run(ctx)
//	node, err := h.Query(ctx, "guard-7", query.CurrentNode, nil)
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/query"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/registry"
)

var (
	// ErrEngineExists is returned when an engine ID is already taken.
	ErrEngineExists = errors.New("engine already exists")

	// ErrHostFull is returned when the host is at its engine cap.
	ErrHostFull = errors.New("host is at its engine limit")

	// ErrNilEngine is returned by Adopt for a nil engine.
	ErrNilEngine = errors.New("engine cannot be nil")
)

// Host owns a set of engines keyed by ID.
type Host struct {
	cfg     hostConfig
	engines *registry.Registry[string, *behaviorgraph.Engine]
	queries *query.Registry
	exec    *query.Executor

	// admit serializes the cap check with registration.
	admit sync.Mutex

	mu           sync.Mutex
	tickInterval time.Duration
	intervalCh   chan time.Duration
}

// New creates an empty host.
func New(opts ...Option) *Host {
	cfg := defaultHostConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	h := &Host{
		cfg:          cfg,
		engines:      registry.New[string, *behaviorgraph.Engine](),
		queries:      query.NewRegistry(),
		tickInterval: cfg.tickInterval,
		intervalCh:   make(chan time.Duration, 1),
	}
	if err := query.RegisterBuiltins(h.queries, query.EngineLoader(h.Get)); err != nil {
		panic(fmt.Sprintf("host: register queries: %v", err))
	}
	h.exec = query.NewExecutor(h.queries)
	return h
}

// Spawn creates an engine, registers it and starts it on g. Options
// passed here override the host's engine options. If the graph cannot be
// started the engine is ended and not kept.
func (h *Host) Spawn(ctx context.Context, g *behaviorgraph.CompiledGraph, opts ...behaviorgraph.Option) (*behaviorgraph.Engine, error) {
	if g == nil {
		return nil, behaviorgraph.ErrNilGraph
	}
	e := behaviorgraph.NewEngine(h.engineOptions(opts)...)
	if err := h.Adopt(e); err != nil {
		return nil, err
	}
	if err := e.StartGraph(ctx, g); err != nil {
		// A runaway start leaves the engine parked, not ended.
		e.EndGraph()
		h.remove(e.ID())
		return nil, fmt.Errorf("start engine %s: %w", e.ID(), err)
	}
	h.cfg.logger.Debug("engine spawned",
		slog.String("engine_id", e.ID()),
		slog.String("graph", g.Name()))
	return e, nil
}

// Adopt registers an engine created elsewhere, typically by
// behaviorgraph.Resume. The engine is not started.
func (h *Host) Adopt(e *behaviorgraph.Engine) error {
	if e == nil {
		return ErrNilEngine
	}
	h.admit.Lock()
	defer h.admit.Unlock()

	if h.cfg.maxEngines > 0 && h.engines.Len() >= h.cfg.maxEngines {
		return fmt.Errorf("%w (%d)", ErrHostFull, h.cfg.maxEngines)
	}
	if err := h.engines.Add(e.ID(), e); err != nil {
		return fmt.Errorf("%w: %s", ErrEngineExists, e.ID())
	}
	h.cfg.metrics.RecordActiveEngines(context.Background(), h.engines.Len())
	return nil
}

// EngineOptions returns the options Spawn would use with extra appended.
// Use it to Resume an engine with the host's stores and recorders.
func (h *Host) EngineOptions(extra ...behaviorgraph.Option) []behaviorgraph.Option {
	return h.engineOptions(extra)
}

func (h *Host) engineOptions(extra []behaviorgraph.Option) []behaviorgraph.Option {
	opts := []behaviorgraph.Option{
		behaviorgraph.WithLogger(h.cfg.logger),
		behaviorgraph.WithMetrics(h.cfg.metrics),
	}
	if h.cfg.signals != nil {
		opts = append(opts, behaviorgraph.WithSignals(h.cfg.signals))
	}
	opts = append(opts, h.cfg.engineOpts...)
	return append(opts, extra...)
}

// Get returns the engine with the given ID.
func (h *Host) Get(id string) (*behaviorgraph.Engine, bool) {
	return h.engines.Get(id)
}

// IDs returns the IDs of every engine, sorted.
func (h *Host) IDs() []string {
	ids := h.engines.Keys()
	sort.Strings(ids)
	return ids
}

// Len returns the number of engines, ended ones included until reaped.
func (h *Host) Len() int {
	return h.engines.Len()
}

// Stop ends an engine's traversal and removes it. Unknown IDs are ignored.
func (h *Host) Stop(id string) {
	e, ok := h.engines.Get(id)
	if !ok {
		return
	}
	e.EndGraph()
	h.remove(id)
	h.purgeSignals(context.Background(), id)
}

func (h *Host) remove(id string) {
	h.engines.Delete(id)
	h.cfg.metrics.RecordActiveEngines(context.Background(), h.engines.Len())
}

// Tick advances every engine by dt. Engines are independent, so they
// tick in parallel; each engine's own state is guarded by its mutex.
// The errors of every engine that failed are joined; one engine's
// failure does not stop the others.
func (h *Host) Tick(ctx context.Context, dt time.Duration) error {
	engines := h.engines.Values()

	g, gctx := errgroup.WithContext(ctx)
	if h.cfg.parallelism > 0 {
		g.SetLimit(h.cfg.parallelism)
	}

	var mu sync.Mutex
	var errs []error
	for _, e := range engines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := e.Tick(dt); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("engine %s: %w", e.ID(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// Reap removes every ended engine and returns their IDs, sorted. When a
// shared signal store is configured their pending signals are purged.
func (h *Host) Reap(ctx context.Context) []string {
	ended := h.engines.DeleteFunc(func(_ string, e *behaviorgraph.Engine) bool {
		return e.Status() == behaviorgraph.StatusEnded
	})
	if len(ended) == 0 {
		return nil
	}
	sort.Strings(ended)
	for _, id := range ended {
		h.purgeSignals(ctx, id)
	}
	h.cfg.metrics.RecordActiveEngines(ctx, h.engines.Len())
	h.cfg.logger.Debug("engines reaped", slog.Int("count", len(ended)))
	return ended
}

func (h *Host) purgeSignals(ctx context.Context, id string) {
	if h.cfg.signals == nil {
		return
	}
	if _, err := h.cfg.signals.Purge(ctx, id); err != nil {
		h.cfg.logger.Warn("purge signals failed",
			slog.String("engine_id", id),
			slog.String("error", err.Error()))
	}
}

// TickInterval returns the interval Run ticks at.
func (h *Host) TickInterval() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tickInterval
}

// SetTickInterval changes the interval of a running Run loop. It is safe
// to call from a settings watcher. Non-positive values are ignored.
func (h *Host) SetTickInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tickInterval = d

	// Keep only the newest pending change. Senders hold mu, so the
	// buffer is free after the drain.
	select {
	case <-h.intervalCh:
	default:
	}
	h.intervalCh <- d
}

// Run ticks every engine at the tick interval and reaps ended engines
// until ctx is cancelled. The dt passed to engines is the wall time since
// the previous tick. Tick errors are logged; they never stop the loop.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.TickInterval())
	defer ticker.Stop()

	h.cfg.logger.Info("host running", slog.Duration("tick_interval", h.TickInterval()))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			h.cfg.logger.Info("host stopped", slog.Int("engines", h.Len()))
			return ctx.Err()
		case d := <-h.intervalCh:
			ticker.Reset(d)
			h.cfg.logger.Info("tick interval changed", slog.Duration("tick_interval", d))
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := h.Tick(ctx, dt); err != nil && ctx.Err() == nil {
				h.cfg.logger.Warn("tick failed", slog.String("error", err.Error()))
			}
			h.Reap(ctx)
		}
	}
}

// Query runs a read-only query against one engine. The built-in queries
// are registered; add more with Queries.
func (h *Host) Query(ctx context.Context, engineID, name string, args any) (any, error) {
	return h.exec.Execute(ctx, engineID, name, args)
}

// Queries returns the host's query registry.
func (h *Host) Queries() *query.Registry {
	return h.queries
}
