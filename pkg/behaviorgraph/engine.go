package behaviorgraph

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/checkpoint"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/collab"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/event"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/observability"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/signal"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// Status is the engine's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSuspended
	StatusEnded
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSuspended:
		return "suspended"
	case StatusEnded:
		return "ended"
	default:
		return "idle"
	}
}

// Engine walks one graph with one cursor.
//
// Create one Engine per consumer (an open dialog, a boss fight, a quest).
// Engines never share lock state. Ended is terminal: a new traversal
// needs a new Engine.
//
// All methods are safe for concurrent use. The engine's mutex is never
// held while node callbacks, conditions or thread jobs run, so callbacks
// may call back into the engine. Such calls never recurse: a Continue
// requested during a visit is performed by the running drive once the
// visit completes.
type Engine struct {
	id       string
	cfg      engineConfig
	vars     vars.Store
	services collab.Services
	signals  signal.Store

	mu          sync.Mutex
	status      Status
	graph       *CompiledGraph
	current     *Node
	prev        *Node
	visits      int
	generation  uint64
	lockSeq     uint64
	suspendedAt time.Time
	thread      *Thread
	latched     *latchedJump
	fired       map[string]bool

	// Drive state. Requests made while driving are recorded here and
	// performed by the running drive.
	driving bool
	advance bool
	jump    *Node

	logger    *slog.Logger
	runID     string
	runCtx    context.Context
	cancelRun context.CancelFunc
	spanCtx   context.Context
	runSpan   trace.Span
	startedAt time.Time
}

type latchedJump struct {
	interrupt Interrupt
	target    *Node
}

// NewEngine creates an idle engine.
func NewEngine(opts ...Option) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.engineID == "" {
		cfg.engineID = uuid.New().String()
	}
	if cfg.vars == nil {
		cfg.vars = vars.NewMemoryStore(nil)
	}
	if cfg.signals == nil {
		cfg.signals = signal.NewMemoryStore()
	}

	logger := cfg.logger
	if logger == nil {
		logger = discardLogger
	}

	return &Engine{
		id:       cfg.engineID,
		cfg:      cfg,
		vars:     cfg.vars,
		services: cfg.services.WithDefaults(),
		signals:  cfg.signals,
		logger:   logger.With(slog.String("engine_id", cfg.engineID)),
		runCtx:   context.Background(),
		spanCtx:  context.Background(),
	}
}

// ID returns the engine ID.
func (e *Engine) ID() string { return e.id }

// Vars returns the engine's variable store.
func (e *Engine) Vars() vars.Store { return e.vars }

// Signals returns the engine's signal store.
func (e *Engine) Signals() signal.Store { return e.signals }

// Services returns the engine's collaborators.
func (e *Engine) Services() collab.Services { return e.services }

// Status returns the current lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Locked reports whether a node holds the suspension lock.
func (e *Engine) Locked() bool {
	return e.Status() == StatusSuspended
}

// CurrentNode returns the node under the cursor, or nil.
func (e *Engine) CurrentNode() *Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// CurrentGraph returns the graph being traversed, or nil before StartGraph.
// The graph stays available after the engine ends.
func (e *Engine) CurrentGraph() *CompiledGraph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Visits returns how many nodes this traversal has visited.
func (e *Engine) Visits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visits
}

// Thread returns the outstanding thread, or nil.
func (e *Engine) Thread() *Thread {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thread
}

// StartGraph begins traversing g at its entry node.
//
// It is valid only on an idle engine. If g has no entry node the engine
// logs a warning and ends. Otherwise the entry is visited and the engine
// drives forward until a node parks or locks it. The returned error is
// non-nil only for rejected calls and runaway drives (*MaxStepsError);
// node failures are logged, never returned.
func (e *Engine) StartGraph(ctx context.Context, g *CompiledGraph) error {
	return e.start(ctx, g, nil)
}

// start begins a traversal at at, or at the entry when at is nil.
func (e *Engine) start(ctx context.Context, g *CompiledGraph, at *Node) error {
	if g == nil {
		return ErrNilGraph
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()
	switch e.status {
	case StatusRunning, StatusSuspended:
		e.mu.Unlock()
		return ErrAlreadyStarted
	case StatusEnded:
		e.mu.Unlock()
		return ErrEngineEnded
	}

	e.graph = g
	e.generation++
	e.visits = 0
	e.fired = make(map[string]bool)
	e.runID = uuid.New().String()
	e.startedAt = time.Now()
	e.logger = observability.EnrichLogger(e.baseLogger(), e.id, g.Name())
	e.runCtx, e.cancelRun = context.WithCancel(ctx)
	e.spanCtx, e.runSpan = e.cfg.spans.StartRunSpan(e.runCtx, g.Name(), e.id)

	first := at
	if first == nil {
		first = g.Entry()
	}
	if first == nil {
		e.mu.Unlock()
		e.logger.Warn("graph has no entry node", slog.String("entry", g.EntryID()))
		e.end("missing_entry", ErrNoEntry)
		return nil
	}

	e.status = StatusRunning
	e.driving = true
	logger := e.logger
	e.mu.Unlock()

	observability.LogGraphStart(logger, first.ID)
	e.cfg.metrics.RecordGraphStart(e.spanCtx, g.Name())
	e.publish(event.TypeGraphStarted, event.GraphStarted{Graph: g.Name(), Entry: first.ID})

	return e.drive(first)
}

func (e *Engine) baseLogger() *slog.Logger {
	if e.cfg.logger == nil {
		return discardLogger
	}
	return e.cfg.logger
}

// Continue advances from the current node to the one its kind's Next
// resolves, and visits it. If Next resolves nothing the engine stays
// parked.
//
// Continue is a no-op on an idle or ended engine and fails with
// ErrSuspended while a node holds the lock. Called during a visit, it
// is deferred until the visit completes.
func (e *Engine) Continue() error {
	e.mu.Lock()
	switch e.status {
	case StatusIdle, StatusEnded:
		e.mu.Unlock()
		return nil
	case StatusSuspended:
		e.mu.Unlock()
		return ErrSuspended
	}
	if e.driving {
		e.advance = true
		e.mu.Unlock()
		return nil
	}
	e.driving = true
	e.mu.Unlock()

	return e.drive(nil)
}

// LockNode suspends the engine on the current node. It returns true only
// when the engine was running; the caller then owns the suspension and
// must eventually UnlockNode, usually through a Thread. Any other call
// returns false and changes nothing.
func (e *Engine) LockNode() bool {
	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		return false
	}
	e.status = StatusSuspended
	e.lockSeq++
	e.suspendedAt = time.Now()
	seq := e.lockSeq
	nodeID := e.currentID()
	logger := e.logger
	spanCtx := e.spanCtx
	e.mu.Unlock()

	observability.LogSuspend(logger, nodeID, seq)
	e.cfg.spans.AddSpanEvent(spanCtx, event.TypeEngineSuspended, attribute.String("node_id", nodeID))
	e.publish(event.TypeEngineSuspended, event.EngineSuspended{NodeID: nodeID, LockSeq: seq})
	return true
}

// UnlockNode releases the suspension and performs exactly one advance.
// If an interrupt was latched during the suspension, the engine jumps to
// its target instead. Fails with ErrNotSuspended when no lock is held.
func (e *Engine) UnlockNode() error {
	return e.resume(nil)
}

// resume releases the lock. With a token it only does so if the token
// still matches the lock it was issued for; a stale token is logged and
// ignored.
func (e *Engine) resume(tok *threadToken) error {
	e.mu.Lock()
	if tok != nil && (tok.generation != e.generation || tok.lockSeq != e.lockSeq || e.status != StatusSuspended) {
		nodeID := e.currentID()
		logger := e.logger
		e.mu.Unlock()
		observability.LogStaleThread(logger, nodeID)
		return nil
	}
	if e.status != StatusSuspended {
		e.mu.Unlock()
		return ErrNotSuspended
	}

	e.status = StatusRunning
	suspended := time.Since(e.suspendedAt)
	if e.thread != nil {
		e.thread.cancel()
		e.thread = nil
	}
	latched := e.latched
	e.latched = nil
	nodeID := e.currentID()
	logger := e.logger
	graphName := e.graph.Name()
	spanCtx := e.spanCtx

	startDrive := !e.driving
	if startDrive {
		e.driving = true
	} else if latched != nil {
		e.jump = latched.target
	} else {
		e.advance = true
	}
	e.mu.Unlock()

	observability.LogResume(logger, nodeID, float64(suspended.Milliseconds()))
	e.cfg.metrics.RecordSuspension(spanCtx, graphName, suspended)
	e.cfg.spans.AddSpanEvent(spanCtx, event.TypeEngineResumed, attribute.String("node_id", nodeID))
	e.publish(event.TypeEngineResumed, event.EngineResumed{NodeID: nodeID, Suspended: suspended})

	if !startDrive {
		return nil
	}
	if latched != nil {
		logger.Debug("applying latched interrupt",
			slog.String("interrupt", latched.interrupt.Name),
			slog.String("target", latched.target.ID))
		return e.drive(latched.target)
	}
	return e.drive(nil)
}

// EndGraph ends the traversal: the cursor is cleared, an outstanding
// thread is cancelled, a latched jump is dropped and the run context is
// cancelled. Calling it again, or on an idle engine, just leaves the
// engine ended.
func (e *Engine) EndGraph() {
	e.end("ended", nil)
}

func (e *Engine) end(reason string, cause error) {
	e.mu.Lock()
	if e.status == StatusEnded {
		e.mu.Unlock()
		return
	}
	wasIdle := e.status == StatusIdle && cause == nil
	e.status = StatusEnded
	e.current = nil
	e.prev = nil
	e.generation++
	e.latched = nil
	e.jump = nil
	e.advance = false
	thread := e.thread
	e.thread = nil
	cancel := e.cancelRun
	span := e.runSpan
	spanCtx := e.spanCtx
	visits := e.visits
	logger := e.logger
	var graphName string
	if e.graph != nil {
		graphName = e.graph.Name()
	}
	duration := time.Since(e.startedAt)
	e.mu.Unlock()

	if thread != nil {
		thread.cancel()
	}
	if wasIdle {
		return
	}

	observability.LogGraphEnd(logger, reason, visits, float64(duration.Milliseconds()))
	e.cfg.metrics.RecordGraphEnd(spanCtx, graphName, duration)
	e.publish(event.TypeGraphEnded, event.GraphEnded{Graph: graphName, Reason: reason, Visits: visits})
	e.saveCheckpoint(graphName, "", "", visits, StatusEnded)
	if span != nil {
		e.cfg.spans.EndSpanWithError(span, cause)
	}
	if cancel != nil {
		cancel()
	}
}

// SetCurrentNode moves the cursor to n without visiting it. The next
// Continue resolves from n.
//
// n must belong to the loaded graph (*DanglingCursorError otherwise).
// Fails with ErrSuspended while a node holds the lock and ErrNotRunning
// on an idle or ended engine.
func (e *Engine) SetCurrentNode(n *Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkCursor(n); err != nil {
		return err
	}
	e.prev, e.current = e.current, n
	return nil
}

// JumpTo moves the cursor to n and visits it. Interrupts use it.
// It fails like SetCurrentNode. Called during a visit, the jump is
// performed once the visit completes.
func (e *Engine) JumpTo(n *Node) error {
	e.mu.Lock()
	if err := e.checkCursor(n); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.driving {
		e.jump = n
		e.mu.Unlock()
		return nil
	}
	e.driving = true
	e.mu.Unlock()

	return e.drive(n)
}

// checkCursor validates a cursor move. Caller holds e.mu.
func (e *Engine) checkCursor(n *Node) error {
	switch e.status {
	case StatusIdle, StatusEnded:
		return ErrNotRunning
	case StatusSuspended:
		return ErrSuspended
	}
	if !e.graph.Contains(n) {
		id := "<nil>"
		if n != nil {
			id = n.ID
		}
		return &DanglingCursorError{NodeID: id, Graph: e.graph.Name()}
	}
	return nil
}

// currentID returns the current node ID or "". Caller holds e.mu.
func (e *Engine) currentID() string {
	if e.current == nil {
		return ""
	}
	return e.current.ID
}

// Snapshot returns a checkpoint of the cursor.
func (e *Engine) Snapshot() checkpoint.Checkpoint {
	e.mu.Lock()
	defer e.mu.Unlock()

	var graphName, prevID string
	if e.graph != nil {
		graphName = e.graph.Name()
	}
	if e.prev != nil {
		prevID = e.prev.ID
	}
	return *checkpoint.New(e.id, graphName, e.currentID(), e.status.String()).
		WithPrevNode(prevID).
		WithVisits(e.visits)
}

// drive is the trampoline: it visits first (or advances from the current
// node when first is nil), then keeps performing whatever advance or jump
// was requested during each visit. The caller has set e.driving.
func (e *Engine) drive(first *Node) error {
	target := first
	steps := 0

	for {
		if target == nil {
			target = e.resolveNext()
		}
		if target != nil {
			steps++
			if steps > e.cfg.maxSteps {
				return e.stopRunaway(target)
			}
			e.visit(target)
			target = nil
		}

		e.mu.Lock()
		switch {
		case e.status != StatusRunning:
			e.driving, e.advance, e.jump = false, false, nil
			e.mu.Unlock()
			return nil
		case e.jump != nil:
			target = e.jump
			e.jump, e.advance = nil, false
			e.mu.Unlock()
		case e.advance:
			e.advance = false
			e.mu.Unlock()
		default:
			e.driving = false
			e.mu.Unlock()
			return nil
		}
	}
}

// stopRunaway parks the engine after too many steps in one drive.
func (e *Engine) stopRunaway(next *Node) error {
	e.mu.Lock()
	e.driving, e.advance, e.jump = false, false, nil
	nodeID := e.currentID()
	logger := e.logger
	e.mu.Unlock()

	err := &MaxStepsError{Max: e.cfg.maxSteps, NodeID: nodeID}
	logger.Error("drive stopped", slog.String("next", next.ID), slog.String("error", err.Error()))
	return err
}

// resolveNext asks the current node's kind where to go.
func (e *Engine) resolveNext() *Node {
	e.mu.Lock()
	if e.status != StatusRunning || e.current == nil {
		e.mu.Unlock()
		return nil
	}
	n := e.current
	g := e.graph
	ctx := e.nodeContext(e.spanCtx, n)
	e.mu.Unlock()

	next := n.Kind.Next
	if next == nil {
		next = FollowOutput
	}

	var target *Node
	err := e.call(n, "next", func() error {
		target = next(ctx, n)
		return nil
	})
	if err != nil {
		observability.LogNodeError(ctx.logger, n.ID, err)
		return nil
	}
	if target != nil && !g.Contains(target) {
		observability.LogNodeError(ctx.logger, n.ID, &DanglingCursorError{NodeID: target.ID, Graph: g.Name()})
		return nil
	}
	return target
}

// visit makes n current and runs Handle then PostHandle.
func (e *Engine) visit(n *Node) {
	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.prev, e.current = e.current, n
	e.visits++
	visits := e.visits
	var prevID string
	if e.prev != nil {
		prevID = e.prev.ID
	}
	g := e.graph
	spanCtx, span := e.cfg.spans.StartNodeSpan(e.spanCtx, n.ID, n.Kind.Name)
	ctx := e.nodeContext(spanCtx, n)
	e.mu.Unlock()

	e.saveCheckpoint(g.Name(), n.ID, prevID, visits, StatusRunning)
	observability.LogNodeEnter(ctx.logger, n.ID, n.Kind.Name)
	e.publish(event.TypeNodeEntered, event.NodeEntered{Graph: g.Name(), NodeID: n.ID, Kind: n.Kind.Name, From: prevID})

	start := time.Now()
	handleErr := e.call(n, "handle", func() error { return n.Kind.Handle(ctx, n) })
	if handleErr != nil {
		observability.LogNodeError(ctx.logger, n.ID, handleErr)
	}
	e.cfg.metrics.RecordNodeVisit(spanCtx, g.Name(), n.Kind.Name, time.Since(start), handleErr)

	post := n.Kind.PostHandle
	if post == nil {
		post = AutoContinue
	}
	postErr := e.call(n, "post_handle", func() error { return post(ctx, n) })
	if postErr != nil {
		observability.LogNodeError(ctx.logger, n.ID, postErr)
	}

	e.cfg.spans.EndSpanWithError(span, errors.Join(handleErr, postErr))
}

// call runs a node callback, converting errors to *NodeError and panics
// to *PanicError.
func (e *Engine) call(n *Node, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{NodeID: n.ID, Op: op, Value: r, Stack: string(debug.Stack())}
		}
	}()
	if err := fn(); err != nil {
		return &NodeError{NodeID: n.ID, Op: op, Err: err}
	}
	return nil
}

// nodeContext builds the Context for a callback. Caller holds e.mu.
func (e *Engine) nodeContext(ctx context.Context, n *Node) *nodeContext {
	return &nodeContext{
		Context: ctx,
		engine:  e,
		node:    n,
		graph:   e.graph,
		logger:  observability.NodeLogger(e.logger, n.ID, n.Kind.Name),
	}
}

// reportConditionError logs and counts a malformed condition.
func (e *Engine) reportConditionError(ctx context.Context, nodeID string, err error) {
	e.mu.Lock()
	logger := e.logger
	var graphName string
	if e.graph != nil {
		graphName = e.graph.Name()
	}
	e.mu.Unlock()

	observability.LogConditionError(logger, nodeID, err)
	e.cfg.metrics.RecordConditionError(ctx, graphName)
}

// publish sends a lifecycle event when an event bus is configured.
func (e *Engine) publish(typ string, payload any) {
	if e.cfg.bus == nil {
		return
	}
	e.mu.Lock()
	runID := e.runID
	logger := e.logger
	e.mu.Unlock()

	evt := event.New(typ, e.id, payload, event.WithCorrelationID(runID))
	if err := e.cfg.bus.Publish(context.Background(), evt); err != nil {
		logger.Debug("publish event failed", slog.String("type", typ), slog.String("error", err.Error()))
	}
}

// saveCheckpoint persists the cursor when a checkpoint store is configured.
func (e *Engine) saveCheckpoint(graphName, nodeID, prevID string, visits int, status Status) {
	if e.cfg.checkpoints == nil {
		return
	}
	cp := checkpoint.New(e.id, graphName, nodeID, status.String()).
		WithPrevNode(prevID).
		WithVisits(visits)
	if _, err := checkpoint.Save(e.cfg.checkpoints, cp); err != nil {
		e.mu.Lock()
		logger := e.logger
		e.mu.Unlock()
		observability.LogCheckpointError(logger, "save", err)
	}
}
