package behaviorgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/event"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/observability"
)

// Job is the work a thread performs while its node holds the lock.
//
// Step is called once per Tick with the time elapsed since the previous
// Tick. It reports done when the wait is over; the engine then unlocks
// and advances. An error is logged and the job is stepped again on the
// next Tick, unless it wraps ErrJobAbandoned, in which case the job
// counts as finished. The context is cancelled when the thread is
// cancelled.
type Job interface {
	Step(ctx context.Context, dt time.Duration) (done bool, err error)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context, dt time.Duration) (bool, error)

// Step implements Job.
func (f JobFunc) Step(ctx context.Context, dt time.Duration) (bool, error) {
	return f(ctx, dt)
}

// After returns a job that finishes once d of ticked time has elapsed.
func After(d time.Duration) Job {
	var elapsed time.Duration
	return JobFunc(func(_ context.Context, dt time.Duration) (bool, error) {
		elapsed += dt
		return elapsed >= d, nil
	})
}

// threadToken identifies the lock a thread was started under.
type threadToken struct {
	generation uint64
	lockSeq    uint64
}

// Thread is a deferred job bound to one suspension. When the job
// finishes the engine is unlocked, but only if the engine is still
// suspended under the same lock. A thread outlived by its lock does
// nothing.
type Thread struct {
	job    Job
	nodeID string
	token  threadToken
	ctx    context.Context
	stop   context.CancelFunc

	mu        sync.Mutex
	done      bool
	cancelled bool
}

// NodeID returns the node that started the thread.
func (t *Thread) NodeID() string { return t.nodeID }

// Cancel stops the thread. Its job is not stepped again and its
// completion no longer unlocks the engine. The lock stays held.
func (t *Thread) Cancel() {
	t.cancel()
}

// Done reports whether the job finished.
func (t *Thread) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Cancelled reports whether the thread was cancelled before finishing.
func (t *Thread) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

func (t *Thread) cancel() {
	t.mu.Lock()
	if !t.done {
		t.cancelled = true
	}
	t.mu.Unlock()
	t.stop()
}

// live reports whether the thread may still be stepped.
func (t *Thread) live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.done && !t.cancelled
}

func (t *Thread) finish() {
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
}

// StartThread binds job to the current suspension. The job is stepped by
// Tick; when it finishes the engine unlocks.
//
// Fails with ErrNotSuspended unless a node holds the lock, and with
// ErrThreadPending if a thread is already outstanding for it.
func (e *Engine) StartThread(job Job) (*Thread, error) {
	if job == nil {
		return nil, ErrNilJob
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusSuspended {
		return nil, ErrNotSuspended
	}
	if e.thread != nil && e.thread.live() {
		return nil, ErrThreadPending
	}

	ctx, stop := context.WithCancel(e.runCtx)
	t := &Thread{
		job:    job,
		nodeID: e.currentID(),
		token:  threadToken{generation: e.generation, lockSeq: e.lockSeq},
		ctx:    ctx,
		stop:   stop,
	}
	e.thread = t
	return t, nil
}

// Tick advances time by dt: the outstanding thread is stepped, then
// interrupts are polled. A tick whose thread finished and resumed the
// engine skips the poll, so the cursor moves at most once per tick.
// Ticking an idle or ended engine does nothing.
//
// The returned error is non-nil only when a drive started by the tick
// was stopped as runaway.
func (e *Engine) Tick(dt time.Duration) error {
	e.mu.Lock()
	if e.status == StatusIdle || e.status == StatusEnded {
		e.mu.Unlock()
		return nil
	}
	t := e.thread
	e.mu.Unlock()

	if t != nil {
		if resumed, err := e.stepThread(t, dt); resumed {
			return err
		}
	}
	return e.pollInterrupts()
}

// stepThread steps t once. resumed reports that the job finished and the
// engine was handed back to its drive loop.
func (e *Engine) stepThread(t *Thread, dt time.Duration) (resumed bool, err error) {
	if !t.live() {
		return false, nil
	}

	done, err := stepJob(t, dt)
	if err != nil {
		e.mu.Lock()
		logger := e.logger
		e.mu.Unlock()
		observability.LogJobError(logger, t.nodeID, err)
		if !errors.Is(err, ErrJobAbandoned) {
			return false, nil
		}
		done = true
	}
	if !done {
		return false, nil
	}

	t.finish()
	tok := t.token
	return true, e.resume(&tok)
}

func stepJob(t *Thread, dt time.Duration) (done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{NodeID: t.nodeID, Op: "thread", Value: r, Stack: string(debug.Stack())}
		}
	}()
	return t.job.Step(t.ctx, dt)
}

// pollInterrupts evaluates the current node's interrupts, then the
// graph's, and fires the first one met. Interrupts are not polled while
// a drive is in progress or once a jump is latched.
func (e *Engine) pollInterrupts() error {
	e.mu.Lock()
	if e.driving || e.latched != nil || e.graph == nil ||
		(e.status != StatusRunning && e.status != StatusSuspended) {
		e.mu.Unlock()
		return nil
	}
	g := e.graph
	current := e.current
	generation := e.generation
	spanCtx := e.spanCtx
	logger := e.logger
	var candidates []keyedInterrupt
	if current != nil {
		for i, in := range current.Interrupts {
			candidates = append(candidates, keyedInterrupt{in, fmt.Sprintf("node:%s:%d", current.ID, i)})
		}
	}
	for i, in := range g.Interrupts() {
		candidates = append(candidates, keyedInterrupt{in, fmt.Sprintf("graph:%d", i)})
	}
	e.mu.Unlock()

	var fromID string
	if current != nil {
		fromID = current.ID
	}

	for _, c := range candidates {
		if c.Once && e.hasFired(c.key) {
			continue
		}
		target := g.Node(c.Target)
		if target == nil {
			if !e.hasFired("dangling:" + c.key) {
				e.markFired("dangling:" + c.key)
				logger.Warn("interrupt target not in graph",
					slog.String("interrupt", c.Name),
					slog.String("target", c.Target))
			}
			continue
		}
		if target == current {
			continue
		}

		met, err := Evaluate(c.When, e.vars)
		if err != nil {
			e.reportConditionError(spanCtx, fromID, err)
			continue
		}
		if !met {
			continue
		}
		return e.fire(c, target, current, generation)
	}
	return nil
}

type keyedInterrupt struct {
	Interrupt
	key string
}

// fire jumps to target, or latches the jump while the engine is
// suspended. Nothing happens if the engine moved since the interrupt was
// evaluated.
func (e *Engine) fire(c keyedInterrupt, target, from *Node, generation uint64) error {
	e.mu.Lock()
	if e.generation != generation || e.current != from || e.driving || e.latched != nil {
		e.mu.Unlock()
		return nil
	}

	var latched bool
	switch e.status {
	case StatusRunning:
		e.driving = true
	case StatusSuspended:
		e.latched = &latchedJump{interrupt: c.Interrupt, target: target}
		latched = true
	default:
		e.mu.Unlock()
		return nil
	}
	if c.Once {
		e.fired[c.key] = true
	}
	graphName := e.graph.Name()
	spanCtx := e.spanCtx
	logger := e.logger
	e.mu.Unlock()

	var fromID string
	if from != nil {
		fromID = from.ID
	}
	observability.LogInterrupt(logger, c.Name, fromID, target.ID, latched)
	e.cfg.metrics.RecordInterrupt(spanCtx, graphName, c.Name)
	e.cfg.spans.AddSpanEvent(spanCtx, event.TypeInterruptFired,
		attribute.String("interrupt", c.Name),
		attribute.String("target", target.ID))
	e.publish(event.TypeInterruptFired, event.InterruptFired{
		Name:    c.Name,
		From:    fromID,
		Target:  target.ID,
		Latched: latched,
	})

	if latched {
		return nil
	}
	return e.drive(target)
}

func (e *Engine) hasFired(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fired[key]
}

func (e *Engine) markFired(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fired != nil {
		e.fired[key] = true
	}
}
