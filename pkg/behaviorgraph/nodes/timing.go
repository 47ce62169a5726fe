package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/signal"
)

// DelayKind suspends the engine for a span of ticked time, then
// continues along Output.
//
// Params: duration (required; "1.5s" or a number of seconds). A
// non-positive duration continues immediately.
var DelayKind = &behaviorgraph.Kind{
	Name:  "delay",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		d := n.Params.Duration(ParamDuration, 0)
		if d <= 0 {
			return nil
		}
		return lockWith(ctx, behaviorgraph.After(d))
	},
}

// Delay creates a delay node.
func Delay(id string, d time.Duration) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, DelayKind, behaviorgraph.WithParam(ParamDuration, d))
}

// WaitSignalKind suspends the engine until a signal with the given name
// arrives for this engine, then continues along Output.
//
// Params: signal (required), store_as (optional variable that receives
// the signal's payload), retries (optional; failed reads of the signal
// store tolerated before the wait is abandoned and the node continues).
// Without retries a failing store is polled every tick.
var WaitSignalKind = &behaviorgraph.Kind{
	Name:  "wait_signal",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		name, err := requireString(n, ParamSignal)
		if err != nil {
			return err
		}
		job := waitForSignal(ctx, name, n.Params.String(ParamStoreAs, ""))
		if retries := n.Params.Int(ParamRetries, 0); retries > 0 {
			policy := behaviorgraph.DefaultRetry
			policy.MaxAttempts = retries
			job = behaviorgraph.WithRetry(job, policy)
		}
		return lockWith(ctx, job)
	},
	Variables: func(n *behaviorgraph.Node) []string {
		if key := n.Params.String(ParamStoreAs, ""); key != "" {
			return []string{key}
		}
		return nil
	},
}

// WaitSignal creates a node that waits for the named signal.
func WaitSignal(id, name string, opts ...behaviorgraph.NodeOption) *behaviorgraph.Node {
	opts = append([]behaviorgraph.NodeOption{behaviorgraph.WithParam(ParamSignal, name)}, opts...)
	return behaviorgraph.NewNode(id, WaitSignalKind, opts...)
}

// StoreAs saves a WaitSignal node's payload into the variable key.
func StoreAs(key string) behaviorgraph.NodeOption {
	return behaviorgraph.WithParam(ParamStoreAs, key)
}

// Retries abandons a WaitSignal node after n failed signal-store reads.
func Retries(n int) behaviorgraph.NodeOption {
	return behaviorgraph.WithParam(ParamRetries, n)
}

func waitForSignal(ctx behaviorgraph.Context, name, storeAs string) behaviorgraph.Job {
	signals := ctx.Signals()
	store := ctx.Vars()
	engineID := ctx.EngineID()
	logger := ctx.Logger()

	return behaviorgraph.JobFunc(func(jobCtx context.Context, _ time.Duration) (bool, error) {
		sig, err := signal.Take(jobCtx, signals, engineID, name)
		if err != nil || sig == nil {
			return false, err
		}
		// The signal is consumed either way, so a failed write must not
		// keep the engine waiting.
		if storeAs != "" {
			if err := store.Put(storeAs, sig.Payload); err != nil {
				logger.Warn("store signal payload failed",
					slog.String("signal", name),
					slog.String("error", err.Error()))
			}
		}
		return true, nil
	})
}

// lockWith suspends the engine and binds job to the suspension. If the
// engine cannot be locked the node simply continues; if the job cannot
// start the lock is released again.
func lockWith(ctx behaviorgraph.Context, job behaviorgraph.Job) error {
	e := ctx.Engine()
	if !e.LockNode() {
		return nil
	}
	if _, err := e.StartThread(job); err != nil {
		_ = e.UnlockNode()
		return fmt.Errorf("start thread: %w", err)
	}
	return nil
}
