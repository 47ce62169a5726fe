package behaviorgraph

import (
	"context"
	"fmt"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/checkpoint"
)

// Resume restores an engine from the latest checkpoint in store and
// re-enters the checkpointed node.
//
// The node's Handle runs again, so a wait it set up (a lock, a thread,
// a dialog line) is re-established. Variables are not restored; pass the
// persistent store with WithVars.
//
//	engine, err := behaviorgraph.Resume(ctx, graph, store, "guard-42",
//	    behaviorgraph.WithVars(saveGame))
func Resume(ctx context.Context, g *CompiledGraph, store checkpoint.Store, engineID string, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	cp, err := checkpoint.Latest(store, engineID)
	if err != nil {
		return nil, err
	}
	if cp.Status == StatusEnded.String() {
		return nil, fmt.Errorf("%w: engine %s", ErrEngineEnded, engineID)
	}
	if cp.Graph != g.Name() {
		return nil, fmt.Errorf("%w: checkpoint for %q, got %q", ErrGraphMismatch, cp.Graph, g.Name())
	}
	n := g.Node(cp.NodeID)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResumeNode, cp.NodeID)
	}

	opts = append(opts, WithEngineID(engineID), WithCheckpointStore(store))
	e := NewEngine(opts...)
	if err := e.start(ctx, g, n); err != nil {
		return e, err
	}
	return e, nil
}
