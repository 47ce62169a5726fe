package behaviorgraph

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/collab"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/signal"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// Context is passed to node callbacks.
// It extends context.Context with the engine, the node being visited and
// the services the node may call.
//
// The embedded context is cancelled when the traversal ends, and carries
// the node's trace span when tracing is enabled.
type Context interface {
	context.Context

	// Logger returns a logger enriched with engine_id, graph, node_id and
	// kind. Never returns nil.
	Logger() *slog.Logger

	// Engine returns the engine visiting the node.
	Engine() *Engine

	// Node returns the node being visited.
	Node() *Node

	// Graph returns the graph being traversed.
	Graph() *CompiledGraph

	Vars() vars.Store
	Services() collab.Services
	Signals() signal.Store
	EngineID() string

	// Follow returns the node wired to the current node's output port,
	// or nil when the port is unconnected.
	Follow(port string) *Node

	// Evaluate reports whether c is met against Vars. Malformed
	// conditions are logged, counted and treated as not met.
	Evaluate(c Condition) bool
}

// nodeContext is the internal implementation of Context.
type nodeContext struct {
	context.Context

	engine *Engine
	node   *Node
	graph  *CompiledGraph
	logger *slog.Logger
}

func (c *nodeContext) Logger() *slog.Logger      { return c.logger }
func (c *nodeContext) Engine() *Engine           { return c.engine }
func (c *nodeContext) Node() *Node               { return c.node }
func (c *nodeContext) Graph() *CompiledGraph     { return c.graph }
func (c *nodeContext) Vars() vars.Store          { return c.engine.vars }
func (c *nodeContext) Services() collab.Services { return c.engine.services }
func (c *nodeContext) Signals() signal.Store     { return c.engine.signals }
func (c *nodeContext) EngineID() string          { return c.engine.id }
func (c *nodeContext) Follow(port string) *Node  { return c.graph.Follow(c.node, port) }

func (c *nodeContext) Evaluate(cond Condition) bool {
	met, err := Evaluate(cond, c.engine.vars)
	if err != nil {
		c.engine.reportConditionError(c, c.node.ID, err)
	}
	return met
}

// discardLogger is used when logging is disabled so Context.Logger never
// returns nil.
var discardLogger = slog.New(slog.DiscardHandler)
