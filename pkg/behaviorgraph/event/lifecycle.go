package event

import "time"

// Engine lifecycle event types.
const (
	TypeGraphStarted    = "graph.started"
	TypeNodeEntered     = "node.entered"
	TypeEngineSuspended = "engine.suspended"
	TypeEngineResumed   = "engine.resumed"
	TypeInterruptFired  = "interrupt.fired"
	TypeGraphEnded      = "graph.ended"
)

// LifecycleTypes lists every event type an engine publishes.
var LifecycleTypes = []string{
	TypeGraphStarted,
	TypeNodeEntered,
	TypeEngineSuspended,
	TypeEngineResumed,
	TypeInterruptFired,
	TypeGraphEnded,
}

// GraphStarted is published when StartGraph begins a traversal.
type GraphStarted struct {
	Graph string `json:"graph"`
	Entry string `json:"entry"`
}

// NodeEntered is published each time the engine visits a node.
type NodeEntered struct {
	Graph  string `json:"graph"`
	NodeID string `json:"node_id"`
	Kind   string `json:"kind"`
	From   string `json:"from,omitempty"`
}

// EngineSuspended is published when a node locks the engine.
type EngineSuspended struct {
	NodeID  string `json:"node_id"`
	LockSeq uint64 `json:"lock_seq"`
}

// EngineResumed is published when a locked node is released.
type EngineResumed struct {
	NodeID    string        `json:"node_id"`
	Suspended time.Duration `json:"suspended"`
}

// InterruptFired is published when an interrupt's condition is met.
// Latched is true when the jump was deferred until the engine unlocks.
type InterruptFired struct {
	Name    string `json:"name"`
	From    string `json:"from"`
	Target  string `json:"target"`
	Latched bool   `json:"latched"`
}

// GraphEnded is published once when a traversal stops.
type GraphEnded struct {
	Graph  string `json:"graph"`
	Reason string `json:"reason"`
	Visits int    `json:"visits"`
}
