// Package analysis inspects compiled behavior graphs without running them.
//
// Compile only rejects graphs the engine cannot load. The checks here
// cover the softer authoring mistakes an editor should surface: switch
// cases left unwired, nodes nothing leads to, interrupts that point
// nowhere. Every function is a read-only walk and is safe to call on a
// graph that engines are traversing.
package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
)

// Sentinel errors wrapped in the *behaviorgraph.AuthoringError values
// reported by this package.
var (
	// ErrNoOutputs indicates a node with output ports none of which is
	// connected, so a traversal parks there for good. Kinds without output
	// ports, such as end, are exempt.
	ErrNoOutputs = errors.New("no output port connected")

	// ErrUnconnectedPort indicates a dynamic output port with no edge.
	ErrUnconnectedPort = errors.New("dynamic port not connected")

	// ErrUnreachable indicates a node that no edge or interrupt leads to.
	ErrUnreachable = errors.New("node unreachable from entry")

	// ErrDanglingTarget indicates an interrupt whose target is not in the graph.
	ErrDanglingTarget = errors.New("interrupt target not found")
)

// CheckNode returns the completeness problems of one node: every dynamic
// output port must be connected, and a node with output ports must have
// at least one of them connected.
func CheckNode(g *behaviorgraph.CompiledGraph, n *behaviorgraph.Node) []error {
	if g == nil || n == nil {
		return nil
	}
	var errs []error
	outputs := n.Outputs()
	connected := 0
	for _, p := range outputs {
		if g.Connected(n.ID, p.Name) {
			connected++
			continue
		}
		if p.Dynamic {
			errs = append(errs, &behaviorgraph.AuthoringError{NodeID: n.ID, Port: p.Name, Err: ErrUnconnectedPort})
		}
	}
	if len(outputs) > 0 && connected == 0 {
		errs = append(errs, &behaviorgraph.AuthoringError{NodeID: n.ID, Err: ErrNoOutputs})
	}
	return errs
}

// Complete reports whether n has no completeness problems.
func Complete(g *behaviorgraph.CompiledGraph, n *behaviorgraph.Node) bool {
	return len(CheckNode(g, n)) == 0
}

// DanglingInterrupt is an interrupt whose target is not a node of the graph.
type DanglingInterrupt struct {
	// NodeID is the owning node, or empty for a graph-level interrupt.
	NodeID    string
	Interrupt string
	Target    string
}

// Report is the result of Validate.
type Report struct {
	Graph string

	// MissingEntry is set when the entry is unset or names no node.
	MissingEntry bool

	// Incomplete maps node IDs to their completeness problems.
	Incomplete map[string][]error

	// Unreachable lists node IDs in authoring order.
	Unreachable []string

	Dangling []DanglingInterrupt
}

// OK reports whether the graph has no problems.
func (r Report) OK() bool {
	return !r.MissingEntry && len(r.Incomplete) == 0 && len(r.Unreachable) == 0 && len(r.Dangling) == 0
}

// Err joins every problem into one error, or returns nil when the report
// is clean. Each joined error is a *behaviorgraph.AuthoringError.
func (r Report) Err() error {
	var errs []error
	if r.MissingEntry {
		errs = append(errs, &behaviorgraph.AuthoringError{Err: behaviorgraph.ErrNoEntry})
	}
	ids := make([]string, 0, len(r.Incomplete))
	for id := range r.Incomplete {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		errs = append(errs, r.Incomplete[id]...)
	}
	for _, id := range r.Unreachable {
		errs = append(errs, &behaviorgraph.AuthoringError{NodeID: id, Err: ErrUnreachable})
	}
	for _, d := range r.Dangling {
		errs = append(errs, &behaviorgraph.AuthoringError{
			NodeID: d.NodeID,
			Err:    fmt.Errorf("%w: %s -> %s", ErrDanglingTarget, d.Interrupt, d.Target),
		})
	}
	return errors.Join(errs...)
}

// Warn logs every problem at warn level.
func (r Report) Warn(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("graph", r.Graph))
	if r.MissingEntry {
		logger.Warn("graph has no entry node")
	}
	for id, errs := range r.Incomplete {
		for _, err := range errs {
			logger.Warn("node is incomplete", slog.String("node_id", id), slog.String("error", err.Error()))
		}
	}
	for _, id := range r.Unreachable {
		logger.Warn("node is unreachable from entry", slog.String("node_id", id))
	}
	for _, d := range r.Dangling {
		logger.Warn("interrupt target not found",
			slog.String("node_id", d.NodeID),
			slog.String("interrupt", d.Interrupt),
			slog.String("target", d.Target))
	}
}

// Validate runs every check over g.
func Validate(g *behaviorgraph.CompiledGraph) Report {
	r := Report{Incomplete: make(map[string][]error)}
	if g == nil {
		r.MissingEntry = true
		return r
	}
	r.Graph = g.Name()
	r.MissingEntry = g.Entry() == nil

	for _, n := range g.Nodes() {
		if errs := CheckNode(g, n); len(errs) > 0 {
			r.Incomplete[n.ID] = errs
		}
		for _, in := range n.Interrupts {
			if g.Node(in.Target) == nil {
				r.Dangling = append(r.Dangling, DanglingInterrupt{NodeID: n.ID, Interrupt: in.Name, Target: in.Target})
			}
		}
	}
	for _, in := range g.Interrupts() {
		if g.Node(in.Target) == nil {
			r.Dangling = append(r.Dangling, DanglingInterrupt{Interrupt: in.Name, Target: in.Target})
		}
	}

	reachable := Reachable(g)
	for _, n := range g.Nodes() {
		if !reachable[n.ID] {
			r.Unreachable = append(r.Unreachable, n.ID)
		}
	}
	return r
}

// Reachable returns the IDs of the nodes a traversal can visit: those
// reachable from the entry over edges, plus interrupt targets. Graph
// interrupts can fire from anywhere, so their targets always count; a
// node interrupt's target counts once its owner is reachable.
func Reachable(g *behaviorgraph.CompiledGraph) map[string]bool {
	reachable := make(map[string]bool)
	var queue []*behaviorgraph.Node
	push := func(n *behaviorgraph.Node) {
		if n != nil && !reachable[n.ID] {
			reachable[n.ID] = true
			queue = append(queue, n)
		}
	}

	push(g.Entry())
	for _, in := range g.Interrupts() {
		push(g.Node(in.Target))
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(current) {
			push(next)
		}
		for _, in := range current.Interrupts {
			push(g.Node(in.Target))
		}
	}
	return reachable
}
