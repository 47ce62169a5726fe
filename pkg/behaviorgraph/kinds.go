package behaviorgraph

import (
	"errors"
	"sort"
)

// HandleFunc performs a node's side effect. It runs exactly once per visit.
type HandleFunc func(ctx Context, n *Node) error

// PostHandleFunc runs after Handle. The default continues the engine.
type PostHandleFunc func(ctx Context, n *Node) error

// NextFunc resolves the node to advance to. Returning nil parks the engine
// on the current node until something external moves it.
type NextFunc func(ctx Context, n *Node) *Node

// Kind is the behavior shared by every node of one type.
//
// Adding a node kind means declaring a Kind value; there is no type
// hierarchy. Handle is required. A nil PostHandle auto-continues and a nil
// Next follows the Output port.
type Kind struct {
	Name  string
	Ports []Port

	Handle     HandleFunc
	PostHandle PostHandleFunc
	Next       NextFunc

	// Variables reports variables read by a node's parameters, for
	// offline analysis. Optional.
	Variables func(n *Node) []string
}

// AutoContinue is the default PostHandle: it asks the engine to advance.
// A node that locked the engine in Handle stays where it is.
func AutoContinue(ctx Context, _ *Node) error {
	if err := ctx.Engine().Continue(); err != nil && !errors.Is(err, ErrSuspended) {
		return err
	}
	return nil
}

// NoAutoContinue leaves the engine parked after Handle. Kinds that wait
// for the player, a timer or a signal use it.
func NoAutoContinue(Context, *Node) error {
	return nil
}

// FollowOutput is the default Next: the node wired to the Output port.
func FollowOutput(ctx Context, _ *Node) *Node {
	return ctx.Follow(PortOutput)
}

func noop(Context, *Node) error { return nil }

// StartKind marks an entry point. It does nothing and continues.
var StartKind = &Kind{
	Name:   "start",
	Ports:  []Port{Out(PortOutput)},
	Handle: noop,
}

// EndKind ends the traversal when visited.
var EndKind = &Kind{
	Name:  "end",
	Ports: []Port{In(PortInput)},
	Handle: func(ctx Context, _ *Node) error {
		ctx.Engine().EndGraph()
		return nil
	},
	PostHandle: NoAutoContinue,
}

// RelayKind passes straight through. Useful as a join point for several
// incoming edges.
var RelayKind = &Kind{
	Name:   "relay",
	Ports:  []Port{In(PortInput), Out(PortOutput)},
	Handle: noop,
}

// BranchKind evaluates the node's Conditions and follows Pass or Fail.
var BranchKind = &Kind{
	Name:   "branch",
	Ports:  []Port{In(PortInput), Out(PortPass), Out(PortFail)},
	Handle: noop,
	Next: func(ctx Context, n *Node) *Node {
		if ctx.Evaluate(n.Conditions) {
			return ctx.Follow(PortPass)
		}
		return ctx.Follow(PortFail)
	},
}

// SwitchKind follows the port of the first case whose condition is met,
// or Default when none is.
var SwitchKind = &Kind{
	Name:   "switch",
	Ports:  []Port{In(PortInput), Out(PortDefault)},
	Handle: noop,
	Next: func(ctx Context, n *Node) *Node {
		for _, c := range n.Cases {
			if ctx.Evaluate(c.When) {
				return ctx.Follow(c.Port)
			}
		}
		return ctx.Follow(PortDefault)
	},
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
