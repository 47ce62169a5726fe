package behaviorgraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for behavior graphs.
//
// Graph is NOT thread-safe during building. Build it from one goroutine,
// then call Compile to get an immutable CompiledGraph that any number of
// engines can share.
//
//	g := behaviorgraph.NewGraph("guard_dialog").
//	    AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind)).
//	    AddNode(nodes.Text("hello", "Halt! Who goes there?", false)).
//	    AddNode(behaviorgraph.NewNode("end", behaviorgraph.EndKind)).
//	    Link("start", "hello").
//	    Link("hello", "end").
//	    SetEntry("start")
//
//	compiled, err := g.Compile()
type Graph struct {
	mu         sync.RWMutex
	name       string
	nodes      map[string]*Node
	order      []string
	edges      []Edge
	entry      string
	interrupts []Interrupt
}

// NewGraph creates an empty graph builder.
func NewGraph(name string) *Graph {
	return &Graph{
		name:  name,
		nodes: make(map[string]*Node),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// AddNode adds a node. Returns the graph for chaining.
//
// Panics if:
//   - n is nil
//   - n.ID contains whitespace
//   - a node with the same ID already exists
func (g *Graph) AddNode(n *Node) *Graph {
	if n == nil {
		panic("behaviorgraph: node cannot be nil")
	}
	if strings.ContainsAny(n.ID, " \t\n\r") {
		panic("behaviorgraph: node ID cannot contain whitespace")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[n.ID]; exists {
		panic(fmt.Sprintf("behaviorgraph: duplicate node ID: %s", n.ID))
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return g
}

// Connect adds an edge from an output port to an input port.
// Validation happens at Compile time, so nodes may be added in any order.
func (g *Graph) Connect(from, fromPort, to, toPort string) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges = append(g.edges, Edge{
		From: Endpoint{Node: from, Port: fromPort},
		To:   Endpoint{Node: to, Port: toPort},
	})
	return g
}

// Link connects from's Output port to to's Input port.
func (g *Graph) Link(from, to string) *Graph {
	return g.Connect(from, PortOutput, to, PortInput)
}

// SetEntry designates the entry node.
//
// A missing or unknown entry is not a compile error: the engine logs a
// warning and ends when started, and analysis.Validate reports it.
func (g *Graph) SetEntry(id string) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entry = id
	return g
}

// AddInterrupt adds a graph-wide interrupt, active whichever node is current.
func (g *Graph) AddInterrupt(in Interrupt) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.interrupts = append(g.interrupts, in)
	return g
}
