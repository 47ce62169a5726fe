package behaviorgraph

import (
	"fmt"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/config"
)

// Node is one authored step of a behavior graph.
//
// Behavior lives on the Kind; the node carries the authored data the
// kind's callbacks read. Nodes are built with NewNode, added to a Graph,
// and copied by Compile. The copies in a CompiledGraph must not be
// modified.
type Node struct {
	ID     string
	Kind   *Kind
	Params config.Config

	// Conditions drive Branch-style kinds.
	Conditions ConditionList

	// Cases drive Switch-style kinds. Each case owns a dynamic output port.
	Cases []Case

	// Interrupts are polled while this node is current.
	Interrupts []Interrupt

	extraPorts []Port
	ports      []Port
}

// Case binds a condition to a dynamic output port.
type Case struct {
	Port string
	When Condition
}

// NodeOption configures a node at construction.
type NodeOption func(*Node)

// NewNode creates a node of the given kind.
//
// Panics if id is empty or kind is nil.
func NewNode(id string, kind *Kind, opts ...NodeOption) *Node {
	if id == "" {
		panic("behaviorgraph: node ID cannot be empty")
	}
	if kind == nil {
		panic(fmt.Sprintf("behaviorgraph: node %s: kind cannot be nil", id))
	}
	n := &Node{ID: id, Kind: kind}
	for _, opt := range opts {
		opt(n)
	}
	n.ports = n.buildPorts()
	return n
}

// WithParams sets the node's parameters.
func WithParams(params map[string]any) NodeOption {
	return func(n *Node) {
		n.Params = n.Params.Merge(config.New(params))
	}
}

// WithParam sets a single parameter.
func WithParam(key string, value any) NodeOption {
	return func(n *Node) {
		n.Params = n.Params.With(key, value)
	}
}

// WithConditions sets the node's condition list.
func WithConditions(list ConditionList) NodeOption {
	return func(n *Node) {
		n.Conditions = list
	}
}

// WithCase adds a case and its dynamic output port.
func WithCase(port string, when Condition) NodeOption {
	return func(n *Node) {
		n.Cases = append(n.Cases, Case{Port: port, When: when})
	}
}

// WithInterrupt attaches an interrupt that is active while the node is current.
func WithInterrupt(in Interrupt) NodeOption {
	return func(n *Node) {
		n.Interrupts = append(n.Interrupts, in)
	}
}

// WithPort declares an extra dynamic port on this node instance.
func WithPort(p Port) NodeOption {
	return func(n *Node) {
		p.Dynamic = true
		n.extraPorts = append(n.extraPorts, p)
	}
}

func (n *Node) buildPorts() []Port {
	ports := make([]Port, 0, len(n.Kind.Ports)+len(n.Cases)+len(n.extraPorts))
	ports = append(ports, n.Kind.Ports...)
	for _, c := range n.Cases {
		ports = append(ports, Port{Name: c.Port, Direction: Output, Multiplicity: Single, Dynamic: true})
	}
	ports = append(ports, n.extraPorts...)
	return ports
}

// Ports returns the node's static and dynamic ports.
func (n *Node) Ports() []Port {
	out := make([]Port, len(n.ports))
	copy(out, n.ports)
	return out
}

// Port returns the named port in either direction.
func (n *Node) Port(name string) (Port, bool) {
	for _, p := range n.ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// OutputPort returns the named output port.
// A missing port is an authoring error; analysis reports it, the engine
// simply finds no edge.
func (n *Node) OutputPort(name string) (Port, bool) {
	p, ok := n.Port(name)
	if !ok || p.Direction != Output {
		return Port{}, false
	}
	return p, true
}

// InputPort returns the named input port.
func (n *Node) InputPort(name string) (Port, bool) {
	p, ok := n.Port(name)
	if !ok || p.Direction != Input {
		return Port{}, false
	}
	return p, true
}

// Outputs returns the node's output ports in declaration order.
func (n *Node) Outputs() []Port {
	var out []Port
	for _, p := range n.ports {
		if p.Direction == Output {
			out = append(out, p)
		}
	}
	return out
}

// Variables implements VariableUser over the node's conditions, cases,
// interrupts and parameters. String parameters are scanned by the kind's
// Variables hook when it has one.
func (n *Node) Variables() []string {
	conds := []Condition{n.Conditions}
	for _, c := range n.Cases {
		conds = append(conds, c.When)
	}
	for _, in := range n.Interrupts {
		conds = append(conds, in.When)
	}
	seen := make(map[string]struct{})
	for _, v := range collectVariables(conds...) {
		seen[v] = struct{}{}
	}
	if n.Kind.Variables != nil {
		for _, v := range n.Kind.Variables(n) {
			seen[v] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// clone copies the node for a compiled graph.
func (n *Node) clone() *Node {
	c := *n
	c.Conditions.Conditions = append([]Condition(nil), n.Conditions.Conditions...)
	c.Cases = append([]Case(nil), n.Cases...)
	c.Interrupts = append([]Interrupt(nil), n.Interrupts...)
	c.extraPorts = append([]Port(nil), n.extraPorts...)
	c.ports = append([]Port(nil), n.ports...)
	return &c
}

// String returns id(kind).
func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.ID, n.Kind.Name)
}
