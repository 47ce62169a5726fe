package behaviorgraph

// CompiledGraph is an immutable, validated graph.
// It is safe to share between any number of engines.
type CompiledGraph struct {
	name       string
	nodes      map[string]*Node
	order      []string
	edges      []Edge
	entry      string
	interrupts []Interrupt

	targets map[Endpoint][]Endpoint // output endpoint -> input endpoints, authoring order
	sources map[Endpoint][]Endpoint // input endpoint -> output endpoints
}

// Name returns the graph name.
func (cg *CompiledGraph) Name() string { return cg.name }

// EntryID returns the configured entry node ID, possibly empty.
func (cg *CompiledGraph) EntryID() string { return cg.entry }

// Entry returns the entry node, or nil if it is unset or unknown.
func (cg *CompiledGraph) Entry() *Node { return cg.nodes[cg.entry] }

// Node returns the node with the given ID, or nil.
func (cg *CompiledGraph) Node(id string) *Node { return cg.nodes[id] }

// Contains reports whether n is one of this graph's nodes. A node with
// the same ID from another graph, or from the builder, does not count.
func (cg *CompiledGraph) Contains(n *Node) bool {
	return n != nil && cg.nodes[n.ID] == n
}

// Nodes returns the nodes in the order they were added.
func (cg *CompiledGraph) Nodes() []*Node {
	out := make([]*Node, len(cg.order))
	for i, id := range cg.order {
		out[i] = cg.nodes[id]
	}
	return out
}

// NodeCount returns the number of nodes.
func (cg *CompiledGraph) NodeCount() int { return len(cg.nodes) }

// Edges returns a copy of the edges in authoring order.
func (cg *CompiledGraph) Edges() []Edge {
	return append([]Edge(nil), cg.edges...)
}

// Interrupts returns the graph-wide interrupts.
func (cg *CompiledGraph) Interrupts() []Interrupt {
	return append([]Interrupt(nil), cg.interrupts...)
}

// Targets returns the input endpoints wired to an output port.
func (cg *CompiledGraph) Targets(nodeID, port string) []Endpoint {
	return append([]Endpoint(nil), cg.targets[Endpoint{Node: nodeID, Port: port}]...)
}

// Sources returns the output endpoints wired to an input port.
func (cg *CompiledGraph) Sources(nodeID, port string) []Endpoint {
	return append([]Endpoint(nil), cg.sources[Endpoint{Node: nodeID, Port: port}]...)
}

// Connected reports whether a port has at least one edge.
func (cg *CompiledGraph) Connected(nodeID, port string) bool {
	ep := Endpoint{Node: nodeID, Port: port}
	return len(cg.targets[ep]) > 0 || len(cg.sources[ep]) > 0
}

// Follow returns the node wired to n's output port, or nil when the port
// is missing or unconnected. A Multiple output resolves to its first edge
// in authoring order.
func (cg *CompiledGraph) Follow(n *Node, port string) *Node {
	if n == nil {
		return nil
	}
	targets := cg.targets[Endpoint{Node: n.ID, Port: port}]
	if len(targets) == 0 {
		return nil
	}
	return cg.nodes[targets[0].Node]
}

// Successors returns the distinct nodes reachable in one step from n,
// over every output port.
func (cg *CompiledGraph) Successors(n *Node) []*Node {
	var out []*Node
	seen := make(map[string]bool)
	for _, p := range n.Outputs() {
		for _, t := range cg.targets[Endpoint{Node: n.ID, Port: p.Name}] {
			if !seen[t.Node] {
				seen[t.Node] = true
				out = append(out, cg.nodes[t.Node])
			}
		}
	}
	return out
}
