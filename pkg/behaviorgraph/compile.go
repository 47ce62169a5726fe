package behaviorgraph

import (
	"errors"
	"fmt"
)

// Compile validates the graph's structure and returns an immutable
// CompiledGraph. Every problem found is reported; they are joined with
// errors.Join and each is an *AuthoringError.
//
// Checks:
//  1. Every kind has a Handle
//  2. Port names are unique per node (dynamic ports cannot shadow static ones)
//  3. Cases and interrupts carry a condition
//  4. Edge endpoints exist, leave an output port and enter an input port
//  5. Single-multiplicity ports have at most one edge
//
// Completeness (every dynamic port wired, entry present, reachability,
// interrupt targets) is a design-time concern left to the analysis package.
func (g *Graph) Compile() (*CompiledGraph, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var errs []error
	authoring := func(nodeID, port string, err error) {
		errs = append(errs, &AuthoringError{NodeID: nodeID, Port: port, Err: err})
	}

	for _, id := range g.order {
		n := g.nodes[id]
		if n.Kind.Handle == nil {
			authoring(id, "", fmt.Errorf("%w: kind %s", ErrNoHandler, n.Kind.Name))
		}

		seen := make(map[string]bool, len(n.ports))
		for _, p := range n.ports {
			if seen[p.Name] {
				authoring(id, p.Name, ErrDuplicatePort)
			}
			seen[p.Name] = true
		}

		for _, c := range n.Cases {
			if c.When == nil {
				authoring(id, c.Port, fmt.Errorf("%w: case", ErrNilCondition))
			}
		}
		for _, in := range n.Interrupts {
			if in.When == nil {
				authoring(id, "", fmt.Errorf("%w: interrupt %s", ErrNilCondition, in.Name))
			}
		}
	}

	for _, in := range g.interrupts {
		if in.When == nil {
			authoring("", "", fmt.Errorf("%w: graph interrupt %s", ErrNilCondition, in.Name))
		}
	}

	outCount := make(map[Endpoint]int)
	inCount := make(map[Endpoint]int)
	for _, e := range g.edges {
		ok := true
		if err := g.checkEndpoint(e.From, Output); err != nil {
			authoring(e.From.Node, e.From.Port, fmt.Errorf("edge %s: %w", e, err))
			ok = false
		}
		if err := g.checkEndpoint(e.To, Input); err != nil {
			authoring(e.To.Node, e.To.Port, fmt.Errorf("edge %s: %w", e, err))
			ok = false
		}
		if !ok {
			continue
		}
		outCount[e.From]++
		inCount[e.To]++

		if p, _ := g.nodes[e.From.Node].Port(e.From.Port); p.Multiplicity == Single && outCount[e.From] == 2 {
			authoring(e.From.Node, e.From.Port, fmt.Errorf("%w: output has more than one edge", ErrPortMultiplicity))
		}
		if p, _ := g.nodes[e.To.Node].Port(e.To.Port); p.Multiplicity == Single && inCount[e.To] == 2 {
			authoring(e.To.Node, e.To.Port, fmt.Errorf("%w: input has more than one edge", ErrPortMultiplicity))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g.build(), nil
}

// checkEndpoint verifies that ep names an existing port with direction dir.
func (g *Graph) checkEndpoint(ep Endpoint, dir Direction) error {
	n, ok := g.nodes[ep.Node]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, ep.Node)
	}
	p, ok := n.Port(ep.Port)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPortNotFound, ep)
	}
	if p.Direction != dir {
		return fmt.Errorf("%w: %s is an %s port", ErrPortDirection, ep, p.Direction)
	}
	return nil
}

// build copies the builder state into a CompiledGraph.
func (g *Graph) build() *CompiledGraph {
	cg := &CompiledGraph{
		name:       g.name,
		nodes:      make(map[string]*Node, len(g.nodes)),
		order:      append([]string(nil), g.order...),
		edges:      append([]Edge(nil), g.edges...),
		entry:      g.entry,
		interrupts: append([]Interrupt(nil), g.interrupts...),
		targets:    make(map[Endpoint][]Endpoint),
		sources:    make(map[Endpoint][]Endpoint),
	}
	for id, n := range g.nodes {
		cg.nodes[id] = n.clone()
	}
	for _, e := range g.edges {
		cg.targets[e.From] = append(cg.targets[e.From], e.To)
		cg.sources[e.To] = append(cg.sources[e.To], e.From)
	}
	return cg
}
