package analysis

import (
	"sort"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
)

// Reference locates a read of a variable.
type Reference struct {
	// NodeID is the reading node, or empty for a graph-level interrupt.
	NodeID string

	// Interrupt names the graph-level interrupt that reads the variable.
	// Empty for node references.
	Interrupt string
}

// VariableReferences returns every place in g that reads key: node
// conditions, switch cases, node and graph interrupts, and the
// parameters of kinds that report their variables. Node references come
// first in authoring order, then graph interrupts.
func VariableReferences(g *behaviorgraph.CompiledGraph, key string) []Reference {
	if g == nil {
		return nil
	}
	var refs []Reference
	for _, n := range g.Nodes() {
		if contains(n.Variables(), key) {
			refs = append(refs, Reference{NodeID: n.ID})
		}
	}
	for _, in := range g.Interrupts() {
		if contains(in.Variables(), key) {
			refs = append(refs, Reference{Interrupt: in.Name})
		}
	}
	return refs
}

// Variables returns every variable g reads or writes, sorted.
func Variables(g *behaviorgraph.CompiledGraph) []string {
	if g == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, n := range g.Nodes() {
		for _, v := range n.Variables() {
			seen[v] = struct{}{}
		}
	}
	for _, in := range g.Interrupts() {
		for _, v := range in.Variables() {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
