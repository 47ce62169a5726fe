package behaviorgraph

import "fmt"

// Endpoint identifies one port on one node.
type Endpoint struct {
	Node string
	Port string
}

// String formats the endpoint as node.port.
func (e Endpoint) String() string {
	return e.Node + "." + e.Port
}

// Edge is a directed link from an output port to an input port.
type Edge struct {
	From Endpoint
	To   Endpoint
}

// String formats the edge as from.port -> to.port.
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}
