package behaviorgraph

// Direction says whether a port receives or emits control flow.
type Direction int

const (
	Input Direction = iota
	Output
)

// String returns "input" or "output".
func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Multiplicity bounds how many edges may attach to a port.
type Multiplicity int

const (
	// Single allows at most one edge.
	Single Multiplicity = iota
	// Multiple allows any number of edges.
	Multiple
)

// String returns "single" or "multiple".
func (m Multiplicity) String() string {
	if m == Multiple {
		return "multiple"
	}
	return "single"
}

// Well-known port names used by the built-in kinds.
const (
	PortInput   = "Input"
	PortOutput  = "Output"
	PortPass    = "Pass"
	PortFail    = "Fail"
	PortDefault = "Default"
)

// Port is a named connection point on a node.
//
// Static ports come from the node's Kind. Dynamic ports are declared on
// the node instance while authoring (see WithCase and WithPort) and are
// frozen by Compile.
type Port struct {
	Name         string
	Direction    Direction
	Multiplicity Multiplicity
	Dynamic      bool
}

// In returns an input port. Inputs accept fan-in by default.
func In(name string) Port {
	return Port{Name: name, Direction: Input, Multiplicity: Multiple}
}

// Out returns a single-edge output port.
func Out(name string) Port {
	return Port{Name: name, Direction: Output, Multiplicity: Single}
}

// WithMultiplicity returns a copy of p with multiplicity m.
func (p Port) WithMultiplicity(m Multiplicity) Port {
	p.Multiplicity = m
	return p
}
