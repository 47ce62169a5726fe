package behaviorgraph

// Interrupt is a condition that carries its own jump target.
//
// Interrupts attached to a node are active while that node is current;
// interrupts added to the graph are always active. The engine polls them
// on every Tick. When one is met while the engine is running it jumps to
// Target and visits it. While the engine is suspended the first met
// interrupt is latched and applied when the engine is unlocked, in place
// of the usual advance.
type Interrupt struct {
	// Name identifies the interrupt in logs, metrics and events.
	Name string

	When Condition

	// Target is the ID of the node to jump to.
	Target string

	// Once limits the interrupt to firing a single time per traversal.
	Once bool
}

// Variables implements VariableUser.
func (i Interrupt) Variables() []string {
	return collectVariables(i.When)
}
