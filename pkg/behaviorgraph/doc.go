/*
Package behaviorgraph interprets authored behavior graphs: dialog trees,
boss-fight scripts, quest flows.

# Overview

A graph is a set of nodes wired port to port. Each node has a Kind that
says what visiting it does. An Engine walks one compiled graph with one
cursor: it visits the entry node, runs the node's Handle, and by default
continues along the Output edge. A node may instead park the engine
(a dialog line waiting for the player) or lock it (a timed delay) until
something external moves it on.

# Basic Usage

Build a graph, compile it, and start an engine on it:

	g := behaviorgraph.NewGraph("greeting").
	    AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind)).
	    AddNode(nodes.Text("hello", "Hello, ${player.name}.")).
	    AddNode(behaviorgraph.NewNode("end", behaviorgraph.EndKind)).
	    Link("start", "hello").
	    Link("hello", "end").
	    SetEntry("start")

	compiled, err := g.Compile()
	if err != nil {
	    log.Fatal(err)
	}

	engine := behaviorgraph.NewEngine(
	    behaviorgraph.WithVars(saveGame),
	    behaviorgraph.WithServices(services))
	if err := engine.StartGraph(ctx, compiled); err != nil {
	    log.Fatal(err)
	}

	// Later, when the player dismisses the line:
	engine.Continue()

# Engine States

An engine is Idle until StartGraph, then Running. LockNode moves it to
Suspended; UnlockNode moves it back and performs exactly one advance.
EndGraph makes it Ended, which is terminal.

While Suspended, Continue fails with ErrSuspended and the cursor cannot
move. Work that finishes a suspension runs as a Thread: a Job stepped by
Tick that unlocks the engine when done. A thread whose lock has since
been released or whose traversal has ended does nothing.

# Conditions and Interrupts

Conditions are evaluated against the engine's variable store. A
ConditionList combines several with And or Or; an empty And is met and
an empty Or is not. Interrupts pair a condition with a jump target and
are polled on every Tick. A met interrupt jumps immediately while the
engine is running, and is latched until unlock while it is suspended.

# Errors

Authoring problems are reported by Compile. At run time, errors from a
node's callbacks, panics included, are logged and counted but never stop
the traversal. Structural misuse (a cursor outside the graph, Continue
during a suspension) is returned to the caller. Use Categorize to tell
them apart.

# Observability

Engines log through slog and accept an OpenTelemetry or Prometheus
metrics recorder, a span manager and an event bus:

	engine := behaviorgraph.NewEngine(
	    behaviorgraph.WithLogger(logger),
	    behaviorgraph.WithMetrics(observability.NewMetricsRecorder()),
	    behaviorgraph.WithTracing(observability.NewSpanManager()),
	    behaviorgraph.WithEventBus(bus))

# Checkpointing

WithCheckpointStore saves the cursor each time a node is entered. Resume
restores an engine from the latest checkpoint and re-enters that node.
*/
package behaviorgraph
