package analysis

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
)

var step = &behaviorgraph.Kind{
	Name:   "step",
	Ports:  []behaviorgraph.Port{behaviorgraph.In(behaviorgraph.PortInput), behaviorgraph.Out(behaviorgraph.PortOutput)},
	Handle: func(behaviorgraph.Context, *behaviorgraph.Node) error { return nil },
}

func compile(t *testing.T, g *behaviorgraph.Graph) *behaviorgraph.CompiledGraph {
	t.Helper()
	compiled, err := g.Compile()
	require.NoError(t, err)
	return compiled
}

// guardGraph: start -> pick(switch) -> {calm, alarm} -> end, with a graph
// interrupt to flee.
func guardGraph() *behaviorgraph.Graph {
	return behaviorgraph.NewGraph("guard").
		AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind)).
		AddNode(behaviorgraph.NewNode("pick", behaviorgraph.SwitchKind,
			behaviorgraph.WithCase("alarm", behaviorgraph.Compare("alert", ">", 2)))).
		AddNode(behaviorgraph.NewNode("calm", step)).
		AddNode(behaviorgraph.NewNode("alarm", step,
			behaviorgraph.WithInterrupt(behaviorgraph.Interrupt{
				Name:   "hurt",
				When:   behaviorgraph.Expr("health < 10"),
				Target: "flee",
			}))).
		AddNode(behaviorgraph.NewNode("flee", step)).
		AddNode(behaviorgraph.NewNode("end", behaviorgraph.EndKind)).
		Link("start", "pick").
		Connect("pick", behaviorgraph.PortDefault, "calm", behaviorgraph.PortInput).
		Connect("pick", "alarm", "alarm", behaviorgraph.PortInput).
		Link("calm", "end").
		Link("alarm", "end").
		Link("flee", "end").
		SetEntry("start")
}

func TestValidate_Clean(t *testing.T) {
	r := Validate(compile(t, guardGraph()))

	assert.True(t, r.OK())
	assert.NoError(t, r.Err())
	assert.Equal(t, "guard", r.Graph)
}

func TestValidate_Problems(t *testing.T) {
	g := behaviorgraph.NewGraph("broken").
		AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind)).
		AddNode(behaviorgraph.NewNode("pick", behaviorgraph.SwitchKind,
			behaviorgraph.WithCase("left", behaviorgraph.Always),
			behaviorgraph.WithCase("right", behaviorgraph.Never))).
		AddNode(behaviorgraph.NewNode("left", step)).
		AddNode(behaviorgraph.NewNode("orphan", step,
			behaviorgraph.WithInterrupt(behaviorgraph.Interrupt{Name: "lost", When: behaviorgraph.Always, Target: "nowhere"}))).
		AddNode(behaviorgraph.NewNode("end", behaviorgraph.EndKind)).
		Link("start", "pick").
		Connect("pick", "left", "left", behaviorgraph.PortInput).
		Link("left", "end").
		Link("orphan", "end").
		AddInterrupt(behaviorgraph.Interrupt{Name: "global", When: behaviorgraph.Never, Target: "missing"}).
		SetEntry("begin")

	r := Validate(compile(t, g))

	assert.False(t, r.OK())
	assert.True(t, r.MissingEntry)
	assert.Equal(t, []string{"start", "pick", "left", "orphan", "end"}, r.Unreachable)

	// Default is a static port and may stay unwired; the "right" case may not.
	require.Len(t, r.Incomplete, 1)
	pickErrs := r.Incomplete["pick"]
	require.Len(t, pickErrs, 1)
	var authErr *behaviorgraph.AuthoringError
	require.ErrorAs(t, pickErrs[0], &authErr)
	assert.ErrorIs(t, pickErrs[0], ErrUnconnectedPort)
	assert.Equal(t, "right", authErr.Port)

	assert.Equal(t, []DanglingInterrupt{
		{NodeID: "orphan", Interrupt: "lost", Target: "nowhere"},
		{Interrupt: "global", Target: "missing"},
	}, r.Dangling)

	err := r.Err()
	assert.ErrorIs(t, err, behaviorgraph.ErrNoEntry)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.ErrorIs(t, err, ErrDanglingTarget)
	assert.ErrorIs(t, err, ErrUnconnectedPort)
}

func TestValidate_InterruptTargetsAreReachable(t *testing.T) {
	g := guardGraph().
		AddNode(behaviorgraph.NewNode("panic", step)).
		Link("panic", "end").
		AddInterrupt(behaviorgraph.Interrupt{Name: "fire", When: behaviorgraph.Never, Target: "panic"})

	r := Validate(compile(t, g))
	assert.Empty(t, r.Unreachable)
}

func TestValidate_NilGraph(t *testing.T) {
	r := Validate(nil)
	assert.True(t, r.MissingEntry)
	assert.False(t, r.OK())
}

func TestCheckNode(t *testing.T) {
	g := behaviorgraph.NewGraph("g").
		AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind)).
		AddNode(behaviorgraph.NewNode("stuck", step)).
		AddNode(behaviorgraph.NewNode("end", behaviorgraph.EndKind)).
		Link("start", "stuck").
		SetEntry("start")
	compiled := compile(t, g)

	assert.True(t, Complete(compiled, compiled.Node("start")))
	assert.True(t, Complete(compiled, compiled.Node("end")), "no output ports")

	errs := CheckNode(compiled, compiled.Node("stuck"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrNoOutputs)
	assert.False(t, Complete(compiled, compiled.Node("stuck")))

	assert.Nil(t, CheckNode(compiled, nil))
}

func TestReport_Warn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := Report{
		Graph:        "g",
		MissingEntry: true,
		Unreachable:  []string{"orphan"},
		Dangling:     []DanglingInterrupt{{Interrupt: "i", Target: "t"}},
	}
	r.Warn(logger)

	out := buf.String()
	assert.Contains(t, out, "graph has no entry node")
	assert.Contains(t, out, "node_id=orphan")
	assert.Contains(t, out, "target=t")
	assert.NotPanics(t, func() { Report{}.Warn(nil) })
}
