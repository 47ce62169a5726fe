package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/collab"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// harness runs graphs against a recorder and an in-memory variable store.
type harness struct {
	rec    *collab.Recorder
	vars   *vars.MemoryStore
	engine *behaviorgraph.Engine
}

func newHarness(seed map[string]any, opts ...behaviorgraph.Option) *harness {
	h := &harness{rec: &collab.Recorder{}, vars: vars.NewMemoryStore(seed)}
	opts = append([]behaviorgraph.Option{
		behaviorgraph.WithServices(h.rec.Services()),
		behaviorgraph.WithVars(h.vars),
	}, opts...)
	h.engine = behaviorgraph.NewEngine(opts...)
	return h
}

// run compiles start -> nodes... -> end and starts the engine on it.
func (h *harness) run(t *testing.T, nodes ...*behaviorgraph.Node) {
	t.Helper()
	g := behaviorgraph.NewGraph(t.Name()).AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind))
	prev := "start"
	for _, n := range nodes {
		g.AddNode(n).Link(prev, n.ID)
		prev = n.ID
	}
	g.AddNode(behaviorgraph.NewNode("end", behaviorgraph.EndKind)).
		Link(prev, "end").
		SetEntry("start")

	compiled, err := g.Compile()
	require.NoError(t, err)
	require.NoError(t, h.engine.StartGraph(context.Background(), compiled))
}

func (h *harness) current() string {
	if n := h.engine.CurrentNode(); n != nil {
		return n.ID
	}
	return ""
}

func (h *harness) value(t *testing.T, key string) any {
	t.Helper()
	v, err := h.vars.Lookup(key)
	require.NoError(t, err)
	return v
}
