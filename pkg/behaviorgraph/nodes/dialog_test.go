package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/collab"
)

func TestText_ParksUntilContinue(t *testing.T) {
	h := newHarness(map[string]any{"player.name": "Ari"})
	h.run(t,
		Text("greet", "Hello, ${player.name}!"),
		Text("ask", "Ready?"),
		CloseDialog("close"),
	)

	assert.Equal(t, "greet", h.current())
	assert.Equal(t, behaviorgraph.StatusRunning, h.engine.Status())
	require.Equal(t, []collab.Call{
		{Method: "Dialog.Open"},
		{Method: "Dialog.Type", Args: []any{"Hello, Ari!", false}},
	}, h.rec.Calls())

	require.NoError(t, h.engine.Continue())
	assert.Equal(t, "ask", h.current())

	require.NoError(t, h.engine.Continue())
	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
	assert.Equal(t, []string{
		"Dialog.Open", "Dialog.Type",
		"Dialog.Open", "Dialog.Type",
		"Dialog.Close",
	}, h.rec.Methods())
}

func TestText_AutoAdvance(t *testing.T) {
	h := newHarness(nil)
	h.run(t, Text("line", "Run!", AutoAdvance()))

	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
	require.Len(t, h.rec.Calls(), 2)
	assert.Equal(t, []any{"Run!", true}, h.rec.Calls()[1].Args)
}

func TestText_UnknownPlaceholderKept(t *testing.T) {
	h := newHarness(nil)
	h.run(t, Text("line", "Hi ${nobody}, ${title:-stranger}"))

	calls := h.rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Hi ${nobody}, stranger", calls[1].Args[0])
}

func TestText_MissingTextParks(t *testing.T) {
	h := newHarness(nil)
	h.run(t, behaviorgraph.NewNode("bad", TextKind))

	assert.Empty(t, h.rec.Calls())
	assert.Equal(t, "bad", h.current())
	assert.Equal(t, behaviorgraph.StatusRunning, h.engine.Status())
}

func TestText_Variables(t *testing.T) {
	n := Text("line", "${a} and ${b.c}")
	assert.Equal(t, []string{"a", "b.c"}, n.Variables())
}
