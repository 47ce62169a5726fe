package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/registry"
)

func TestCatalog_Names(t *testing.T) {
	names := NewCatalog().Names()
	assert.Contains(t, names, "start")
	assert.Contains(t, names, "switch")
	assert.Contains(t, names, "text")
	assert.Contains(t, names, "wait_signal")
	assert.IsIncreasing(t, names)
}

func TestCatalog_NewNode(t *testing.T) {
	c := NewCatalog()

	n, err := c.NewNode("shake", "camera_shake", map[string]any{ParamIntensity: 0.2})
	require.NoError(t, err)
	assert.Same(t, CameraShakeKind, n.Kind)
	assert.Equal(t, 0.2, n.Params.Float(ParamIntensity, 0))

	_, err = c.NewNode("x", "teleport", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCatalog_Register(t *testing.T) {
	c := NewCatalog()
	custom := &behaviorgraph.Kind{
		Name:   "spawn_enemy",
		Ports:  flow,
		Handle: func(behaviorgraph.Context, *behaviorgraph.Node) error { return nil },
	}

	require.NoError(t, c.Register(custom))
	k, ok := c.Kind("spawn_enemy")
	require.True(t, ok)
	assert.Same(t, custom, k)

	assert.ErrorIs(t, c.Register(custom), registry.ErrExists)
	assert.Error(t, c.Register(&behaviorgraph.Kind{}))
}

func TestCatalog_BuildsRunnableGraph(t *testing.T) {
	c := NewCatalog()
	h := newHarness(nil)

	set, err := c.NewNode("set", "set_variable", map[string]any{ParamKey: "seen", ParamValue: true})
	require.NoError(t, err)
	h.run(t, set)

	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
	assert.Equal(t, true, h.value(t, "seen"))
}
