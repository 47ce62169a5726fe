package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/signal"
)

func TestDelay_ResumesAfterTickedTime(t *testing.T) {
	h := newHarness(nil)
	h.run(t,
		Delay("wait", time.Second),
		CameraFocus("look", "door"),
	)

	assert.Equal(t, behaviorgraph.StatusSuspended, h.engine.Status())
	assert.Equal(t, "wait", h.current())
	require.NotNil(t, h.engine.Thread())

	require.NoError(t, h.engine.Tick(400*time.Millisecond))
	assert.Equal(t, behaviorgraph.StatusSuspended, h.engine.Status())
	assert.Empty(t, h.rec.Calls())

	require.NoError(t, h.engine.Tick(600*time.Millisecond))
	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
	assert.Equal(t, []string{"Camera.Focus"}, h.rec.Methods())
}

func TestDelay_NonPositiveContinues(t *testing.T) {
	for _, d := range []any{0, -1.5, "0s", "nonsense"} {
		h := newHarness(nil)
		h.run(t, behaviorgraph.NewNode("wait", DelayKind, behaviorgraph.WithParam(ParamDuration, d)))
		assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status(), "duration %v", d)
	}
}

func TestDelay_SecondsParam(t *testing.T) {
	h := newHarness(nil)
	h.run(t, behaviorgraph.NewNode("wait", DelayKind, behaviorgraph.WithParam(ParamDuration, 1.5)))

	require.NoError(t, h.engine.Tick(time.Second))
	assert.Equal(t, behaviorgraph.StatusSuspended, h.engine.Status())
	require.NoError(t, h.engine.Tick(500*time.Millisecond))
	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
}

func TestWaitSignal(t *testing.T) {
	signals := signal.NewMemoryStore()
	h := newHarness(nil, behaviorgraph.WithSignals(signals), behaviorgraph.WithEngineID("guard-1"))
	h.run(t,
		WaitSignal("wait", "door_opened", StoreAs("door")),
		PlaySound("creak", "creak", 0),
	)
	ctx := context.Background()

	require.NoError(t, h.engine.Tick(time.Second))
	assert.Equal(t, behaviorgraph.StatusSuspended, h.engine.Status())

	// Same name, other engine.
	require.NoError(t, signal.Send(ctx, signals, signal.NewSignal("door_opened", "guard-2", nil)))
	// Other name, this engine.
	require.NoError(t, signal.Send(ctx, signals, signal.NewSignal("lever_pulled", "guard-1", nil)))
	require.NoError(t, h.engine.Tick(time.Second))
	assert.Equal(t, behaviorgraph.StatusSuspended, h.engine.Status())

	payload := map[string]any{"door": "north"}
	require.NoError(t, signal.Send(ctx, signals, signal.NewSignal("door_opened", "guard-1", payload)))
	require.NoError(t, h.engine.Tick(time.Second))

	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
	assert.Equal(t, []string{"Audio.Play"}, h.rec.Methods())
	assert.Equal(t, payload, h.value(t, "door"))

	pending, err := signals.Dequeue(ctx, "guard-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "lever_pulled", pending[0].Name)
}

func TestWaitSignal_MissingName(t *testing.T) {
	h := newHarness(nil)
	h.run(t, behaviorgraph.NewNode("wait", WaitSignalKind))

	// The handler fails, nothing locks, and the node auto-continues.
	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
}

func TestWaitSignal_Variables(t *testing.T) {
	assert.Equal(t, []string{"door"}, WaitSignal("w", "s", StoreAs("door")).Variables())
	assert.Empty(t, WaitSignal("w", "s").Variables())
}

// brokenSignals fails every read.
type brokenSignals struct {
	*signal.MemoryStore
	reads int
}

func (b *brokenSignals) Dequeue(context.Context, string) ([]*signal.Signal, error) {
	b.reads++
	return nil, errors.New("signal store unavailable")
}

func TestWaitSignal_RetriesThenGivesUp(t *testing.T) {
	signals := &brokenSignals{MemoryStore: signal.NewMemoryStore()}
	h := newHarness(nil, behaviorgraph.WithSignals(signals))
	h.run(t,
		WaitSignal("wait", "door_opened", Retries(2)),
		PlaySound("creak", "creak", 0),
	)

	require.NoError(t, h.engine.Tick(10*time.Millisecond))
	assert.Equal(t, behaviorgraph.StatusSuspended, h.engine.Status())
	assert.Equal(t, 1, signals.reads)

	// Backoff is well under a second even with jitter.
	require.NoError(t, h.engine.Tick(time.Second))
	assert.Equal(t, 2, signals.reads)
	assert.Equal(t, behaviorgraph.StatusEnded, h.engine.Status())
	assert.Equal(t, []string{"Audio.Play"}, h.rec.Methods())
}
