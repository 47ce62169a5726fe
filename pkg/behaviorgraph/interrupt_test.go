package behaviorgraph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

func TestInterrupt_LatchedWhileSuspended(t *testing.T) {
	log := &visitLog{}
	store := vars.NewMemoryStore(map[string]any{"hp": 100})

	guard := NewNode("guard", delayKind(log, 10*time.Second), WithInterrupt(Interrupt{
		Name:   "flee",
		When:   Compare("hp", "<", 10),
		Target: "flee",
	}))
	g := mustCompile(t, linear("fight", guard, NewNode("next", parkKind(log))).
		AddNode(NewNode("flee", parkKind(log))))

	e := NewEngine(WithVars(store))
	require.NoError(t, e.StartGraph(context.Background(), g))
	require.Equal(t, StatusSuspended, e.Status())

	require.NoError(t, store.Put("hp", 5))
	require.NoError(t, e.Tick(time.Second))

	// Never applied mid-suspension.
	assert.Equal(t, StatusSuspended, e.Status())
	assert.Equal(t, "guard", e.CurrentNode().ID)
	assert.Zero(t, log.count("flee"))

	require.NoError(t, e.Tick(time.Second))
	assert.Equal(t, "guard", e.CurrentNode().ID)

	require.NoError(t, e.UnlockNode())
	assert.Equal(t, "flee", e.CurrentNode().ID)
	assert.Equal(t, 1, log.count("flee"))
	assert.Zero(t, log.count("next"), "latched jump replaces the advance")
}

func TestInterrupt_LatchedAppliedWhenThreadFinishes(t *testing.T) {
	log := &visitLog{}
	store := vars.NewMemoryStore(map[string]any{"hp": 100})

	guard := NewNode("guard", delayKind(log, 2*time.Second), WithInterrupt(Interrupt{
		Name:   "flee",
		When:   Compare("hp", "<", 10),
		Target: "flee",
	}))
	g := mustCompile(t, linear("fight", guard, NewNode("next", parkKind(log))).
		AddNode(NewNode("flee", parkKind(log))))

	e := NewEngine(WithVars(store))
	require.NoError(t, e.StartGraph(context.Background(), g))
	require.NoError(t, store.Put("hp", 1))
	require.NoError(t, e.Tick(time.Second))
	require.Equal(t, StatusSuspended, e.Status())

	require.NoError(t, e.Tick(time.Second))
	assert.Equal(t, StatusRunning, e.Status())
	assert.Equal(t, "flee", e.CurrentNode().ID)
	assert.Zero(t, log.count("next"))
}

func TestInterrupt_NotPolledOnTickThatAdvanced(t *testing.T) {
	log := &visitLog{}
	store := vars.NewMemoryStore(map[string]any{"hp": 100})

	g := mustCompile(t, linear("boss",
		NewNode("wait", delayKind(log, time.Second)),
		NewNode("line", parkKind(log)),
	).
		AddNode(NewNode("phase2", parkKind(log))).
		AddInterrupt(Interrupt{Name: "enrage", When: Compare("hp", "<", 50), Target: "phase2"}))

	e := NewEngine(WithVars(store))
	require.NoError(t, e.StartGraph(context.Background(), g))
	require.NoError(t, e.Tick(500*time.Millisecond))
	require.Equal(t, StatusSuspended, e.Status())

	require.NoError(t, store.Put("hp", 10))
	require.NoError(t, e.Tick(600*time.Millisecond))

	// The delay finished and advanced the cursor; the interrupt waits a tick.
	assert.Equal(t, []string{"wait", "line"}, log.visited())
	assert.Equal(t, "line", e.CurrentNode().ID)

	require.NoError(t, e.Tick(time.Millisecond))
	assert.Equal(t, "phase2", e.CurrentNode().ID)
	assert.Equal(t, 1, log.count("phase2"))
}

func TestInterrupt_FiresImmediatelyWhileRunning(t *testing.T) {
	log := &visitLog{}
	store := vars.NewMemoryStore(map[string]any{"noise": false})

	idle := NewNode("idle", parkKind(log), WithInterrupt(Interrupt{
		Name:   "hear",
		When:   Compare("noise", "==", true),
		Target: "alert",
	}))
	g := mustCompile(t, linear("patrol", idle).AddNode(NewNode("alert", parkKind(log))))

	e := NewEngine(WithVars(store))
	require.NoError(t, e.StartGraph(context.Background(), g))

	require.NoError(t, e.Tick(time.Second))
	assert.Equal(t, "idle", e.CurrentNode().ID)

	require.NoError(t, store.Put("noise", true))
	require.NoError(t, e.Tick(time.Second))
	assert.Equal(t, "alert", e.CurrentNode().ID)
	assert.Equal(t, 1, log.count("alert"))

	// Node interrupts are only active while their node is current.
	require.NoError(t, e.Tick(time.Second))
	assert.Equal(t, 1, log.count("alert"))
}

func TestInterrupt_GraphWideOnce(t *testing.T) {
	log := &visitLog{}
	store := vars.NewMemoryStore(map[string]any{"alarm": true})

	g := mustCompile(t, NewGraph("castle").
		AddNode(NewNode("a", parkKind(log))).
		AddNode(NewNode("alarm", parkKind(log))).
		AddInterrupt(Interrupt{Name: "alarm", When: Compare("alarm", "==", true), Target: "alarm", Once: true}).
		SetEntry("a"))

	e := NewEngine(WithVars(store))
	require.NoError(t, e.StartGraph(context.Background(), g))

	require.NoError(t, e.Tick(time.Second))
	assert.Equal(t, "alarm", e.CurrentNode().ID)

	require.NoError(t, e.SetCurrentNode(g.Node("a")))
	require.NoError(t, e.Tick(time.Second))
	assert.Equal(t, "a", e.CurrentNode().ID)
	assert.Equal(t, 1, log.count("alarm"))
}

func TestInterrupt_SkipsCurrentTarget(t *testing.T) {
	log := &visitLog{}
	g := mustCompile(t, NewGraph("g").
		AddNode(NewNode("a", parkKind(log))).
		AddNode(NewNode("b", parkKind(log))).
		AddInterrupt(Interrupt{Name: "to_b", When: Always, Target: "b"}).
		SetEntry("a"))

	e := NewEngine()
	require.NoError(t, e.StartGraph(context.Background(), g))

	require.NoError(t, e.Tick(time.Millisecond))
	require.NoError(t, e.Tick(time.Millisecond))
	require.NoError(t, e.Tick(time.Millisecond))
	assert.Equal(t, 1, log.count("b"))

	require.NoError(t, e.SetCurrentNode(g.Node("a")))
	require.NoError(t, e.Tick(time.Millisecond))
	assert.Equal(t, 2, log.count("b"))
}

func TestInterrupt_FirstMetWins(t *testing.T) {
	log := &visitLog{}
	a := NewNode("a", parkKind(log),
		WithInterrupt(Interrupt{Name: "never", When: Never, Target: "x"}),
		WithInterrupt(Interrupt{Name: "first", When: Always, Target: "y"}),
	)
	g := mustCompile(t, NewGraph("g").
		AddNode(a).
		AddNode(NewNode("x", parkKind(log))).
		AddNode(NewNode("y", parkKind(log))).
		AddNode(NewNode("z", parkKind(log))).
		AddInterrupt(Interrupt{Name: "graph", When: Always, Target: "z"}).
		SetEntry("a"))

	e := NewEngine()
	require.NoError(t, e.StartGraph(context.Background(), g))
	require.NoError(t, e.Tick(time.Millisecond))

	assert.Equal(t, []string{"a", "y"}, log.visited())
}

func TestInterrupt_DanglingTargetIgnored(t *testing.T) {
	log := &visitLog{}
	g := mustCompile(t, NewGraph("g").
		AddNode(NewNode("a", parkKind(log))).
		AddInterrupt(Interrupt{Name: "lost", When: Always, Target: "nowhere"}).
		SetEntry("a"))

	e := NewEngine()
	require.NoError(t, e.StartGraph(context.Background(), g))
	require.NoError(t, e.Tick(time.Millisecond))
	require.NoError(t, e.Tick(time.Millisecond))

	assert.Equal(t, "a", e.CurrentNode().ID)
	assert.Equal(t, StatusRunning, e.Status())
}

func TestInterrupt_MalformedConditionNotMet(t *testing.T) {
	log := &visitLog{}
	broken := Func("broken", func(vars.Reader) (bool, error) { panic("bad state") })
	g := mustCompile(t, NewGraph("g").
		AddNode(NewNode("a", parkKind(log))).
		AddNode(NewNode("b", parkKind(log))).
		AddInterrupt(Interrupt{Name: "broken", When: broken, Target: "b"}).
		SetEntry("a"))

	e := NewEngine()
	require.NoError(t, e.StartGraph(context.Background(), g))
	require.NoError(t, e.Tick(time.Millisecond))

	assert.Equal(t, "a", e.CurrentNode().ID)
}

func TestInterrupt_NotPolledAfterEnd(t *testing.T) {
	log := &visitLog{}
	g := mustCompile(t, NewGraph("g").
		AddNode(NewNode("a", parkKind(log))).
		AddNode(NewNode("b", parkKind(log))).
		AddInterrupt(Interrupt{Name: "to_b", When: Always, Target: "b"}).
		SetEntry("a"))

	e := NewEngine()
	require.NoError(t, e.StartGraph(context.Background(), g))
	e.EndGraph()
	require.NoError(t, e.Tick(time.Second))

	assert.Zero(t, log.count("b"))
	assert.Nil(t, e.CurrentNode())
}

func TestInterrupt_Variables(t *testing.T) {
	in := Interrupt{Name: "x", When: All(Compare("hp", "<", 10), MustExpr("stunned or fleeing"))}
	assert.Equal(t, []string{"fleeing", "hp", "stunned"}, in.Variables())
}
