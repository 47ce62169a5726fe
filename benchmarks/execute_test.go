package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/host"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

func BenchmarkTraverse_Linear(b *testing.B) {
	for _, n := range []int{5, 50, 500} {
		b.Run(fmt.Sprintf("nodes=%d", n), func(b *testing.B) {
			compiled := mustCompile(buildLinearGraph(n))
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				e := behaviorgraph.NewEngine(behaviorgraph.WithLogger(nil), behaviorgraph.WithMaxSteps(n+10))
				_ = e.StartGraph(ctx, compiled)
			}
		})
	}
}

// BenchmarkTraverse_Switch_20 picks the last of 20 cases.
func BenchmarkTraverse_Switch_20(b *testing.B) {
	compiled := mustCompile(buildSwitchGraph(20))
	store := vars.NewMemoryStore(map[string]any{"choice": 19})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := behaviorgraph.NewEngine(behaviorgraph.WithLogger(nil), behaviorgraph.WithVars(store))
		_ = e.StartGraph(ctx, compiled)
	}
}

// BenchmarkConditionList_And_10 evaluates ten comparisons.
func BenchmarkConditionList_And_10(b *testing.B) {
	conds := make([]behaviorgraph.Condition, 10)
	seed := make(map[string]any, 10)
	for i := range conds {
		key := fmt.Sprintf("v%d", i)
		seed[key] = i
		conds[i] = behaviorgraph.Compare(key, ">=", 0)
	}
	list := behaviorgraph.All(conds...)
	store := vars.NewMemoryStore(seed)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = list.IsMet(store)
	}
}

// BenchmarkExpr evaluates a compiled expression condition.
func BenchmarkExpr(b *testing.B) {
	cond := behaviorgraph.MustExpr("boss.health < 50 and not boss.enraged")
	store := vars.NewMemoryStore(map[string]any{"boss.health": 30, "boss.enraged": false})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cond.IsMet(store)
	}
}

// waitKind locks the engine until its thread finishes.
var waitKind = &behaviorgraph.Kind{
	Name:  "wait",
	Ports: []behaviorgraph.Port{behaviorgraph.In(behaviorgraph.PortInput), behaviorgraph.Out(behaviorgraph.PortOutput)},
	Handle: func(ctx behaviorgraph.Context, _ *behaviorgraph.Node) error {
		e := ctx.Engine()
		if !e.LockNode() {
			return nil
		}
		_, err := e.StartThread(behaviorgraph.After(time.Hour))
		return err
	},
}

// BenchmarkHostTick measures one parallel tick over many suspended engines
// with a graph interrupt to poll.
func BenchmarkHostTick(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("engines=%d", n), func(b *testing.B) {
			compiled := mustCompile(behaviorgraph.NewGraph("idle").
				AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind)).
				AddNode(behaviorgraph.NewNode("wait", waitKind)).
				AddNode(behaviorgraph.NewNode("end", behaviorgraph.EndKind)).
				Link("start", "wait").
				Link("wait", "end").
				AddInterrupt(behaviorgraph.Interrupt{Name: "alarm", When: behaviorgraph.Compare("alarm", "==", true), Target: "end"}).
				SetEntry("start"))
			store := vars.NewMemoryStore(map[string]any{"alarm": false})

			h := host.New(host.WithEngineOptions(behaviorgraph.WithLogger(nil), behaviorgraph.WithVars(store)))
			ctx := context.Background()
			for i := 0; i < n; i++ {
				if _, err := h.Spawn(ctx, compiled); err != nil {
					b.Fatal(err)
				}
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = h.Tick(ctx, 16*time.Millisecond)
			}
		})
	}
}
