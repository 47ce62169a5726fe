package behaviorgraph

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// visitLog records node visits in order.
type visitLog struct {
	mu  sync.Mutex
	ids []string
}

func (l *visitLog) add(id string) {
	l.mu.Lock()
	l.ids = append(l.ids, id)
	l.mu.Unlock()
}

func (l *visitLog) visited() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

func (l *visitLog) count(id string) int {
	n := 0
	for _, v := range l.visited() {
		if v == id {
			n++
		}
	}
	return n
}

// stepKind records the visit and auto-continues.
func stepKind(log *visitLog) *Kind {
	return &Kind{
		Name:  "step",
		Ports: []Port{In(PortInput), Out(PortOutput)},
		Handle: func(_ Context, n *Node) error {
			log.add(n.ID)
			return nil
		},
	}
}

// parkKind records the visit and waits for an external Continue, like a
// dialog line without auto-advance.
func parkKind(log *visitLog) *Kind {
	return &Kind{
		Name:  "park",
		Ports: []Port{In(PortInput), Out(PortOutput)},
		Handle: func(_ Context, n *Node) error {
			log.add(n.ID)
			return nil
		},
		PostHandle: NoAutoContinue,
	}
}

// delayKind locks the engine and unlocks it after d of ticked time.
func delayKind(log *visitLog, d time.Duration) *Kind {
	return &Kind{
		Name:  "delay",
		Ports: []Port{In(PortInput), Out(PortOutput)},
		Handle: func(ctx Context, n *Node) error {
			log.add(n.ID)
			if !ctx.Engine().LockNode() {
				return nil
			}
			_, err := ctx.Engine().StartThread(After(d))
			return err
		},
	}
}

func mustCompile(t *testing.T, g *Graph) *CompiledGraph {
	t.Helper()
	compiled, err := g.Compile()
	require.NoError(t, err)
	return compiled
}

// linear builds start -> ids... -> end with the given kinds.
func linear(name string, nodes ...*Node) *Graph {
	g := NewGraph(name).AddNode(NewNode("start", StartKind))
	prev := "start"
	for _, n := range nodes {
		g.AddNode(n).Link(prev, n.ID)
		prev = n.ID
	}
	return g.AddNode(NewNode("end", EndKind)).
		Link(prev, "end").
		SetEntry("start")
}
