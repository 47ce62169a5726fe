package benchmarks

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/checkpoint"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

func sampleCheckpoint() *checkpoint.Checkpoint {
	return checkpoint.New("engine-1", "guard", "wait", "suspended").
		WithPrevNode("start").
		WithVisits(12)
}

// BenchmarkMemoryStore_Save measures in-memory checkpoint save.
func BenchmarkMemoryStore_Save(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	cp := sampleCheckpoint()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = checkpoint.Save(store, cp)
	}
}

// BenchmarkMemoryStore_Latest measures loading the newest checkpoint.
func BenchmarkMemoryStore_Latest(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	_, _ = checkpoint.Save(store, sampleCheckpoint())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = checkpoint.Latest(store, "engine-1")
	}
}

// BenchmarkSQLiteStore_Save measures SQLite checkpoint save.
func BenchmarkSQLiteStore_Save(b *testing.B) {
	store, err := checkpoint.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	cp := sampleCheckpoint()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = checkpoint.Save(store, cp)
	}
}

// BenchmarkSQLiteStore_Latest measures SQLite checkpoint load.
func BenchmarkSQLiteStore_Latest(b *testing.B) {
	store, err := checkpoint.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	_, _ = checkpoint.Save(store, sampleCheckpoint())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = checkpoint.Latest(store, "engine-1")
	}
}

// BenchmarkTraverse_WithCheckpoints measures the per-visit checkpoint cost.
func BenchmarkTraverse_WithCheckpoints(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(10))
	store := checkpoint.NewMemoryStore()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := behaviorgraph.NewEngine(behaviorgraph.WithLogger(nil), behaviorgraph.WithCheckpointStore(store))
		_ = e.StartGraph(ctx, compiled)
	}
}

// BenchmarkSQLVars_PutLookup measures a write and a read on the SQLite
// variable store.
func BenchmarkSQLVars_PutLookup(b *testing.B) {
	store, err := vars.NewSQLiteStore(filepath.Join(b.TempDir(), "vars.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Put("boss.health", i)
		_, _ = store.Lookup("boss.health")
	}
}
