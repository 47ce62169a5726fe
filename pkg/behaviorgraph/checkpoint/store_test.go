package checkpoint_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) checkpoint.Store

// storeContractTest runs the same behavior checks against any Store.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Save_and_Load", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		data := []byte(`{"node_id": "greet"}`)
		require.NoError(t, store.Save("engine-1", "greet", data))

		loaded, err := store.Load("engine-1", "greet")
		require.NoError(t, err)
		assert.Equal(t, data, loaded)
	})

	t.Run(name+"/Load_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Load("engine-x", "none")
		assert.ErrorIs(t, err, checkpoint.ErrNotFound)
	})

	t.Run(name+"/Save_Overwrite_BumpsSequence", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("e", "a", []byte("first")))
		require.NoError(t, store.Save("e", "b", []byte("b")))
		require.NoError(t, store.Save("e", "a", []byte("second")))

		loaded, err := store.Load("e", "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded)

		infos, err := store.List("e")
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "b", infos[0].NodeID)
		assert.Equal(t, "a", infos[1].NodeID)
		assert.Greater(t, infos[1].Sequence, infos[0].Sequence)
		assert.Equal(t, int64(len("second")), infos[1].Size)
		assert.Equal(t, "e", infos[1].EngineID)
		assert.False(t, infos[1].Timestamp.IsZero())
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		infos, err := store.List("nobody")
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run(name+"/Engines_Isolated", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("e1", "n", []byte("1")))
		require.NoError(t, store.Save("e2", "n", []byte("2")))

		d, err := store.Load("e2", "n")
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), d)
	})

	t.Run(name+"/Delete", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("e", "a", []byte("x")))
		require.NoError(t, store.Delete("e", "a"))
		require.NoError(t, store.Delete("e", "never"))

		_, err := store.Load("e", "a")
		assert.ErrorIs(t, err, checkpoint.ErrNotFound)
	})

	t.Run(name+"/DeleteEngine", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("e", "a", []byte("x")))
		require.NoError(t, store.Save("e", "b", []byte("y")))
		require.NoError(t, store.Save("keep", "a", []byte("z")))
		require.NoError(t, store.DeleteEngine("e"))

		infos, err := store.List("e")
		require.NoError(t, err)
		assert.Empty(t, infos)

		infos, err = store.List("keep")
		require.NoError(t, err)
		assert.Len(t, infos, 1)
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.Save("e", "a", nil), checkpoint.ErrStoreClosed)
		_, err := store.Load("e", "a")
		assert.ErrorIs(t, err, checkpoint.ErrStoreClosed)
		_, err = store.List("e")
		assert.ErrorIs(t, err, checkpoint.ErrStoreClosed)
		assert.ErrorIs(t, store.Delete("e", "a"), checkpoint.ErrStoreClosed)
		assert.ErrorIs(t, store.DeleteEngine("e"), checkpoint.ErrStoreClosed)
	})

	t.Run(name+"/Concurrent", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				engineID := fmt.Sprintf("engine-%d", id%4)
				for j := 0; j < 10; j++ {
					nodeID := fmt.Sprintf("node-%d", j%3)
					switch j % 3 {
					case 0, 1:
						_ = store.Save(engineID, nodeID, []byte("data"))
					default:
						_, _ = store.List(engineID)
					}
				}
			}(i)
		}
		wg.Wait()

		infos, err := store.List("engine-0")
		require.NoError(t, err)
		assert.NotEmpty(t, infos)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContractTest(t, "MemoryStore", func(*testing.T) checkpoint.Store {
		return checkpoint.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContractTest(t, "SQLiteStore", func(t *testing.T) checkpoint.Store {
		store, err := checkpoint.NewSQLiteStore(filepath.Join(t.TempDir(), "cp.db"))
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteStore_InMemory(t *testing.T) {
	storeContractTest(t, "SQLiteMemory", func(t *testing.T) checkpoint.Store {
		store, err := checkpoint.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.db")

	s1, err := checkpoint.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Save("engine-1", "gate", []byte("persistent")))
	require.NoError(t, s1.Close())

	s2, err := checkpoint.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	data, err := s2.Load("engine-1", "gate")
	require.NoError(t, err)
	assert.Equal(t, []byte("persistent"), data)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := checkpoint.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestMemoryStore_Len(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	require.NoError(t, store.Save("a", "1", nil))
	require.NoError(t, store.Save("a", "2", nil))
	require.NoError(t, store.Save("b", "1", nil))
	assert.Equal(t, 3, store.Len())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, store.Save("e", "n", data))
	data[0] = 'z'

	loaded, err := store.Load("e", "n")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), loaded)

	loaded[1] = 'z'
	again, err := store.Load("e", "n")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
