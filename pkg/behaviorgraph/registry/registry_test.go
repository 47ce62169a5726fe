package registry

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	r := New[string, int]()
	r.Register("one", 1)
	r.Register("one", 11)

	v, ok := r.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 11, v)

	v, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	r := New[string, int]()
	require.NoError(t, r.Add("k", 1))

	err := r.Add("k", 2)
	assert.ErrorIs(t, err, ErrExists)
	assert.Contains(t, err.Error(), "k")
	assert.Equal(t, 1, r.MustGet("k"))
}

func TestMustGet_Panics(t *testing.T) {
	r := New[string, int]()
	assert.PanicsWithValue(t, "registry: key nope not found", func() {
		r.MustGet("nope")
	})
}

func TestHasDeleteLen(t *testing.T) {
	r := New[int, string]()
	r.Register(1, "a")
	r.Register(2, "b")
	assert.True(t, r.Has(1))
	assert.Equal(t, 2, r.Len())

	r.Delete(1)
	r.Delete(99)
	assert.False(t, r.Has(1))
	assert.Equal(t, 1, r.Len())
}

func TestDeleteFunc(t *testing.T) {
	r := New[string, int]()
	for k, v := range map[string]int{"a": 1, "b": 2, "c": 3, "d": 4} {
		r.Register(k, v)
	}

	removed := r.DeleteFunc(func(_ string, v int) bool { return v%2 == 0 })
	sort.Strings(removed)

	assert.Equal(t, []string{"b", "d"}, removed)
	assert.Equal(t, 2, r.Len())
	assert.Empty(t, r.DeleteFunc(func(string, int) bool { return false }))
}

func TestKeysAndValues(t *testing.T) {
	r := New[string, int]()
	assert.Empty(t, r.Keys())

	r.Register("x", 1)
	r.Register("y", 2)

	assert.ElementsMatch(t, []string{"x", "y"}, r.Keys())
	assert.ElementsMatch(t, []int{1, 2}, r.Values())
}

func TestRange(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)
	r.Register("c", 3)

	sum := 0
	r.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 6, sum)

	visits := 0
	r.Range(func(string, int) bool {
		visits++
		return false
	})
	assert.Equal(t, 1, visits)
}

func TestRange_AllowsMutation(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)

	r.Range(func(k string, _ int) bool {
		r.Delete(k)
		r.Register(k+"2", 0)
		return true
	})

	assert.ElementsMatch(t, []string{"a2", "b2"}, r.Keys())
}

func TestGetOrCreate_Concurrent(t *testing.T) {
	r := New[string, *int]()
	var calls atomic.Int32

	var wg sync.WaitGroup
	results := make([]*int, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.GetOrCreate("shared", func() *int {
				calls.Add(1)
				v := 42
				return &v
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestConcurrentReadWrite(t *testing.T) {
	r := New[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Register(id*100+j, j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = r.Get(j)
				_ = r.Len()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, r.Len())
}

func BenchmarkGet(b *testing.B) {
	r := New[string, int]()
	r.Register("key", 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Get("key")
	}
}

func BenchmarkConcurrentGet(b *testing.B) {
	r := New[string, int]()
	r.Register("key", 1)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = r.Get("key")
		}
	})
}
