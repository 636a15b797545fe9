package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBasicOperations(t *testing.T) {
	s := New(nil)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("counter", 1)
	v, ok := s.Get("counter")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	s.Set("name", "buddy")
	assert.Equal(t, []string{"counter", "name"}, s.Keys())
	assert.Equal(t, 2, s.Len())

	s.Delete("counter")
	_, ok = s.Get("counter")
	assert.False(t, ok)
}

func TestStoreResetRestoresInitialSnapshot(t *testing.T) {
	initial := map[string]any{
		"pets": map[string]any{"1": map[string]any{"name": "Buddy"}},
	}
	s := New(initial)

	s.Set("extra", true)
	pets, _ := s.Get("pets")
	pets.(map[string]any)["2"] = map[string]any{"name": "Rex"}

	s.Reset()

	_, ok := s.Get("extra")
	assert.False(t, ok)
	pets, _ = s.Get("pets")
	assert.Len(t, pets.(map[string]any), 1, "reset must restore the untouched snapshot")
}

func TestStoreInitialSnapshotIsIsolated(t *testing.T) {
	initial := map[string]any{"list": []any{"a"}}
	s := New(initial)

	// Mutating the caller's map after construction must not leak in.
	initial["list"] = []any{"a", "b", "c"}
	s.Reset()

	v, _ := s.Get("list")
	assert.Equal(t, []any{"a"}, v)
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	s := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("seq", func(current any, ok bool) any {
				n, _ := current.(int)
				return n + 1
			})
		}()
	}
	wg.Wait()

	v, _ := s.Get("seq")
	assert.Equal(t, 50, v)
}

func TestNamespace(t *testing.T) {
	s := New(nil)
	ns := s.Namespace("crud:pets")

	ns.Set("seq", 3)
	ns.Set("items", map[string]any{})

	// Namespaced values are plain store keys under the prefix.
	v, ok := s.Get("crud:pets:seq")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, []string{"items", "seq"}, ns.Keys())

	ns.Delete("items")
	_, ok = ns.Get("items")
	assert.False(t, ok)

	next := ns.Update("seq", func(current any, ok bool) any {
		return current.(int) + 1
	})
	assert.Equal(t, 4, next)
}

func TestStoreSnapshot(t *testing.T) {
	s := New(map[string]any{"a": 1})
	snap := s.Snapshot()
	snap["b"] = 2

	_, ok := s.Get("b")
	assert.False(t, ok, "snapshot mutation must not write through")
}
