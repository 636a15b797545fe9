package state

import (
	"sort"
	"sync"
)

// Store is a mutex-guarded key-value store shared by reference across
// all requests on one instance. It is never cloned per request.
type Store struct {
	mu      sync.RWMutex
	values  map[string]any
	initial map[string]any
}

// New creates a store seeded with a deep copy of initial. The snapshot
// is kept so Reset can restore it; nil means start empty.
func New(initial map[string]any) *Store {
	s := &Store{
		values:  make(map[string]any),
		initial: make(map[string]any),
	}
	for k, v := range initial {
		s.initial[k] = deepCopy(v)
		s.values[k] = deepCopy(v)
	}
	return s
}

// Get returns the value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes a key. Removing an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns all keys in sorted order for deterministic output.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Update applies fn to the value under key while holding the write lock,
// storing the result. This keeps read-modify-write sequences (counters,
// collection inserts) atomic even when callers interleave requests.
func (s *Store) Update(key string, fn func(current any, ok bool) any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	next := fn(v, ok)
	s.values[key] = next
	return next
}

// Reset restores the store to the initial snapshot. State is never
// cleared implicitly between requests; this is the only clearing path.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any, len(s.initial))
	for k, v := range s.initial {
		s.values[k] = deepCopy(v)
	}
}

// Snapshot returns a shallow copy of the current contents, for
// inspection and expression environments.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Namespace returns a view of the store whose keys are transparently
// prefixed, giving each route or plugin its own corner of the state.
func (s *Store) Namespace(prefix string) *Namespace {
	return &Namespace{store: s, prefix: prefix + ":"}
}

// deepCopy copies the JSON-shaped subset of values (maps, slices,
// scalars). Other types are shared; the store does not try to clone
// arbitrary structs.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
