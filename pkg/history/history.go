// Package history captures handled requests for test inspection.
//
// Every dispatch through an instance appends an Entry, matched or not.
// This is user-facing inspection data (call-count assertions, "what hit
// my mock"), distinct from operational logging which goes through
// log/slog.
package history

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry records one handled request.
type Entry struct {
	// ID is a unique identifier for the entry.
	ID string `json:"id"`

	// Timestamp is when the request was dispatched.
	Timestamp time.Time `json:"timestamp"`

	// Method and Path identify the incoming request.
	Method string `json:"method"`
	Path   string `json:"path"`

	// Status is the final response status.
	Status int `json:"status"`

	// Matched reports whether a route matched.
	Matched bool `json:"matched"`

	// RouteKey is the "METHOD /pattern" of the matched route, empty on
	// no match.
	RouteKey string `json:"routeKey,omitempty"`
}

// Store is a bounded in-memory request log. When the limit is reached
// the oldest entries are dropped.
type Store struct {
	mu      sync.RWMutex
	entries []*Entry
	limit   int
}

// DefaultLimit is the default maximum number of retained entries.
const DefaultLimit = 1000

// NewStore creates a store retaining at most limit entries.
// A non-positive limit falls back to DefaultLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{limit: limit}
}

// Record assigns an ID and timestamp if missing and appends the entry.
func (s *Store) Record(e *Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
}

// All returns the retained entries, oldest first.
func (s *Store) All() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Last returns the most recent entry, or nil when empty.
func (s *Store) Last() *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// CallCount returns how many recorded requests used the given method
// and exact path. Method comparison is case-insensitive.
func (s *Store) CallCount(method, path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.entries {
		if strings.EqualFold(e.Method, method) && e.Path == path {
			count++
		}
	}
	return count
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
