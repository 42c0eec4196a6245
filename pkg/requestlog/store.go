package requestlog

import (
	"strings"
	"sync"
)

// Logger is the minimal interface for recording entries.
type Logger interface {
	Log(entry *Entry)
}

// Store defines request history storage.
type Store interface {
	Logger

	// Get retrieves an entry by ID.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of stored entries.
	Count() int
}

// Filter defines criteria for listing entries. Zero fields match everything.
type Filter struct {
	Backend string
	Method  string
	// Path filters by path prefix.
	Path string
	// Status filters by exact status code.
	Status int
	// MinStatus keeps entries with a status at or above it, e.g. 500.
	MinStatus int

	Limit  int
	Offset int
}

func (f *Filter) matches(e *Entry) bool {
	if f == nil {
		return true
	}
	switch {
	case f.Backend != "" && e.Backend != f.Backend:
		return false
	case f.Method != "" && !strings.EqualFold(e.Method, f.Method):
		return false
	case f.Path != "" && !strings.HasPrefix(e.Path, f.Path):
		return false
	case f.Status != 0 && e.Status != f.Status:
		return false
	case f.MinStatus != 0 && e.Status < f.MinStatus:
		return false
	}
	return true
}

// DefaultCapacity is the history size of NewMemoryStore(0).
const DefaultCapacity = 1000

// MemoryStore is a Store holding the most recent entries in a ring.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	next    int
	full    bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store keeping at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{entries: make([]*Entry, capacity)}
}

// Log records entry, evicting the oldest one when full.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
}

// Get implements Store.
func (s *MemoryStore) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *Entry
	s.each(func(e *Entry) bool {
		if e.ID == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// List implements Store.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Entry{}
	skipped := 0
	s.each(func(e *Entry) bool {
		if !filter.matches(e) {
			return true
		}
		if filter != nil && skipped < filter.Offset {
			skipped++
			return true
		}
		out = append(out, e)
		return filter == nil || filter.Limit <= 0 || len(out) < filter.Limit
	})
	return out
}

// Clear implements Store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	s.next = 0
	s.full = false
}

// Count implements Store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.full {
		return len(s.entries)
	}
	return s.next
}

// each visits entries newest first until fn returns false.
// The caller holds the lock.
func (s *MemoryStore) each(fn func(*Entry) bool) {
	n := s.next
	if s.full {
		n = len(s.entries)
	}
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		if !fn(s.entries[idx]) {
			return
		}
	}
}
