package registry

import "github.com/mphost/mph/pkg/backend"

// Set is the immutable identifier -> backend map produced by Load.
type Set struct {
	order []backend.Backend
	byID  map[string]backend.Backend
}

func newSet() *Set {
	return &Set{byID: make(map[string]backend.Backend)}
}

// add is only called while loading, before the Set is published.
func (s *Set) add(b backend.Backend) {
	s.order = append(s.order, b)
	s.byID[b.Info().Identifier] = b
}

func (s *Set) has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Get returns the backend registered under id.
func (s *Set) Get(id string) (backend.Backend, bool) {
	if s == nil {
		return nil, false
	}
	b, ok := s.byID[id]
	return b, ok
}

// List returns the backends in load order. The slice is a copy.
func (s *Set) List() []backend.Backend {
	if s == nil {
		return nil
	}
	out := make([]backend.Backend, len(s.order))
	copy(out, s.order)
	return out
}

// IDs returns the identifiers in load order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.order))
	for i, b := range s.order {
		ids[i] = b.Info().Identifier
	}
	return ids
}

// Len is the number of loaded backends.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
