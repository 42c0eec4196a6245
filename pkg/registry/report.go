package registry

import (
	"errors"
	"fmt"
)

// Skip reasons, also used as the metrics label.
const (
	ReasonLoadError             = "load_error"
	ReasonMissingType           = "missing_type"
	ReasonUnknownType           = "unknown_type"
	ReasonUnknownImplementation = "unknown_implementation"
	ReasonConstructor           = "constructor"
	ReasonDuplicateIdentifier   = "duplicate_identifier"
	ReasonEnvironment           = "environment"
	ReasonRoutes                = "routes"
)

var (
	// ErrMissingType is reported for descriptors with neither type nor implementation.
	ErrMissingType = errors.New("descriptor has no type")

	// ErrUnknownType is reported for types not in the built-in table.
	ErrUnknownType = errors.New("unknown backend type")

	// ErrDuplicateIdentifier is reported when an identifier is already registered.
	ErrDuplicateIdentifier = errors.New("identifier already registered")

	// ErrRouteConflict is reported when a backend's routes clash with registered ones.
	ErrRouteConflict = errors.New("route conflict")
)

// Skip describes one descriptor that was not loaded.
type Skip struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (s *Skip) Error() string {
	return fmt.Sprintf("%s: %s: %v", s.File, s.Reason, s.Err)
}

func (s *Skip) Unwrap() error { return s.Err }

// Report summarizes one Load.
type Report struct {
	// Files are the descriptor files considered, in load order.
	Files []string `json:"files"`
	// Loaded are the identifiers registered, in load order.
	Loaded []string `json:"loaded"`
	Skips  []*Skip  `json:"skips,omitempty"`
}

// Skipped returns the skip recorded for file, if any.
func (r *Report) Skipped(file string) (*Skip, bool) {
	for _, s := range r.Skips {
		if s.File == file {
			return s, true
		}
	}
	return nil, false
}
