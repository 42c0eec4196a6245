package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrImplementationExists is returned when a name is registered twice.
	ErrImplementationExists = errors.New("implementation already registered")

	// ErrUnknownImplementation is returned for names nothing registered.
	ErrUnknownImplementation = errors.New("unknown implementation")
)

var (
	implMu          sync.RWMutex
	implementations = map[string]Factory{}
)

// RegisterImplementation makes a Factory available to descriptors whose
// implementation key equals name. Call it from an init function.
func RegisterImplementation(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register implementation: empty name or nil factory")
	}
	implMu.Lock()
	defer implMu.Unlock()
	if _, ok := implementations[name]; ok {
		return fmt.Errorf("%w: %s", ErrImplementationExists, name)
	}
	implementations[name] = f
	return nil
}

// MustRegisterImplementation is RegisterImplementation for init functions.
func MustRegisterImplementation(name string, f Factory) {
	if err := RegisterImplementation(name, f); err != nil {
		panic(err)
	}
}

// LookupImplementation returns the Factory registered under name.
func LookupImplementation(name string) (Factory, error) {
	implMu.RLock()
	defer implMu.RUnlock()
	f, ok := implementations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImplementation, name)
	}
	return f, nil
}

// Implementations lists the registered names, sorted.
func Implementations() []string {
	implMu.RLock()
	defer implMu.RUnlock()
	names := make([]string, 0, len(implementations))
	for name := range implementations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

