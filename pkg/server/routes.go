package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// ErrFrozen is the panic value of Handle on a frozen RouteTable.
var ErrFrozen = errors.New("route table is frozen")

// RouteTable is an http.ServeMux that refuses registration once frozen.
type RouteTable struct {
	mu       sync.Mutex
	mux      *http.ServeMux
	patterns []string
	owners   map[string]string
	frozen   bool
}

// NewRouteTable creates an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{mux: http.NewServeMux(), owners: make(map[string]string)}
}

// Handle registers h. It panics after Freeze, and on patterns ServeMux rejects.
func (t *RouteTable) Handle(pattern string, h http.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		panic(ErrFrozen)
	}
	t.mux.Handle(pattern, h)
	t.patterns = append(t.patterns, pattern)
}

// HandleFunc registers f.
func (t *RouteTable) HandleFunc(pattern string, f func(http.ResponseWriter, *http.Request)) {
	t.Handle(pattern, http.HandlerFunc(f))
}

// Patterns returns the registered patterns in registration order.
func (t *RouteTable) Patterns() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.patterns))
	copy(out, t.patterns)
	return out
}

// Freeze stops further registration.
func (t *RouteTable) Freeze() {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (t *RouteTable) Frozen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frozen
}

// SetOwner labels every pattern below prefix with owner for metrics and logs.
func (t *RouteTable) SetOwner(prefix, owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.owners[prefix] = owner
}

// Owner returns the label of the backend a matched pattern belongs to, or
// "host" for the host's own routes.
func (t *RouteTable) Owner(pattern string) string {
	if pattern == "" {
		return "host"
	}
	path := pattern
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		path = pattern[i+1:]
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	prefixes := make([]string, 0, len(t.owners))
	for p := range t.owners {
		prefixes = append(prefixes, p)
	}
	// Longest prefix first.
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return t.owners[p]
		}
	}
	return "host"
}

func (t *RouteTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.mux.ServeHTTP(w, r)
}
