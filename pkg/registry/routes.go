package registry

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mphost/mph/pkg/backend"
)

// Patterner is implemented by routers that can report the patterns
// registered before Load, such as the host's own routes.
type Patterner interface {
	Patterns() []string
}

// Freezer is implemented by routers that refuse registration once frozen.
type Freezer interface {
	Freeze()
}

type route struct {
	pattern string
	handler http.Handler
}

// stage collects a backend's routes without touching the real router.
type stage struct {
	routes []route
}

func (s *stage) Handle(pattern string, h http.Handler) {
	s.routes = append(s.routes, route{pattern: pattern, handler: h})
}

// routeSet tracks every committed pattern so a candidate backend can be
// checked against all of them before anything reaches the real router.
type routeSet struct {
	patterns []string
}

// check replays the committed patterns and the staged ones on a scratch
// mux. ServeMux panics on a conflicting or malformed pattern. Patterns that
// the mux accepts can still shadow each other ("/api/{project}" next to
// "GET /api/backends"), so staged literal prefixes must also stay clear of
// every committed one.
func (rs *routeSet) check(s *stage) error {
	if err := rs.replay(s); err != nil {
		return err
	}
	for _, r := range s.routes {
		head := literalPrefix(r.pattern)
		for _, p := range rs.patterns {
			if nested(head, literalPrefix(p)) {
				return fmt.Errorf("%w: %q overlaps %q", ErrRouteConflict, r.pattern, p)
			}
		}
	}
	return nil
}

func (rs *routeSet) replay(s *stage) (err error) {
	scratch := http.NewServeMux()
	current := ""
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %q: %v", ErrRouteConflict, current, p)
		}
	}()
	for _, p := range rs.patterns {
		current = p
		scratch.Handle(p, http.NotFoundHandler())
	}
	for _, r := range s.routes {
		current = r.pattern
		if r.handler == nil {
			return fmt.Errorf("%w: %q has no handler", ErrRouteConflict, r.pattern)
		}
		scratch.Handle(r.pattern, http.NotFoundHandler())
	}
	return nil
}

// literalPrefix returns the path of pattern up to its first wildcard, without
// method, host or trailing slash. The root yields "/".
func literalPrefix(pattern string) string {
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		pattern = strings.TrimSpace(pattern[i+1:])
	}
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		pattern = pattern[i:]
	}
	var segs []string
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			break
		}
		segs = append(segs, seg)
	}
	return "/" + strings.Join(segs, "/")
}

// nested reports whether one prefix equals or contains the other. The root
// is shared by every route and never counts.
func nested(a, b string) bool {
	if a == "/" || b == "/" {
		return false
	}
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func (rs *routeSet) commit(router backend.Router, s *stage) {
	for _, r := range s.routes {
		router.Handle(r.pattern, r.handler)
		rs.patterns = append(rs.patterns, r.pattern)
	}
}
