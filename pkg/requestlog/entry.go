package requestlog

import "time"

// Entry is one answered request.
type Entry struct {
	// ID is the request ID echoed in X-Request-Id.
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Method      string `json:"method"`
	Path        string `json:"path"`
	QueryString string `json:"queryString,omitempty"`
	RemoteAddr  string `json:"remoteAddr"`

	// Backend is the identifier owning the matched route, or "host".
	Backend string `json:"backend"`
	// Pattern is the route pattern that matched.
	Pattern string `json:"pattern,omitempty"`

	Status     int   `json:"status"`
	Bytes      int64 `json:"bytes"`
	DurationMs int64 `json:"durationMs"`
}
