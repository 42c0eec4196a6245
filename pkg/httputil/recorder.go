package httputil

import "net/http"

// StatusRecorder captures the status code and body size written through it.
type StatusRecorder struct {
	http.ResponseWriter
	status  int
	started bool
	written int64
}

// NewStatusRecorder wraps w. The status defaults to 200.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code.
func (s *StatusRecorder) WriteHeader(code int) {
	if !s.started {
		s.status = code
		s.started = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *StatusRecorder) Write(b []byte) (int, error) {
	s.started = true
	n, err := s.ResponseWriter.Write(b)
	s.written += int64(n)
	return n, err
}

// Flush implements http.Flusher when the wrapped writer does.
func (s *StatusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (s *StatusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Status is the code sent to the client.
func (s *StatusRecorder) Status() int { return s.status }

// Written is the number of body bytes written.
func (s *StatusRecorder) Written() int64 { return s.written }

// Started reports whether the response has begun.
func (s *StatusRecorder) Started() bool { return s.started }
