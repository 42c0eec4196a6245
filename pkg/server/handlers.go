package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/httputil"
	"github.com/mphost/mph/pkg/metrics"
	"github.com/mphost/mph/pkg/render"
	"github.com/mphost/mph/pkg/requestlog"
)

// Host route patterns, registered before any backend.
const (
	PatternHome     = "GET /{$}"
	PatternBackends = "GET /api/backends"
	PatternRequests = "GET /api/requests"
	PatternRequest  = "GET /api/requests/{id}"
	PatternHealth   = "GET /healthz"
	PatternMetrics  = "GET /metrics"
	PatternFallback = "/"
)

func (s *Server) registerHostRoutes() {
	s.routes.HandleFunc(PatternHome, s.handleHome)
	s.routes.HandleFunc(PatternBackends, s.handleBackends)
	s.routes.HandleFunc(PatternRequests, s.handleRequests)
	s.routes.HandleFunc(PatternRequest, s.handleRequest)
	s.routes.HandleFunc(PatternHealth, s.handleHealth)
	s.routes.HandleFunc(PatternMetrics, s.handleMetrics)
	s.routes.HandleFunc(PatternFallback, s.handleNotFound)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := render.HomeData{Backends: make([]render.Backend, 0, s.set.Len())}
	for _, b := range s.set.List() {
		data.Backends = append(data.Backends, backend.Summary(b))
	}
	if err := s.host.Pages.Render(w, http.StatusOK, render.PageHome, data); err != nil {
		backend.WriteError(w, r, s.host.Pages, s.log, err)
	}
}

// BackendView is one entry of GET /api/backends.
type BackendView struct {
	backend.Info
	Projects []backend.Project `json:"projects"`
}

// BackendsResponse is the body of GET /api/backends.
type BackendsResponse struct {
	Backends []BackendView `json:"backends"`
	Count    int           `json:"count"`
}

func (s *Server) handleBackends(w http.ResponseWriter, _ *http.Request) {
	resp := BackendsResponse{Backends: make([]BackendView, 0, s.set.Len())}
	for _, b := range s.set.List() {
		projects := b.ListProjects()
		if projects == nil {
			projects = []backend.Project{}
		}
		resp.Backends = append(resp.Backends, BackendView{Info: b.Info(), Projects: projects})
	}
	resp.Count = len(resp.Backends)
	httputil.WriteOK(w, resp)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Backends int    `json:"backends"`
	Skipped  int    `json:"skipped"`
	Uptime   int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, HealthResponse{
		Status:   "ok",
		Backends: s.set.Len(),
		Skipped:  len(s.report.Skips),
		Uptime:   int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	reg := metrics.DefaultRegistry()
	if reg == nil {
		httputil.WriteNotFound(w, "metrics_disabled", "metrics are not enabled")
		return
	}
	reg.Handler().ServeHTTP(w, r)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	render.WriteError(s.host.Pages, w, http.StatusNotFound, backend.MsgNotFound, httputil.RequestID(r.Context()))
}

// DefaultRequestLimit caps /api/requests without a limit parameter.
const DefaultRequestLimit = 100

// RequestsResponse is the body of GET /api/requests.
type RequestsResponse struct {
	Requests []*requestlog.Entry `json:"requests"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &requestlog.Filter{
		Backend: q.Get("backend"),
		Method:  q.Get("method"),
		Path:    q.Get("path"),
		Limit:   DefaultRequestLimit,
	}
	for name, dst := range map[string]*int{
		"status":     &filter.Status,
		"min_status": &filter.MinStatus,
		"limit":      &filter.Limit,
		"offset":     &filter.Offset,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, http.StatusBadRequest, "invalid_parameter", name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	entries := s.requests.List(filter)
	httputil.WriteOK(w, RequestsResponse{Requests: entries, Count: len(entries), Total: s.requests.Count()})
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	e := s.requests.Get(r.PathValue("id"))
	if e == nil {
		httputil.WriteNotFound(w, "not_found", "no request with that id")
		return
	}
	httputil.WriteOK(w, e)
}
