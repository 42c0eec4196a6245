package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/logging"
	"github.com/mphost/mph/pkg/metrics"
	"github.com/mphost/mph/pkg/registry"
	"github.com/mphost/mph/pkg/render"
	"github.com/mphost/mph/pkg/requestlog"
)

// Config holds the listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// HistorySize bounds the request history behind /api/requests.
	HistorySize int
}

// DefaultConfig returns the settings used when a field is zero.
func DefaultConfig() Config {
	return Config{
		Addr:            "0.0.0.0:5000",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		HistorySize:     requestlog.DefaultCapacity,
	}
}

// Server hosts every loaded backend behind one listener.
type Server struct {
	cfg      Config
	log      *slog.Logger
	host     *backend.Host
	routes   *RouteTable
	set      *registry.Set
	report   *registry.Report
	requests *requestlog.MemoryStore
	handler  http.Handler
	started  time.Time

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	done       chan struct{}
	serveErr   error
}

// New registers the host routes, loads every descriptor in descriptorDir
// and freezes the route table.
func New(cfg Config, host *backend.Host, descriptorDir string) (*Server, error) {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = def.HistorySize
	}
	if host == nil {
		host = &backend.Host{}
	}
	if host.Logger == nil {
		host.Logger = logging.Nop()
	}
	if host.Pages == nil {
		pages, err := render.NewTemplates()
		if err != nil {
			return nil, err
		}
		host.Pages = pages
	}
	metrics.Init()

	s := &Server{
		cfg:      cfg,
		log:      host.Logger,
		host:     host,
		routes:   NewRouteTable(),
		requests: requestlog.NewMemoryStore(cfg.HistorySize),
		started:  time.Now(),
	}
	s.registerHostRoutes()
	s.set, s.report = registry.Load(host, descriptorDir, s.routes)
	for _, b := range s.set.List() {
		info := b.Info()
		s.routes.SetOwner(info.URLPrefix, info.Identifier)
	}

	s.handler = Chain(s.routes,
		RequestID(),
		Observe(s.routes, s.log, s.requests),
		Recover(host.Pages, s.log),
	)
	return s, nil
}

// Handler is the complete handler including middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// Backends is the loaded registry.
func (s *Server) Backends() *registry.Set { return s.set }

// Report describes how the registry load went.
func (s *Server) Report() *registry.Report { return s.report }

// Requests is the request history.
func (s *Server) Requests() requestlog.Store { return s.requests }

// Routes is the frozen route table.
func (s *Server) Routes() *RouteTable { return s.routes }

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	s.done = make(chan struct{})

	s.log.Info("server listening", "addr", ln.Addr().String(), "backends", s.set.Len())
	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", "error", err)
			s.mu.Lock()
			s.serveErr = err
			s.mu.Unlock()
		}
	}(s.httpServer, s.done)
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.httpServer, s.done
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.log.Info("server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Run starts the server and shuts it down when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-done:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
