package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/httputil"
	"github.com/mphost/mph/pkg/registry"
)

const panicImplementation = "example.com/server-test:Panicking"

func init() {
	backend.MustRegisterImplementation(panicImplementation, func(host *backend.Host, desc config.Descriptor) (backend.Backend, error) {
		base, err := backend.NewBase(host, desc, nil)
		if err != nil {
			return nil, err
		}
		return &panicking{Base: base}, nil
	})
}

type panicking struct {
	*backend.Base
}

func (p *panicking) RegisterRoutes(r backend.Router) error {
	r.Handle("GET "+p.Prefix()+"/{$}", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))
	return nil
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func newServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"configs/docs.yaml":            "type: document\nidentifier: docs\nlabel: Handbooks\n",
		"configs/apps.yaml":            "type: app\nidentifier: apps\n",
		"configs/boom.yaml":            "implementation: " + panicImplementation + "\nidentifier: boom\n",
		"configs/clash.yaml":           "type: static\nidentifier: clash\nurl_prefix: /healthz\n",
		"projects/docs/guide/a.md":     "# A\n",
		"projects/apps/hello/app.yaml": "application: routes\nroutes:\n  - path: /\n    body: hi\n",
	})

	s, err := New(Config{Addr: "127.0.0.1:0"}, &backend.Host{
		RootDir:         root,
		ProjectsBaseDir: filepath.Join(root, "projects"),
	}, filepath.Join(root, "configs"))
	require.NoError(t, err)
	return s
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestLoadsBackendsAndFreezes(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, []string{"apps", "boom", "docs"}, s.Backends().IDs())
	require.Len(t, s.Report().Skips, 1)
	assert.Contains(t, s.Report().Skips[0].File, "clash.yaml")
	assert.True(t, s.Routes().Frozen())
	assert.PanicsWithValue(t, ErrFrozen, func() {
		s.Routes().Handle("GET /late", http.NotFoundHandler())
	})
}

func TestBackendUnderHostAPIIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"configs/api.yaml":               "type: app\nidentifier: api\n",
		"projects/api/backends/app.yaml": "application: echo\n",
	})
	s, err := New(Config{Addr: "127.0.0.1:0"}, &backend.Host{
		RootDir:         root,
		ProjectsBaseDir: filepath.Join(root, "projects"),
	}, filepath.Join(root, "configs"))
	require.NoError(t, err)

	assert.Zero(t, s.Backends().Len())
	require.Len(t, s.Report().Skips, 1)
	assert.Equal(t, registry.ReasonRoutes, s.Report().Skips[0].Reason)
	assert.ErrorIs(t, s.Report().Skips[0], registry.ErrRouteConflict)

	rec := serve(s, http.MethodGet, "/api/backends")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHomeListsEveryBackend(t *testing.T) {
	s := newServer(t)

	rec := serve(s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Handbooks")
	assert.Contains(t, body, `href="/docs/guide"`)
	assert.Contains(t, body, `href="/apps/hello"`)
	assert.NotEmpty(t, rec.Header().Get(httputil.RequestIDHeader))
}

func TestBackendsAPI(t *testing.T) {
	s := newServer(t)

	rec := serve(s, http.MethodGet, "/api/backends")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp BackendsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "apps", resp.Backends[0].Identifier)
	assert.Equal(t, "/apps", resp.Backends[0].URLPrefix)
	require.Len(t, resp.Backends[0].Projects, 1)
	assert.Equal(t, "hello", resp.Backends[0].Projects[0].ID)
	assert.Empty(t, resp.Backends[1].Projects)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	rec := serve(s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Backends)
	assert.Equal(t, 1, health.Skipped)

	serve(s, http.MethodGet, "/apps/hello/")
	rec = serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `mph_requests_total{backend="apps",status="200"}`)
	assert.Contains(t, body, `mph_mount_dispatch_total{backend="apps",outcome="ok"}`)
	assert.Contains(t, body, "mph_backends_loaded")
}

func TestDispatchThroughMiddleware(t *testing.T) {
	s := newServer(t)

	rec := serve(s, http.MethodGet, "/apps/hello/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())

	rec = serve(s, http.MethodGet, "/docs/guide/a")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnmatchedIsHostNotFound(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/nowhere", "/docs/guide/missing", "/apps/ghost/"} {
		rec := serve(s, http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), backend.MsgNotFound, path)
		assert.Contains(t, rec.Body.String(), rec.Header().Get(httputil.RequestIDHeader), path)
	}
}

func TestPanicBecomesServerError(t *testing.T) {
	s := newServer(t)

	rec := serve(s, http.MethodGet, "/boom/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), backend.MsgInternal)
	assert.NotContains(t, rec.Body.String(), "exploded")

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/healthz").Code)
}

func TestIncomingRequestIDIsKept(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httputil.RequestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(httputil.RequestIDHeader))
}

func TestOwner(t *testing.T) {
	rt := NewRouteTable()
	rt.SetOwner("/docs", "docs")
	rt.SetOwner("/docs/archive", "archive")

	assert.Equal(t, "docs", rt.Owner("GET /docs/{project}"))
	assert.Equal(t, "docs", rt.Owner("GET /docs"))
	assert.Equal(t, "archive", rt.Owner("GET /docs/archive/{project}"))
	assert.Equal(t, "host", rt.Owner("GET /docsx"))
	assert.Equal(t, "host", rt.Owner(""))
}

func TestStartAndShutdown(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", s.Addr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRequestHistory(t *testing.T) {
	s := newServer(t)

	serve(s, http.MethodGet, "/apps/hello/")
	serve(s, http.MethodGet, "/nowhere")
	req := httptest.NewRequest(http.MethodGet, "/docs/guide/a", nil)
	req.Header.Set(httputil.RequestIDHeader, "doc-1")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	rec := serve(s, http.MethodGet, "/api/requests?backend=apps")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RequestsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "/apps/hello/", resp.Requests[0].Path)
	assert.Equal(t, http.StatusOK, resp.Requests[0].Status)
	assert.Equal(t, "/apps/{project}/{rest...}", resp.Requests[0].Pattern)

	rec = serve(s, http.MethodGet, "/api/requests?status=404")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "host", resp.Requests[0].Backend)

	rec = serve(s, http.MethodGet, "/api/requests/doc-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"docs"`)

	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/api/requests/unknown").Code)
	assert.Equal(t, http.StatusBadRequest, serve(s, http.MethodGet, "/api/requests?limit=-1").Code)
}
