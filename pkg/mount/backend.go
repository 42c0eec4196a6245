package mount

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/logging"
	"github.com/mphost/mph/pkg/metrics"
	"github.com/mphost/mph/pkg/render"
)

// Type is the descriptor type of this backend.
const Type = "app"

// Descriptor options and their defaults.
const (
	OptionEntryPoint           = "entry_point"
	OptionApplicationAttribute = "application_attribute"
	OptionModulePrefix         = "module_prefix"
	OptionMaxBodyBytes         = "max_body_bytes"

	DefaultEntryPoint           = "app.yaml"
	DefaultApplicationAttribute = "application"
	DefaultMaxBodyBytes         = 10 << 20
)

// Dispatch outcomes reported to metrics.
const (
	OutcomeOK        = "ok"
	OutcomeNoRoute   = "no_route"
	OutcomeNotFound  = "not_found"
	OutcomeLoadError = "load_error"
	OutcomeAppError  = "app_error"
	OutcomePanic     = "panic"
	OutcomeTooLarge  = "too_large"
)

// Backend mounts one sub-application per project.
type Backend struct {
	*backend.Base

	entryPoint   string
	attribute    string
	modulePrefix string
	maxBody      int64
	catalog      *Catalog
	pages        render.Pages
}

var _ backend.Backend = (*Backend)(nil)

// New is the backend.Factory for app descriptors, using DefaultCatalog.
func New(host *backend.Host, desc config.Descriptor) (backend.Backend, error) {
	return NewBackend(host, desc, DefaultCatalog)
}

// NewBackend builds a mount backend resolving applications in catalog.
func NewBackend(host *backend.Host, desc config.Descriptor, catalog *Catalog) (*Backend, error) {
	b := &Backend{
		entryPoint: desc.Options.String(OptionEntryPoint, DefaultEntryPoint),
		attribute:  desc.Options.String(OptionApplicationAttribute, DefaultApplicationAttribute),
		maxBody:    int64(desc.Options.Int(OptionMaxBodyBytes, DefaultMaxBodyBytes)),
		catalog:    catalog,
	}
	if !filepath.IsLocal(b.entryPoint) {
		return nil, fmt.Errorf("invalid %s %q", OptionEntryPoint, b.entryPoint)
	}
	if _, err := config.FormatFor(b.entryPoint); err != nil {
		return nil, fmt.Errorf("%s: %w", OptionEntryPoint, err)
	}
	if b.maxBody <= 0 {
		return nil, fmt.Errorf("%s must be positive", OptionMaxBodyBytes)
	}
	if b.catalog == nil {
		b.catalog = DefaultCatalog
	}

	base, err := backend.NewBase(host, desc, b.hasEntryPoint)
	if err != nil {
		return nil, err
	}
	b.Base = base
	b.modulePrefix = desc.Options.String(OptionModulePrefix, base.ID()+"_projects")
	b.pages = base.Host.Pages
	if b.pages == nil {
		if b.pages, err = render.NewTemplates(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Backend) hasEntryPoint(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, b.entryPoint))
	return err == nil && info.Mode().IsRegular()
}

// RegisterRoutes implements backend.Backend. Project routes accept every method.
func (b *Backend) RegisterRoutes(r backend.Router) error {
	p := b.Prefix()
	r.Handle("GET "+p, http.HandlerFunc(b.handleList))
	r.Handle("GET "+p+"/{$}", http.HandlerFunc(b.handleList))
	r.Handle(p+"/{project}", http.HandlerFunc(b.handleDispatch))
	r.Handle(p+"/{project}/{rest...}", http.HandlerFunc(b.handleDispatch))
	return nil
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	if err := b.pages.Render(w, http.StatusOK, render.PageList, render.ListData{Backend: backend.Summary(b)}); err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
	}
}

func (b *Backend) handleDispatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("project")
	log := logging.ForProject(b.Host.Logger, b.ID(), id)

	resp, outcome, err := b.dispatch(r, id, log)
	metrics.RecordDispatch(b.ID(), outcome)
	if err != nil {
		if outcome == OutcomeTooLarge {
			backend.WriteError(w, r, b.pages, log, &backend.RequestError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: "The request body is too large.",
				Cause:   err,
			})
			return
		}
		backend.WriteError(w, r, b.pages, log, err)
		return
	}
	writeResponse(w, resp)
}

// dispatch loads the project's application and forwards r to it.
func (b *Backend) dispatch(r *http.Request, id string, log *slog.Logger) (*Response, string, error) {
	dir, err := b.ProjectDir(id)
	if err != nil {
		return nil, OutcomeNotFound, err
	}

	app, err := b.load(id, dir, log)
	if err != nil {
		return nil, OutcomeLoadError, err
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, b.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, OutcomeTooLarge, err
		}
		return nil, OutcomeAppError, backend.Internal(fmt.Errorf("read request body: %w", err))
	}

	sub := "/" + r.PathValue("rest")
	req := &Request{
		Method:     r.Method,
		Path:       sub,
		RawQuery:   r.URL.RawQuery,
		Header:     r.Header.Clone(),
		Body:       body,
		RemoteAddr: r.RemoteAddr,
		Host:       r.Host,
	}

	resp, err := serve(r.Context(), app, req)
	switch {
	case errors.Is(err, ErrNoRoute):
		return nil, OutcomeNoRoute, backend.NotFound(err)
	case errors.Is(err, ErrApplicationPanic):
		return nil, OutcomePanic, backend.Internal(err)
	case err != nil:
		return nil, OutcomeAppError, backend.Internal(err)
	case resp == nil:
		return nil, OutcomeAppError, backend.Internal(errors.New("application returned no response"))
	}
	log.Debug("dispatched", "method", req.Method, "path", req.Path, "status", resp.Status)
	return resp, OutcomeOK, nil
}

// load builds the application of a project that already passed the
// existence check. Any failure here, including a manifest removed since
// that check, is an internal error.
func (b *Backend) load(id, dir string, log *slog.Logger) (Application, error) {
	app, err := b.Load(id, dir, log)
	if err != nil {
		return nil, backend.Internal(err)
	}
	return app, nil
}

// Load reads the entry-point manifest of project id and builds a fresh
// Application for it.
func (b *Backend) Load(id, dir string, log *slog.Logger) (Application, error) {
	manifestPath := filepath.Join(dir, b.entryPoint)
	manifest, err := config.DecodeFile(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEntryPointMissing, manifestPath)
		}
		return nil, fmt.Errorf("load %s: %w", manifestPath, err)
	}

	name := manifest.String(b.attribute, "")
	if name == "" {
		return nil, fmt.Errorf("%w: %s has no %q", ErrApplicationAttribute, manifestPath, b.attribute)
	}
	factory, err := b.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Namespace: b.modulePrefix + "." + id,
		ProjectID: id,
		Dir:       dir,
		Manifest:  manifest,
		Project:   b.LoadProjectConfig(id),
		Logger:    log.With(logging.KeyNamespace, b.modulePrefix+"."+id),
	}
	return build(factory, env)
}

func build(factory Factory, env *Env) (app Application, err error) {
	defer func() {
		if p := recover(); p != nil {
			app = nil
			err = fmt.Errorf("%w while loading %s: %v\n%s", ErrApplicationPanic, env.Namespace, p, debug.Stack())
		}
	}()
	app, err = factory(env)
	if err == nil && app == nil {
		err = fmt.Errorf("application factory for %s returned nil", env.Namespace)
	}
	return app, err
}

func serve(ctx context.Context, app Application, req *Request) (resp *Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			resp = nil
			err = fmt.Errorf("%w: %v\n%s", ErrApplicationPanic, p, debug.Stack())
		}
	}()
	return app.Serve(ctx, req)
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)
}
