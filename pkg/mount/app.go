package mount

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
)

var (
	// ErrNoRoute is returned by an Application that has no handler for a request.
	ErrNoRoute = errors.New("no route")

	// ErrEntryPointMissing is returned when a project has no entry-point manifest.
	ErrEntryPointMissing = errors.New("entry point missing")

	// ErrApplicationAttribute is returned when the manifest does not name an application.
	ErrApplicationAttribute = errors.New("manifest does not name an application")

	// ErrUnknownApplication is returned when no factory is registered under the name.
	ErrUnknownApplication = errors.New("unknown application")

	// ErrApplicationPanic wraps a recovered panic.
	ErrApplicationPanic = errors.New("application panicked")
)

// Request is the host-independent view of an inbound request.
type Request struct {
	Method string
	// Path is the sub-path below the project, always starting with "/".
	Path       string
	RawQuery   string
	Header     http.Header
	Body       []byte
	RemoteAddr string
	Host       string
}

// Query parses RawQuery.
func (r *Request) Query() url.Values {
	q, _ := url.ParseQuery(r.RawQuery)
	return q
}

// Response is written to the client verbatim.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Application serves the requests of one project.
type Application interface {
	Serve(ctx context.Context, req *Request) (*Response, error)
}

// ApplicationFunc adapts a function to Application.
type ApplicationFunc func(ctx context.Context, req *Request) (*Response, error)

// Serve implements Application.
func (f ApplicationFunc) Serve(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HandlerApplication adapts a plain http.Handler. A 404 from the handler
// is reported as ErrNoRoute so the host answers with its own page.
func HandlerApplication(h http.Handler) Application {
	return ApplicationFunc(func(ctx context.Context, req *Request) (*Response, error) {
		target := req.Path
		if req.RawQuery != "" {
			target += "?" + req.RawQuery
		}
		r, err := http.NewRequestWithContext(ctx, req.Method, target, bytes.NewReader(req.Body))
		if err != nil {
			return nil, err
		}
		r.Header = req.Header.Clone()
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.RemoteAddr = req.RemoteAddr
		r.Host = req.Host
		r.RequestURI = target

		w := &bufferedWriter{header: http.Header{}}
		h.ServeHTTP(w, r)
		if w.status == 0 {
			w.status = http.StatusOK
		}
		if w.status == http.StatusNotFound {
			return nil, ErrNoRoute
		}
		return &Response{Status: w.status, Header: w.header, Body: w.body.Bytes()}, nil
	})
}

// bufferedWriter collects a handler's response in memory.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}
