package mount

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/resolve"
)

// Built-in application names.
const (
	AppRoutes = "routes"
	AppEcho   = "echo"
)

func init() {
	Register(AppRoutes, NewRoutes)
	Register(AppEcho, NewEcho)
}

// ErrInvalidRoute is returned for a malformed routes manifest.
var ErrInvalidRoute = errors.New("invalid route")

// route is one compiled entry of a routes manifest.
type route struct {
	method      string
	pattern     string
	when        *vm.Program
	status      int
	headers     map[string]string
	contentType string
	body        string
	bodyFile    string
}

// Routes answers requests from a declarative table in the manifest:
//
//	application: routes
//	routes:
//	  - method: GET
//	    path: /greet/*
//	    when: query.name != ""
//	    body: "hello {{request.query.name}}"
//
// The first matching route wins; a request matching none yields ErrNoRoute.
type Routes struct {
	env    *Env
	routes []route
	now    func() time.Time
}

// NewRoutes is the Factory of the routes application.
func NewRoutes(env *Env) (Application, error) {
	raw, ok := env.Manifest.Lookup("routes")
	if !ok {
		return &Routes{env: env, now: time.Now}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: routes must be a list", ErrInvalidRoute)
	}

	app := &Routes{env: env, routes: make([]route, 0, len(items)), now: time.Now}
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: routes[%d] must be a mapping", ErrInvalidRoute, i)
		}
		rt, err := compileRoute(config.Values(m))
		if err != nil {
			return nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
		app.routes = append(app.routes, rt)
	}
	return app, nil
}

func compileRoute(v config.Values) (route, error) {
	rt := route{
		method:      strings.ToUpper(v.String("method", "")),
		pattern:     v.String("path", ""),
		status:      v.Int("status", http.StatusOK),
		headers:     map[string]string{},
		contentType: v.String("content_type", ""),
		body:        v.String("body", ""),
		bodyFile:    v.String("body_file", ""),
	}
	if rt.method == "*" {
		rt.method = ""
	}
	if rt.pattern == "" || !strings.HasPrefix(rt.pattern, "/") {
		return rt, fmt.Errorf("%w: path %q must start with /", ErrInvalidRoute, rt.pattern)
	}
	if !doublestar.ValidatePattern(rt.pattern) {
		return rt, fmt.Errorf("%w: bad path pattern %q", ErrInvalidRoute, rt.pattern)
	}
	if rt.status < 100 || rt.status > 599 {
		return rt, fmt.Errorf("%w: status %d", ErrInvalidRoute, rt.status)
	}
	if rt.body != "" && rt.bodyFile != "" {
		return rt, fmt.Errorf("%w: body and body_file are exclusive", ErrInvalidRoute)
	}
	for k, val := range v.Map("headers") {
		rt.headers[k] = fmt.Sprint(val)
	}
	if when := v.String("when", ""); when != "" {
		program, err := expr.Compile(when, expr.Env(conditionEnv(&Request{Header: http.Header{}}, "")), expr.AsBool())
		if err != nil {
			return rt, fmt.Errorf("%w: when: %v", ErrInvalidRoute, err)
		}
		rt.when = program
	}
	return rt, nil
}

// conditionEnv is the variable set of a "when" expression.
func conditionEnv(req *Request, project string) map[string]any {
	query := map[string]string{}
	for k, vs := range req.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}
	header := map[string]string{}
	for k, vs := range req.Header {
		if len(vs) > 0 {
			header[strings.ToLower(k)] = vs[0]
		}
	}
	return map[string]any{
		"method":  req.Method,
		"path":    req.Path,
		"query":   query,
		"header":  header,
		"body":    string(req.Body),
		"project": project,
	}
}

func (rt *route) matches(req *Request, project string) (bool, error) {
	if rt.method != "" && rt.method != req.Method {
		return false, nil
	}
	ok, err := doublestar.Match(rt.pattern, req.Path)
	if err != nil || !ok {
		return false, err
	}
	if rt.when == nil {
		return true, nil
	}
	out, err := expr.Run(rt.when, conditionEnv(req, project))
	if err != nil {
		return false, fmt.Errorf("evaluate when: %w", err)
	}
	b, _ := out.(bool)
	return b, nil
}

// Serve implements Application.
func (a *Routes) Serve(_ context.Context, req *Request) (*Response, error) {
	for i := range a.routes {
		rt := &a.routes[i]
		ok, err := rt.matches(req, a.env.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", rt.pattern, err)
		}
		if ok {
			return a.respond(rt, req)
		}
	}
	return nil, ErrNoRoute
}

func (a *Routes) respond(rt *route, req *Request) (*Response, error) {
	tc := &templateContext{req: req, env: a.env, now: a.now}
	resp := &Response{Status: rt.status, Header: http.Header{}}

	switch {
	case rt.bodyFile != "":
		path, err := resolve.Contain(a.env.Dir, rt.bodyFile)
		if err != nil {
			return nil, fmt.Errorf("body_file %s: %w", rt.bodyFile, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("body_file %s: %w", rt.bodyFile, err)
		}
		resp.Body = data
	default:
		resp.Body = []byte(tc.expand(rt.body))
	}

	for k, v := range rt.headers {
		resp.Header.Set(k, tc.expand(v))
	}
	switch {
	case rt.contentType != "":
		resp.Header.Set("Content-Type", rt.contentType)
	case resp.Header.Get("Content-Type") == "" && len(resp.Body) > 0:
		resp.Header.Set("Content-Type", http.DetectContentType(resp.Body))
	}
	return resp, nil
}
