package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/httputil"
	"github.com/mphost/mph/pkg/logging"
	"github.com/mphost/mph/pkg/metrics"
	"github.com/mphost/mph/pkg/render"
	"github.com/mphost/mph/pkg/requestlog"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID assigns every request an ID and echoes it in X-Request-Id.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, httputil.EnsureRequestID(w, r))
		})
	}
}

// Recover turns a panic into the host's 500 page.
func Recover(pages render.Pages, log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := httputil.NewStatusRecorder(w)
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}
				log.Error("handler panicked",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", httputil.RequestID(r.Context()),
					"panic", p,
					"stack", string(debug.Stack()),
				)
				if !rec.Started() {
					render.WriteError(pages, rec, http.StatusInternalServerError, backend.MsgInternal, httputil.RequestID(r.Context()))
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// Observe logs every request and records it in metrics and history,
// labelled with the backend owning the matched route.
func Observe(routes *RouteTable, log *slog.Logger, history requestlog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := httputil.NewStatusRecorder(w)
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			owner := routes.Owner(r.Pattern)
			metrics.ObserveRequest(owner, rec.Status(), elapsed.Seconds())
			if history != nil {
				history.Log(&requestlog.Entry{
					ID:          httputil.RequestID(r.Context()),
					Timestamp:   start,
					Method:      r.Method,
					Path:        r.URL.Path,
					QueryString: r.URL.RawQuery,
					RemoteAddr:  r.RemoteAddr,
					Backend:     owner,
					Pattern:     r.Pattern,
					Status:      rec.Status(),
					Bytes:       rec.Written(),
					DurationMs:  elapsed.Milliseconds(),
				})
			}

			level := slog.LevelInfo
			if rec.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.Status(),
				"bytes", rec.Written(),
				"duration_ms", float64(elapsed.Microseconds())/1000,
				logging.KeyBackend, owner,
				"request_id", httputil.RequestID(r.Context()),
			)
		})
	}
}
