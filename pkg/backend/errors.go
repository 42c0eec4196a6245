package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mphost/mph/pkg/httputil"
	"github.com/mphost/mph/pkg/render"
	"github.com/mphost/mph/pkg/resolve"
)

var (
	// ErrNotFound maps to a 404 page.
	ErrNotFound = errors.New("not found")

	// ErrInternal maps to a 500 page.
	ErrInternal = errors.New("internal error")
)

// Messages shown to clients. Causes are only logged.
const (
	MsgNotFound = "The page you requested does not exist."
	MsgInternal = "Something went wrong while handling this request."
)

// RequestError is an error with the status a handler should answer with.
type RequestError struct {
	Status  int
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, http.StatusText(e.Status), e.Cause)
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

func (e *RequestError) Unwrap() error { return e.Cause }

// NotFound wraps cause as a 404.
func NotFound(cause error) *RequestError {
	return &RequestError{Status: http.StatusNotFound, Message: MsgNotFound, Cause: cause}
}

// Internal wraps cause as a 500.
func Internal(cause error) *RequestError {
	return &RequestError{Status: http.StatusInternalServerError, Message: MsgInternal, Cause: cause}
}

// StatusOf maps err to an HTTP status.
func StatusOf(err error) int {
	var re *RequestError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &re):
		return re.Status
	case errors.Is(err, ErrNotFound), errors.Is(err, resolve.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders the error page for err. Server errors are logged with
// their cause; the client only sees a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, pages render.Pages, log *slog.Logger, err error) {
	status := StatusOf(err)
	message := MsgNotFound
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		message = re.Message
	} else if status >= http.StatusInternalServerError {
		message = MsgInternal
	}

	id := httputil.RequestID(r.Context())
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", id, "error", err)
	}
	render.WriteError(pages, w, status, message, id)
}
