package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yndnr/playgate/internal/core/domain"
	"github.com/yndnr/playgate/internal/telemetry/logger"
)

// HandlerFunc is a route handler that reports failure by returning an
// error instead of writing it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// notFoundBody is the fixed body for unmatched requests.
type notFoundBody struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// errorBody is the body written by the ErrorTranslator. Status always
// mirrors the HTTP status code as a decimal string, the same field the
// 404 body carries; error codes travel in the X-Error-Code header instead.
type errorBody struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// NotFound answers every request it receives with the fixed 404 body,
// unless a response was already started.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if responseWritten(w) {
			return
		}
		_ = writeJSON(w, http.StatusNotFound, notFoundBody{
			Message: "404 - Not Found",
			Status:  "404",
		})
	})
}

// ErrorTranslator turns errors into JSON responses. It is the only place
// that formats user-visible errors.
type ErrorTranslator struct {
	logger *slog.Logger
}

// NewErrorTranslator creates an ErrorTranslator.
func NewErrorTranslator(l *slog.Logger) *ErrorTranslator {
	if l == nil {
		l = slog.Default()
	}
	return &ErrorTranslator{logger: l}
}

// Translate writes err to w. The status is the one declared by err, or 500.
// If a response was already started the error is only logged.
func (t *ErrorTranslator) Translate(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	status := domain.StatusOf(err)

	l := t.logger
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		l = l.With("request_id", id)
	}
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	}

	if responseWritten(w) {
		l.Warn("error after response was written", attrs...)
		return
	}
	if status >= http.StatusInternalServerError {
		l.Error("request failed", attrs...)
	} else {
		l.Debug("request rejected", attrs...)
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "1")
	}
	if code := domain.GetErrorCode(err); code != "" {
		w.Header().Set("X-Error-Code", code)
	}
	if werr := writeJSON(w, status, errorBody{
		Error:  clientMessage(err),
		Status: strconv.Itoa(status),
	}); werr != nil {
		l.Error("failed to encode error response", "error", werr)
	}
}

// Handle adapts h to http.Handler, translating its returned error.
func (t *ErrorTranslator) Handle(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			t.Translate(w, r, err)
		}
	})
}

// clientMessage picks the message shown to the client: the declared
// message for an HTTPError, the error text otherwise.
func clientMessage(err error) string {
	var he *domain.HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return err.Error()
}
