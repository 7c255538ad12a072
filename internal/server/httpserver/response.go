package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// whether anything was sent.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *responseWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.statusCode = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// requestInfo is per-request state shared between the dispatcher and the
// outer middlewares.
type requestInfo struct {
	stage string
}

type requestInfoKey struct{}

// trackResponse installs the response wrapper and request info. It must be
// the outermost middleware.
func trackResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(*responseWriter); !ok {
			w = &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		}
		if _, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); !ok {
			ctx := context.WithValue(r.Context(), requestInfoKey{}, &requestInfo{stage: "chain"})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// unwrapTracked finds the tracking wrapper under any number of Unwrap layers.
func unwrapTracked(w http.ResponseWriter) *responseWriter {
	for w != nil {
		if rw, ok := w.(*responseWriter); ok {
			return rw
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return nil
		}
		w = u.Unwrap()
	}
	return nil
}

// responseWritten reports whether a response was already started on w.
func responseWritten(w http.ResponseWriter) bool {
	rw := unwrapTracked(w)
	return rw != nil && rw.written
}

// responseStatus returns the status sent on w, or 200.
func responseStatus(w http.ResponseWriter) int {
	if rw := unwrapTracked(w); rw != nil {
		return rw.statusCode
	}
	return http.StatusOK
}

func setStage(r *http.Request, stage string) {
	if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
		info.stage = stage
	}
}

// StageFromRequest returns the dispatch stage that served r.
func StageFromRequest(r *http.Request) string {
	if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
		return info.stage
	}
	return ""
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
