package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/playgate/internal/core/domain"
	"github.com/yndnr/playgate/internal/core/service"
	"github.com/yndnr/playgate/internal/storage"
	"github.com/yndnr/playgate/internal/telemetry/logger"
	"github.com/yndnr/playgate/internal/telemetry/metric"
	"github.com/yndnr/playgate/internal/telemetry/tracer"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Recover turns a panic into a 500 through the translator.
func Recover(t *ErrorTranslator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					t.Translate(w, r, domain.ErrInternal.WithCause(fmt.Errorf("panic: %v", rec)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RequestID assigns a ULID request ID, or keeps a client-supplied
// X-Request-ID, and attaches a request-scoped logger.
func RequestID(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" || len(requestID) > 128 {
				requestID = ulid.Make().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = logger.WithLogger(ctx, base)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Trace starts a server span per request.
func Trace(tr *tracer.Tracer) Middleware {
	return func(next http.Handler) http.Handler {
		if tr == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tr.StartRequest(r)
			r = r.WithContext(ctx)
			defer func() {
				tracer.EndRequest(span, responseStatus(w), StageFromRequest(r))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records request count and latency by dispatch stage.
func Metrics(reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		if reg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			reg.RecordRequest(r.Method, StageFromRequest(r), responseStatus(w), time.Since(start))
		})
	}
}

// Audit logs one line per completed request.
func Audit(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			status := responseStatus(w)
			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"stage", StageFromRequest(r),
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", getClientIP(r),
			}

			switch {
			case status >= 500:
				base.Error("request completed with error", attrs...)
			case status >= 400:
				base.Warn("request completed with client error", attrs...)
			default:
				base.Info("request completed", attrs...)
			}
		})
	}
}

// RateLimit applies per-client-IP rate limiting. A nil registry disables it.
func RateLimit(limiters *service.RateLimiterRegistry, t *ErrorTranslator) Middleware {
	return func(next http.Handler) http.Handler {
		if limiters == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.Allow(getClientIP(r)) {
				t.Translate(w, r, domain.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Payload is the decoded request body.
type Payload struct {
	// MediaType is the parsed Content-Type without parameters.
	MediaType string

	// Form holds application/x-www-form-urlencoded fields.
	Form url.Values

	// JSON holds an application/json body.
	JSON json.RawMessage
}

// Decode unmarshals a JSON payload into v.
func (p *Payload) Decode(v any) error {
	if len(p.JSON) == 0 {
		return domain.ErrMalformedBody.WithMessage("request body is not JSON")
	}
	if err := json.Unmarshal(p.JSON, v); err != nil {
		return domain.ErrMalformedBody.WithCause(err)
	}
	return nil
}

type payloadKey struct{}

// PayloadFromContext returns the body decoded by BodyParser.
func PayloadFromContext(ctx context.Context) (*Payload, bool) {
	p, ok := ctx.Value(payloadKey{}).(*Payload)
	return p, ok
}

// BodyParser decodes URL-encoded and JSON bodies of at most limit bytes.
// Other media types pass through untouched. The raw body stays readable.
func BodyParser(limit int64, t *ErrorTranslator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || (mediaType != "application/json" && mediaType != "application/x-www-form-urlencoded") {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				t.Translate(w, r, domain.ErrBodyTooLarge)
				return
			}
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					t.Translate(w, r, domain.ErrBodyTooLarge)
					return
				}
				t.Translate(w, r, domain.ErrMalformedBody.WithCause(err))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))

			p := &Payload{MediaType: mediaType}
			switch mediaType {
			case "application/json":
				if err := parseJSONBody(raw, p); err != nil {
					t.Translate(w, r, err)
					return
				}
			case "application/x-www-form-urlencoded":
				form, err := url.ParseQuery(string(raw))
				if err != nil {
					t.Translate(w, r, domain.ErrMalformedBody.WithCause(err))
					return
				}
				p.Form = form
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), payloadKey{}, p)))
		})
	}
}

// parseJSONBody accepts only a top-level object or array. An empty body
// decodes to no payload.
func parseJSONBody(raw []byte, p *Payload) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return domain.ErrMalformedBody.WithCause(errors.New("top-level value must be an object or array"))
	}
	if !json.Valid(trimmed) {
		var v any
		return domain.ErrMalformedBody.WithCause(json.Unmarshal(trimmed, &v))
	}
	p.JSON = json.RawMessage(trimmed)
	return nil
}

type cookiesKey struct{}

// Cookies extracts request cookies into a map. Values are URL-unescaped
// when they decode cleanly.
func Cookies() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			jar := make(map[string]string)
			for _, c := range r.Cookies() {
				if _, seen := jar[c.Name]; seen {
					continue
				}
				v := c.Value
				if dec, err := url.PathUnescape(v); err == nil {
					v = dec
				}
				jar[c.Name] = v
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cookiesKey{}, jar)))
		})
	}
}

// CookiesFromContext returns the map built by Cookies.
func CookiesFromContext(ctx context.Context) map[string]string {
	jar, _ := ctx.Value(cookiesKey{}).(map[string]string)
	return jar
}

// corsAllowedHeaders are the only request headers a cross-origin caller may
// send.
var corsAllowedHeaders = []string{"Content-Type", "Authorization"}

const corsAllowedMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"

// CORS enforces a single-origin cross-origin policy with credentials.
// An empty origin (or "*") allows any origin.
func CORS(origin string, t *ErrorTranslator) Middleware {
	anyOrigin := origin == "" || origin == "*"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqOrigin := r.Header.Get("Origin")
			if reqOrigin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if !anyOrigin && reqOrigin != origin {
				t.Translate(w, r, domain.ErrForbiddenOrigin)
				return
			}

			if anyOrigin {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Set("Access-Control-Allow-Credentials", "true")

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			if requested := r.Header.Get("Access-Control-Request-Headers"); !corsHeadersAllowed(requested) {
				t.Translate(w, r, domain.ErrForbiddenOrigin.WithMessage("request headers not allowed"))
				return
			}
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			h.Set("Access-Control-Allow-Headers", strings.Join(corsAllowedHeaders, ","))
			h.Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func corsHeadersAllowed(requested string) bool {
	for _, name := range strings.Split(requested, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ok := false
		for _, allowed := range corsAllowedHeaders {
			if strings.EqualFold(name, allowed) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Authenticate runs check before next. On rejection it answers 401 and
// next never runs; on success the claims are stored in the request context.
// observe, when set, receives every verification outcome.
func Authenticate(check service.CapabilityCheck, t *ErrorTranslator, observe func(ok bool)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := check(r)
			if err == nil && claims == nil {
				err = errors.New("capability check returned no claims")
			}
			if observe != nil {
				observe(err == nil)
			}
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					err = domain.ErrUnauthorized.WithCause(err)
				}
				t.Translate(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(service.WithClaims(r.Context(), claims)))
		})
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	return service.ClaimsFromContext(ctx)
}

// WithStorage makes the storage handle available to handlers.
func WithStorage(h storage.Handle) Middleware {
	return func(next http.Handler) http.Handler {
		if h == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(storage.WithHandle(r.Context(), h)))
		})
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// net.SplitHostPort handles IPv6 addresses like [::1]:8080
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
