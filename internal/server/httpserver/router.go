package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yndnr/playgate/internal/core/service"
	"github.com/yndnr/playgate/internal/server/httpserver/handler"
	"github.com/yndnr/playgate/internal/storage"
	"github.com/yndnr/playgate/internal/telemetry/metric"
	"github.com/yndnr/playgate/internal/telemetry/tracer"
)

// Dispatch stage names.
const (
	StageProtected        = "protected"
	StageStatic           = "static"
	StagePublic           = "public"
	StagePasswordRecovery = "password_recovery"
	StageAuthenticated    = "authenticated"
)

// DefaultBodyLimit is the BodyParser limit used when none is configured.
const DefaultBodyLimit = 100 << 10

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Logger for request and error logging.
	Logger *slog.Logger

	// Metrics and Tracer are optional.
	Metrics *metric.Registry
	Tracer  *tracer.Tracer

	// Storage is exposed to handlers through the request context.
	Storage storage.Handle

	// Readiness backs GET /ready.
	Readiness handler.StorageStatus

	// Auth verifies credentials for protected and authenticated routes.
	Auth service.CapabilityCheck

	// CORSOrigin is the single allowed origin. Empty allows any.
	CORSOrigin string

	// BodyLimit caps decoded bodies (default: 100 KiB).
	BodyLimit int64

	// RateLimit is requests per second per client IP. 0 disables it.
	RateLimit int

	// StaticDir is served at the root. Empty disables static files.
	StaticDir string

	// PasswordRecovery is the mount point for the password recovery routes.
	PasswordRecovery []Route

	// Authenticated routes are added after the built-in ones.
	Authenticated []Route

	// Realtime, when set, is served at RealtimePath ahead of the chain.
	Realtime     http.Handler
	RealtimePath string
}

// NewRouter builds the full request pipeline.
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	if cfg.Auth == nil {
		return nil, errors.New("httpserver: router needs a capability check")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	limit := cfg.BodyLimit
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	t := NewErrorTranslator(log)
	var metricsHandler http.Handler
	var observe func(bool)
	if cfg.Metrics != nil {
		metricsHandler = cfg.Metrics.Handler()
		observe = func(ok bool) {
			if ok {
				cfg.Metrics.RecordAuth("ok")
			} else {
				cfg.Metrics.RecordAuth("rejected")
			}
		}
	}
	auth := Authenticate(cfg.Auth, t, observe)
	h := handler.New(cfg.Readiness, metricsHandler, log)

	// The protected table runs ahead of static files so that a credential
	// is required even when a file of the same name exists. HEAD is listed
	// because the static stage would otherwise answer it.
	protected := NewRouteTable(StageProtected, t).WithAuth(auth, false).Add(
		Route{Method: http.MethodGet, Pattern: "/game.html", Handler: handler.EchoClaims, RequireAuth: true},
		Route{Method: http.MethodHead, Pattern: "/game.html", Handler: handler.EchoClaims, RequireAuth: true},
	)

	public := NewRouteTable(StagePublic, t).Add(
		Route{Method: http.MethodGet, Pattern: "/health", Handler: h.Health},
		Route{Method: http.MethodGet, Pattern: "/ready", Handler: h.Ready},
		Route{Method: http.MethodGet, Pattern: "/version", Handler: h.Version},
		Route{Method: http.MethodGet, Pattern: "/metrics", Handler: h.Metrics},
	)

	password := NewRouteTable(StagePasswordRecovery, t).Add(cfg.PasswordRecovery...)

	authenticated := NewRouteTable(StageAuthenticated, t).WithAuth(auth, true).Add(
		Route{Method: http.MethodGet, Pattern: "/session", Handler: handler.EchoClaims},
	).Add(cfg.Authenticated...)

	stages := []Stage{protected}
	if cfg.StaticDir != "" {
		stages = append(stages, NewStatic(cfg.StaticDir))
	}
	stages = append(stages, public, password, authenticated)

	dispatcher := NewDispatcher(NotFound(), stages...)

	var limiters *service.RateLimiterRegistry
	if cfg.RateLimit > 0 {
		limiters = service.NewRateLimiterRegistry(cfg.RateLimit)
	}

	pipeline := Chain(dispatcher,
		trackResponse,
		Recover(t),
		RequestID(log),
		Trace(cfg.Tracer),
		Metrics(cfg.Metrics),
		Audit(log),
		RateLimit(limiters, t),
		BodyParser(limit, t),
		Cookies(),
		CORS(cfg.CORSOrigin, t),
		WithStorage(cfg.Storage),
	)

	if cfg.Realtime == nil || cfg.RealtimePath == "" {
		return pipeline, nil
	}

	root := chi.NewRouter()
	root.Handle(cfg.RealtimePath, cfg.Realtime)
	root.NotFound(pipeline.ServeHTTP)
	root.MethodNotAllowed(pipeline.ServeHTTP)
	return root, nil
}
