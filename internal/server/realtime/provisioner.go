package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/playgate/internal/core/domain"
	"github.com/yndnr/playgate/internal/core/service"
	"github.com/yndnr/playgate/internal/server/httpserver"
)

// Keepalive defaults.
const (
	DefaultWriteWait      = 10 * time.Second
	DefaultPongWait       = 60 * time.Second
	DefaultMaxMessageSize = 64 << 10
)

var errHubClosed = domain.NewHTTPError(http.StatusServiceUnavailable, "PG-WS-5030", "server shutting down")

// Config configures a Provisioner.
type Config struct {
	// Origin is the single allowed browser origin. Empty or "*" allows any.
	Origin string

	// RequireAuth verifies a credential with Auth before upgrading.
	RequireAuth bool
	Auth        service.CapabilityCheck

	// Session receives upgraded connections (default: Discard).
	Session SessionManager

	// Hub tracks connections (default: a private hub without metrics).
	Hub *Hub

	Logger *slog.Logger

	// PingInterval defaults to 9/10 of PongWait.
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Provisioner upgrades requests to websocket connections.
type Provisioner struct {
	cfg        Config
	upgrader   websocket.Upgrader
	translator *httpserver.ErrorTranslator
	logger     *slog.Logger
}

// New creates a Provisioner.
func New(cfg Config) (*Provisioner, error) {
	if cfg.RequireAuth && cfg.Auth == nil {
		return nil, errors.New("realtime: RequireAuth needs a capability check")
	}
	if cfg.Session == nil {
		cfg.Session = Discard
	}
	if cfg.Hub == nil {
		cfg.Hub = NewHub(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = DefaultPongWait
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = DefaultWriteWait
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}

	p := &Provisioner{
		cfg:        cfg,
		translator: httpserver.NewErrorTranslator(cfg.Logger),
		logger:     cfg.Logger.With("component", "realtime"),
	}
	p.upgrader = websocket.Upgrader{
		HandshakeTimeout: cfg.WriteWait,
		CheckOrigin:      p.checkOrigin,
		Error:            p.upgradeError,
	}
	return p, nil
}

// Hub returns the connection hub.
func (p *Provisioner) Hub() *Hub { return p.cfg.Hub }

// checkOrigin allows requests without an Origin header; only browsers are
// held to the origin policy.
func (p *Provisioner) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || p.cfg.Origin == "" || p.cfg.Origin == "*" {
		return true
	}
	return origin == p.cfg.Origin
}

func (p *Provisioner) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	p.translator.Translate(w, r, domain.NewHTTPError(status, fmt.Sprintf("PG-WS-%d0", status), reason.Error()))
}

// ServeHTTP implements http.Handler.
func (p *Provisioner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !p.checkOrigin(r) {
		p.translator.Translate(w, r, domain.ErrForbiddenOrigin)
		return
	}
	if p.cfg.Hub.Closed() {
		p.translator.Translate(w, r, errHubClosed)
		return
	}

	var claims *domain.Claims
	if p.cfg.RequireAuth {
		c, err := p.cfg.Auth(r)
		if err != nil || c == nil {
			if err == nil || !errors.Is(err, domain.ErrUnauthorized) {
				err = domain.ErrUnauthorized.WithCause(err)
			}
			p.translator.Translate(w, r, err)
			return
		}
		claims = c
	}

	ws, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	id := ulid.Make().String()
	conn := newConn(id, ws, claims, r.RemoteAddr, p.cfg.WriteWait, p.logger.With("conn_id", id))
	if err := p.cfg.Hub.add(conn); err != nil {
		_ = conn.Close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer p.cfg.Hub.remove(conn)

	ws.SetReadLimit(p.cfg.MaxMessageSize)
	conn.keepAlive(p.cfg.PingInterval, p.cfg.PongWait)
	conn.logger.Info("realtime connection opened", "remote_addr", conn.remoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-conn.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	if err := p.cfg.Session.Attach(ctx, conn); err != nil {
		conn.logger.Warn("realtime session ended with error", "error", err)
	}
	_ = conn.Close(websocket.CloseNormalClosure, "")
	conn.logger.Info("realtime connection closed", "duration", time.Since(start))
}
