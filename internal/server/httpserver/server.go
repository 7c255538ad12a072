package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/playgate/internal/storage"
)

var (
	// ErrNotReady is returned by Bind before storage is Connected.
	ErrNotReady = errors.New("httpserver: storage not connected")

	// ErrAlreadyBound is returned by a second Bind.
	ErrAlreadyBound = errors.New("httpserver: listener already bound")
)

// Readiness is the part of storage.Gate the server depends on.
type Readiness interface {
	State() storage.State
	Ready() <-chan struct{}
}

// Config configures a Server.
type Config struct {
	Addr              string
	Handler           http.Handler
	Gate              Readiness
	Logger            *slog.Logger
	ReadHeaderTimeout time.Duration
}

// Server is the single HTTP listener. It binds at most once and only after
// the storage gate is Connected.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	bound    bool
}

// New creates a Server. Nothing is bound yet.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		httpServer: &http.Server{
			Handler:           cfg.Handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ErrorLog:          slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelWarn),
		},
	}
}

// Bind opens the listener. It fails with ErrNotReady unless the gate is
// Connected, and with ErrAlreadyBound on a second call.
func (s *Server) Bind() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bound {
		return ErrAlreadyBound
	}
	if s.cfg.Gate == nil || s.cfg.Gate.State() != storage.StateConnected {
		return ErrNotReady
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.bound = true
	s.logger.Info("server is running", "addr", ln.Addr().String())
	return nil
}

// Serve serves on the bound listener until Shutdown. It returns nil after a
// graceful shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return ErrNotReady
	}

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe waits for the gate to become ready, binds and serves. It
// returns ctx.Err() if ctx ends first.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.cfg.Gate == nil {
		return ErrNotReady
	}
	select {
	case <-s.cfg.Gate.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.Bind(); err != nil {
		return err
	}
	return s.Serve()
}

// Addr returns the bound address, or "" before Bind.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	bound := s.bound
	ln := s.listener
	s.mu.Unlock()
	if !bound {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	// Serve may never have taken ownership of the listener.
	_ = ln.Close()
	return err
}

// RegisterOnShutdown registers f to run when Shutdown starts, for
// connections the server does not track such as hijacked websockets.
func (s *Server) RegisterOnShutdown(f func()) {
	s.httpServer.RegisterOnShutdown(f)
}
