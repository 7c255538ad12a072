package httpserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/yndnr/playgate/internal/storage"
	"github.com/yndnr/playgate/internal/telemetry/logger"
)

func newMemoryGate(t *testing.T) *storage.Gate {
	t.Helper()
	conn, err := storage.NewConnector(storage.Config{URL: "badger://memory", Logger: logger.Discard()})
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	g := storage.NewGate(conn, storage.WithLogger(logger.Discard()))
	t.Cleanup(func() { _ = g.Close(context.Background()) })
	return g
}

func TestServer_BindBeforeConnected(t *testing.T) {
	g := newMemoryGate(t)
	s := New(Config{Addr: "127.0.0.1:0", Handler: NotFound(), Gate: g, Logger: logger.Discard()})

	if err := s.Bind(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Bind() error = %v, want ErrNotReady", err)
	}
	if s.Addr() != "" {
		t.Errorf("Addr() = %q, want empty before bind", s.Addr())
	}
	if err := s.Serve(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Serve() error = %v, want ErrNotReady", err)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() of unbound server error = %v", err)
	}
}

func TestServer_FailedGateNeverBinds(t *testing.T) {
	g := storage.NewGate(storage.ConnectorFunc(func(ctx context.Context) (storage.Handle, error) {
		return nil, errors.New("connection refused")
	}), storage.WithLogger(logger.Discard()))
	if err := g.Connect(context.Background()); err == nil {
		t.Fatal("Connect() should fail")
	}

	s := New(Config{Addr: "127.0.0.1:0", Handler: NotFound(), Gate: g, Logger: logger.Discard()})
	if err := s.Bind(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Bind() error = %v, want ErrNotReady", err)
	}
}

func TestServer_ServeAfterConnect(t *testing.T) {
	g := newMemoryGate(t)
	if err := g.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	h, _ := newTestRouter(t, nil)
	s := New(Config{Addr: "127.0.0.1:0", Handler: h, Gate: g, Logger: logger.Discard()})
	if err := s.Bind(); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := s.Bind(); !errors.Is(err, ErrAlreadyBound) {
		t.Errorf("second Bind() error = %v, want ErrAlreadyBound", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	resp, err := http.Get("http://" + s.Addr() + "/definitely/unknown")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || string(b) != notFoundJSON+"\n" {
		t.Errorf("GET unknown = %d %q", resp.StatusCode, b)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve() error = %v, want nil after shutdown", err)
	}
}

func TestServer_NoListenerBeforeConnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	g := newMemoryGate(t)
	s := New(Config{Addr: addr, Handler: NotFound(), Gate: g, Logger: logger.Discard()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		conn.Close()
		t.Error("port accepted connections before storage connected")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ListenAndServe() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}

func TestServer_ListenAndServeWaitsForGate(t *testing.T) {
	g := newMemoryGate(t)
	s := New(Config{Addr: "127.0.0.1:0", Handler: NotFound(), Gate: g, Logger: logger.Discard()})

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(context.Background()) }()

	if err := g.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Addr() == "" {
		t.Fatal("server did not bind after connect")
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe() error = %v", err)
	}
}
