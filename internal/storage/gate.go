package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrAlreadyAttempted is returned by a second Connect call.
	ErrAlreadyAttempted = errors.New("storage: connection already attempted")

	// ErrNotConnected is returned by operations that need a Connected gate.
	ErrNotConnected = errors.New("storage: not connected")
)

// Observer receives every state transition of a Gate.
type Observer func(State)

// Gate serializes the single storage connection attempt and publishes the
// outcome to the rest of the process.
type Gate struct {
	connector Connector
	logger    *slog.Logger
	observer  Observer

	mu        sync.RWMutex
	state     State
	handle    Handle
	err       error
	attempted bool

	ready     chan struct{}
	readyOnce sync.Once
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithObserver registers a state transition observer.
func WithObserver(o Observer) GateOption {
	return func(g *Gate) {
		g.observer = o
	}
}

// WithLogger sets the gate logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = l
	}
}

// NewGate creates a Gate in the Disconnected state.
func NewGate(connector Connector, opts ...GateOption) *Gate {
	g := &Gate{
		connector: connector,
		logger:    slog.Default(),
		state:     StateDisconnected,
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.notify(StateDisconnected)
	return g
}

// Connect performs the one and only connection attempt. It blocks until the
// connector returns or ctx is done.
func (g *Gate) Connect(ctx context.Context) error {
	g.mu.Lock()
	if g.attempted {
		g.mu.Unlock()
		return ErrAlreadyAttempted
	}
	g.attempted = true
	g.state = StateConnecting
	g.mu.Unlock()
	g.notify(StateConnecting)

	start := time.Now()
	h, err := g.connector.Connect(ctx)
	if err == nil && h == nil {
		err = errors.New("connector returned no handle")
	}

	g.mu.Lock()
	if err != nil {
		g.state = StateErrored
		g.err = fmt.Errorf("storage: connect: %w", err)
		err = g.err
	} else {
		g.state = StateConnected
		g.handle = h
	}
	state := g.state
	g.mu.Unlock()
	g.notify(state)

	if err != nil {
		return err
	}

	g.logger.Info("storage connected",
		"driver", h.Driver(),
		"elapsed", time.Since(start))
	g.readyOnce.Do(func() { close(g.ready) })
	return nil
}

// Ready is closed once the gate reaches Connected. It is never closed for an
// errored gate.
func (g *Gate) Ready() <-chan struct{} {
	return g.ready
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Err returns the connection error of an Errored gate.
func (g *Gate) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.err
}

// Handle returns the live handle, or ErrNotConnected.
func (g *Gate) Handle() (Handle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateConnected || g.handle == nil {
		return nil, ErrNotConnected
	}
	return g.handle, nil
}

// Ping checks the live handle.
func (g *Gate) Ping(ctx context.Context) error {
	h, err := g.Handle()
	if err != nil {
		return err
	}
	return h.Ping(ctx)
}

// Close releases the handle. The state is left as is; a closed gate is not
// reused.
func (g *Gate) Close(ctx context.Context) error {
	g.mu.Lock()
	h := g.handle
	g.handle = nil
	g.mu.Unlock()

	if h == nil {
		return nil
	}
	if err := h.Close(ctx); err != nil {
		return fmt.Errorf("storage: close %s: %w", h.Driver(), err)
	}
	g.logger.Info("storage closed", "driver", h.Driver())
	return nil
}

func (g *Gate) notify(s State) {
	if g.observer != nil {
		g.observer(s)
	}
}
