package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	hooks   []func(context.Context) error
	mu      sync.Mutex

	trigger     chan error
	triggerOnce sync.Once
	done        chan struct{}
	signals     []os.Signal
}

// NewHandler creates a new shutdown handler.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]func(context.Context) error, 0),
		trigger: make(chan error, 1),
		done:    make(chan struct{}),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Trigger starts shutdown without a signal. The cause, if any, is returned
// by Wait together with hook errors. Only the first call has an effect.
func (h *Handler) Trigger(cause error) {
	h.triggerOnce.Do(func() {
		h.trigger <- cause
	})
}

// Wait blocks until a signal or Trigger, then executes the hooks.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	var cause error
	select {
	case <-sigCh:
	case cause = <-h.trigger:
	}

	return errors.Join(cause, h.runHooks())
}

func (h *Handler) runHooks() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	close(h.done)
	return errors.Join(errs...)
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
