package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_Trigger_RunsHooksInReverseOrder(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		id := i
		h.OnShutdown(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return nil
		})
	}

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()

	h.Trigger(nil)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("hooks called in order %v, want [3 2 1]", order)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Trigger_CauseAndHookErrors(t *testing.T) {
	h := NewHandler(5 * time.Second)

	cause := errors.New("listener failed")
	hookErr := errors.New("close failed")
	h.OnShutdown(func(ctx context.Context) error { return hookErr })

	h.Trigger(cause)
	h.Trigger(errors.New("ignored"))

	err := h.Wait()
	if !errors.Is(err, cause) {
		t.Errorf("Wait() = %v, want it to wrap %v", err, cause)
	}
	if !errors.Is(err, hookErr) {
		t.Errorf("Wait() = %v, want it to wrap %v", err, hookErr)
	}
}

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := NewHandler(5 * time.Second)

	called := make(chan struct{}, 1)
	h.OnShutdown(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("hook context should carry the shutdown deadline")
		}
		called <- struct{}{}
		return nil
	})

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()

	time.Sleep(50 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	select {
	case <-called:
	default:
		t.Error("hook was not called")
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown(func(ctx context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hooks) != 10 {
		t.Errorf("expected 10 hooks, got %d", len(h.hooks))
	}
}
