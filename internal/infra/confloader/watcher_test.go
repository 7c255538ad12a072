package confloader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_OnChange_MultipleCallbacks(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var count int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		w.OnChange(func(string) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	w.notifyCallbacks("/test/path")

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("callbacks called %d times, want 3", count)
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()

	if err := w.Stop(); err != nil {
		t.Errorf("first Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	otherFile := filepath.Join(dir, "other.yaml")

	if err := os.WriteFile(configFile, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})

	w.StartAsync()
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	// Siblings in the same directory are not reported.
	if err := os.WriteFile(otherFile, []byte("x: 1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "config.yaml" {
			t.Errorf("callback path = %q, want config.yaml", path)
		}
	case <-time.After(2 * time.Second):
		t.Error("OnChange() callback was not triggered within timeout")
	}
}
