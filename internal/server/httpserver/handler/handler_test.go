package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/playgate/internal/core/domain"
	"github.com/yndnr/playgate/internal/core/service"
	"github.com/yndnr/playgate/internal/infra/buildinfo"
	"github.com/yndnr/playgate/internal/storage"
	"github.com/yndnr/playgate/internal/telemetry/logger"
)

// fakeStatus is a fixed StorageStatus.
type fakeStatus struct {
	state   storage.State
	pingErr error
}

func (p *fakeStatus) State() storage.State            { return p.state }
func (p *fakeStatus) Ping(ctx context.Context) error { return p.pingErr }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	h := New(nil, nil, logger.Discard())
	rec := httptest.NewRecorder()

	if err := h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil)); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		status     StorageStatus
		wantStatus int
		wantState  string
	}{
		{"connected", &fakeStatus{state: storage.StateConnected}, http.StatusOK, "connected"},
		{"connecting", &fakeStatus{state: storage.StateConnecting}, http.StatusServiceUnavailable, "connecting"},
		{"errored", &fakeStatus{state: storage.StateErrored}, http.StatusServiceUnavailable, "errored"},
		{"ping fails", &fakeStatus{state: storage.StateConnected, pingErr: errors.New("gone")}, http.StatusServiceUnavailable, "connected"},
		{"no storage", nil, http.StatusServiceUnavailable, "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.status, nil, logger.Discard())
			rec := httptest.NewRecorder()
			if err := h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil)); err != nil {
				t.Fatalf("Ready() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeBody(t, rec); body["storage"] != tt.wantState {
				t.Errorf("storage = %q, want %q", body["storage"], tt.wantState)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	h := New(nil, nil, logger.Discard())
	rec := httptest.NewRecorder()
	if err := h.Version(rec, httptest.NewRequest(http.MethodGet, "/version", nil)); err != nil {
		t.Fatal(err)
	}
	var info buildinfo.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != buildinfo.Version || info.GoVersion == "" {
		t.Errorf("info = %+v", info)
	}
}

func TestMetrics(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := New(nil, nil, logger.Discard())
		err := h.Metrics(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if domain.StatusOf(err) != http.StatusNotFound {
			t.Errorf("Metrics() error = %v, want 404", err)
		}
	})

	t.Run("delegates", func(t *testing.T) {
		called := false
		m := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})
		h := New(nil, m, logger.Discard())
		if err := h.Metrics(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil)); err != nil {
			t.Fatal(err)
		}
		if !called {
			t.Error("metrics handler not called")
		}
	})
}

func TestEchoClaims(t *testing.T) {
	t.Run("with claims", func(t *testing.T) {
		user := `{"_id":"u1","name":"alice"}`
		r := httptest.NewRequest(http.MethodGet, "/session", nil)
		r = r.WithContext(service.WithClaims(r.Context(), &domain.Claims{User: json.RawMessage(user)}))
		rec := httptest.NewRecorder()

		if err := EchoClaims(rec, r); err != nil {
			t.Fatalf("EchoClaims() error = %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		if rec.Body.String() != user {
			t.Errorf("body = %s, want %s", rec.Body.String(), user)
		}
	})

	t.Run("without claims", func(t *testing.T) {
		err := EchoClaims(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/session", nil))
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("EchoClaims() error = %v, want ErrUnauthorized", err)
		}
	})
}
