package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/playgate/internal/core/domain"
	"github.com/yndnr/playgate/internal/infra/buildinfo"
	"github.com/yndnr/playgate/internal/storage"
)

// readyPingTimeout bounds the storage ping done by GET /ready.
const readyPingTimeout = 2 * time.Second

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. It answers 503 unless storage is connected and
// answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) error {
	body := map[string]string{
		"status":  "ready",
		"storage": storage.StateDisconnected.String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if h.status == nil {
		body["status"] = "not_ready"
		return writeJSON(w, http.StatusServiceUnavailable, body)
	}

	state := h.status.State()
	body["storage"] = state.String()
	if state != storage.StateConnected {
		body["status"] = "not_ready"
		return writeJSON(w, http.StatusServiceUnavailable, body)
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
	defer cancel()
	if err := h.status.Ping(ctx); err != nil {
		h.logger.Warn("storage ping failed", "error", err)
		body["status"] = "not_ready"
		body["error"] = "storage ping failed"
		return writeJSON(w, http.StatusServiceUnavailable, body)
	}

	return writeJSON(w, http.StatusOK, body)
}

// Version handles GET /version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, buildinfo.Get())
}

// Metrics handles GET /metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) error {
	if h.metrics == nil {
		return domain.NewHTTPError(http.StatusNotFound, "PG-SYS-4040", "metrics disabled")
	}
	h.metrics.ServeHTTP(w, r)
	return nil
}
