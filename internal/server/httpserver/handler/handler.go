package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/playgate/internal/storage"
)

// StorageStatus reports the storage connection state.
type StorageStatus interface {
	State() storage.State
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the built-in routes.
type Handler struct {
	status  StorageStatus
	metrics http.Handler
	logger  *slog.Logger
}

// New creates a Handler. metrics may be nil, in which case GET /metrics
// answers 404 through the translator.
func New(status StorageStatus, metrics http.Handler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		status:  status,
		metrics: metrics,
		logger:  logger,
	}
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
