package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/arsw/blueprints/internal/api/middleware"
	"github.com/arsw/blueprints/internal/api/response"
)

// pingTimeout bounds the storage probe of a single health request.
const pingTimeout = 2 * time.Second

// Pinger reports whether the blueprint storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	storage Pinger
	driver  string
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(storage Pinger, driver, version string) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		driver:  driver,
		version: version,
	}
}

type storageStatus struct {
	Driver    string `json:"driver"`
	Connected bool   `json:"connected"`
}

type healthData struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Storage storageStatus `json:"storage"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	status := "healthy"
	connected := true
	if err := h.storage.Ping(ctx); err != nil {
		middleware.Logger(r.Context()).Warn("storage ping failed", "error", err, "driver", h.driver)
		status = "degraded"
		connected = false
	}

	data := healthData{
		Status:  status,
		Version: h.version,
		Storage: storageStatus{
			Driver:    h.driver,
			Connected: connected,
		},
	}

	response.Success(w, http.StatusOK, data, requestID)
}
