package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"castlist-be/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	checks := make(map[string]string)
	status := "healthy"
	statusCode := http.StatusOK

	if db := h.container.GetDB(); db != nil {
		if err := db.Health(r.Context()); err != nil {
			logger.WithError(err).Warn("Database health check failed")
			checks["database"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}
	}

	if h.container.HasRedis() {
		if err := h.container.GetRedisClient().Health(r.Context()); err != nil {
			logger.WithError(err).Warn("Redis health check failed")
			checks["redis"] = "unhealthy"
			// Cache loss degrades latency, not correctness.
		} else {
			checks["redis"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   "castlist-be",
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode health check response")
	}
}
