package handler

import (
	"net/http"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	system System
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(system System) *HealthHandler {
	return &HealthHandler{system: system}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	report, ok := h.system.Health(r.Context())
	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	JSON(w, code, report)
}
