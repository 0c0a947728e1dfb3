package handler

import (
	"net/http"
)

// AdminHandler serves operator-only endpoints.
type AdminHandler struct {
	system System
	auth   Authenticator
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(system System, auth Authenticator) *AdminHandler {
	return &AdminHandler{system: system, auth: auth}
}

// GetStats handles GET /api/admin/stats.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.system.AdminStats(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, users)
}
