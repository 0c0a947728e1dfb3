package handler

import (
	"net/http"

	"github.com/capitalstack/directory/internal/domain"
)

// UserHandler serves the caller's own profile and usage.
type UserHandler struct {
	accounts Accounts
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts Accounts) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Profile handles GET /api/user.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Profile(r.Context(), callerFrom(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/user.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), callerFrom(r), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, user)
}

// Usage handles GET /api/user/usage.
func (h *UserHandler) Usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.accounts.Usage(r.Context(), callerFrom(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, usage)
}
