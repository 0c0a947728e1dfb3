package handler

import (
	"net/http"

	"github.com/capitalstack/directory/internal/domain"
)

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	auth     Authenticator
	accounts Accounts
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth Authenticator, accounts Accounts) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Profile(r.Context(), callerFrom(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, user)
}
