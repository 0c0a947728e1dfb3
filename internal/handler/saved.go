package handler

import (
	"net/http"

	"github.com/capitalstack/directory/internal/domain"
)

// SavedHandler serves the caller's saved buyers and contacts.
type SavedHandler struct {
	saved SavedItems
}

// NewSavedHandler creates a new SavedHandler.
func NewSavedHandler(saved SavedItems) *SavedHandler {
	return &SavedHandler{saved: saved}
}

// SaveBuyer handles POST /api/saved/buyers.
func (h *SavedHandler) SaveBuyer(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveBuyerRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.saved.ToggleBuyer(r.Context(), callerFrom(r), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// ListBuyers handles GET /api/saved/buyers.
func (h *SavedHandler) ListBuyers(w http.ResponseWriter, r *http.Request) {
	items, err := h.saved.ListBuyers(r.Context(), callerFrom(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"savedBuyers": items})
}

// SaveContact handles POST /api/saved/contacts.
func (h *SavedHandler) SaveContact(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveContactRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.saved.ToggleContact(r.Context(), callerFrom(r), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// ListContacts handles GET /api/saved/contacts.
func (h *SavedHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	items, err := h.saved.ListContacts(r.Context(), callerFrom(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"savedContacts": items})
}
