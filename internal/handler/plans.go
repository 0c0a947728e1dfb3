package handler

import (
	"net/http"

	"github.com/capitalstack/directory/internal/domain"
)

// PlansHandler handles plan-related endpoints.
type PlansHandler struct {
	catalog *domain.Catalog
}

// NewPlansHandler creates a new PlansHandler.
func NewPlansHandler(catalog *domain.Catalog) *PlansHandler {
	return &PlansHandler{catalog: catalog}
}

// List handles GET /api/plans.
func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.catalog.Plans())
}
