package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/capitalstack/directory/internal/domain"
)

// DirectoryHandler serves the buyer and contact datasets.
type DirectoryHandler struct {
	dir Directory
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(dir Directory) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

func buyerFilter(q url.Values) domain.BuyerFilter {
	return domain.BuyerFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
		Market:   strings.TrimSpace(q.Get("market")),
	}
}

func contactFilter(q url.Values) domain.ContactFilter {
	return domain.ContactFilter{
		Search:  strings.TrimSpace(q.Get("search")),
		Title:   strings.TrimSpace(q.Get("title")),
		Company: strings.TrimSpace(q.Get("company")),
	}
}

// pageParams reads limit and offset. Absent values fall back to the
// service defaults; malformed ones are rejected.
func pageParams(q url.Values) (domain.Page, error) {
	var p domain.Page
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, domain.ErrValidation("limit must be a non-negative integer")
		}
		p.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, domain.ErrValidation("offset must be a non-negative integer")
		}
		p.Offset = n
	}
	return p, nil
}

// ListBuyers handles GET /api/buyers. Access is checked before the query
// string, so a denied caller never sees a validation error.
func (h *DirectoryHandler) ListBuyers(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if err := h.dir.AuthorizeBuyers(caller); err != nil {
		Error(w, err)
		return
	}

	q := r.URL.Query()
	page, err := pageParams(q)
	if err != nil {
		Error(w, err)
		return
	}

	resp, err := h.dir.ListBuyers(r.Context(), caller, buyerFilter(q), page)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// ExportBuyers handles GET /api/buyers/export.
func (h *DirectoryHandler) ExportBuyers(w http.ResponseWriter, r *http.Request) {
	export, err := h.dir.ExportBuyers(r.Context(), callerFrom(r), buyerFilter(r.URL.Query()))
	if err != nil {
		Error(w, err)
		return
	}
	Attachment(w, export)
}

// ListContacts handles GET /api/contacts.
func (h *DirectoryHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if err := h.dir.AuthorizeContacts(caller); err != nil {
		Error(w, err)
		return
	}

	q := r.URL.Query()
	page, err := pageParams(q)
	if err != nil {
		Error(w, err)
		return
	}

	resp, err := h.dir.ListContacts(r.Context(), caller, contactFilter(q), page)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// ExportContacts handles GET /api/contacts/export.
func (h *DirectoryHandler) ExportContacts(w http.ResponseWriter, r *http.Request) {
	export, err := h.dir.ExportContacts(r.Context(), callerFrom(r), contactFilter(r.URL.Query()))
	if err != nil {
		Error(w, err)
		return
	}
	Attachment(w, export)
}
