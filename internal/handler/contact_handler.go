package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/service"
)

// ContactHandler serves /contacts
type ContactHandler struct {
	contacts *service.ContactService
	rs       *Responder
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts *service.ContactService, rs *Responder) *ContactHandler {
	return &ContactHandler{contacts: contacts, rs: rs}
}

// Register mounts the contact routes under prefix
func (h *ContactHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/contacts", h.List)
	mux.HandleFunc("GET "+prefix+"/contacts/{id}", h.Get)
	mux.HandleFunc("POST "+prefix+"/contacts", h.Create)
	mux.HandleFunc("PUT "+prefix+"/contacts/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/contacts/{id}", h.Delete)
}

// List handles GET /contacts?companyId=
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.contacts.List(r.Context(), domain.ContactFilter{
		ListParams: listParams(q),
		CompanyID:  q.Get("companyId"),
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

// Get handles GET /contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, contact)
}

// Create handles POST /contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateContactInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	contact, err := h.contacts.Create(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, contact)
}

// Update handles PUT /contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateContactInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	contact, err := h.contacts.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, contact)
}

// Delete handles DELETE /contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Deleted(w, "Contact")
}
