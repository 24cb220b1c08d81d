package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/service"
)

// ConvertResponse is returned by POST /leads/{id}/convert
type ConvertResponse struct {
	Message string          `json:"message"`
	Contact *domain.Contact `json:"contact"`
}

// LeadHandler serves /leads
type LeadHandler struct {
	leads *service.LeadService
	rs    *Responder
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads *service.LeadService, rs *Responder) *LeadHandler {
	return &LeadHandler{leads: leads, rs: rs}
}

// Register mounts the lead routes under prefix
func (h *LeadHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/leads", h.List)
	mux.HandleFunc("GET "+prefix+"/leads/{id}", h.Get)
	mux.HandleFunc("POST "+prefix+"/leads", h.Create)
	mux.HandleFunc("PUT "+prefix+"/leads/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/leads/{id}", h.Delete)
	mux.HandleFunc("POST "+prefix+"/leads/{id}/convert", h.Convert)
}

// List handles GET /leads?status=&source=&assignedTo=
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.leads.List(r.Context(), domain.LeadFilter{
		ListParams: listParams(q),
		Status:     q.Get("status"),
		Source:     q.Get("source"),
		AssignedTo: q.Get("assignedTo"),
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

// Get handles GET /leads/{id}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, lead)
}

// Create handles POST /leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateLeadInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	lead, err := h.leads.Create(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, lead)
}

// Update handles PUT /leads/{id}
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateLeadInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	lead, err := h.leads.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /leads/{id}
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.leads.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Deleted(w, "Lead")
}

// Convert handles POST /leads/{id}/convert
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	contact, err := h.leads.Convert(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, ConvertResponse{Message: "Lead converted successfully", Contact: contact})
}
