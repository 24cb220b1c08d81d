package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/service"
)

// CompanyHandler serves /companies
type CompanyHandler struct {
	companies *service.CompanyService
	rs        *Responder
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies *service.CompanyService, rs *Responder) *CompanyHandler {
	return &CompanyHandler{companies: companies, rs: rs}
}

// Register mounts the company routes under prefix
func (h *CompanyHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/companies", h.List)
	mux.HandleFunc("GET "+prefix+"/companies/{id}", h.Get)
	mux.HandleFunc("POST "+prefix+"/companies", h.Create)
	mux.HandleFunc("PUT "+prefix+"/companies/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/companies/{id}", h.Delete)
}

// List handles GET /companies?industry=&size=
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.companies.List(r.Context(), domain.CompanyFilter{
		ListParams: listParams(q),
		Industry:   q.Get("industry"),
		Size:       q.Get("size"),
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

// Get handles GET /companies/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, company)
}

// Create handles POST /companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateCompanyInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	company, err := h.companies.Create(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, company)
}

// Update handles PUT /companies/{id}
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateCompanyInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	company, err := h.companies.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, company)
}

// Delete handles DELETE /companies/{id}
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.companies.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Deleted(w, "Company")
}
