package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/service"
)

// ActivityHandler serves /activities
type ActivityHandler struct {
	activities *service.ActivityService
	rs         *Responder
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activities *service.ActivityService, rs *Responder) *ActivityHandler {
	return &ActivityHandler{activities: activities, rs: rs}
}

// Register mounts the activity routes under prefix
func (h *ActivityHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/activities", h.List)
	mux.HandleFunc("GET "+prefix+"/activities/{id}", h.Get)
	mux.HandleFunc("POST "+prefix+"/activities", h.Create)
	mux.HandleFunc("PUT "+prefix+"/activities/{id}", h.Update)
	mux.HandleFunc("PATCH "+prefix+"/activities/{id}/complete", h.Complete)
	mux.HandleFunc("DELETE "+prefix+"/activities/{id}", h.Delete)
}

// List handles GET /activities with the type, status, owner, link and
// due-date filters
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.activities.List(r.Context(), domain.ActivityFilter{
		ListParams: listParams(q),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		UserID:     q.Get("userId"),
		LeadID:     q.Get("leadId"),
		ContactID:  q.Get("contactId"),
		DealID:     q.Get("dealId"),
		CompanyID:  q.Get("companyId"),
		Upcoming:   boolParam(q, "upcoming"),
		Overdue:    boolParam(q, "overdue"),
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

// Get handles GET /activities/{id}
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activities.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, activity)
}

// Create handles POST /activities
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateActivityInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	activity, err := h.activities.Create(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, activity)
}

// Update handles PUT /activities/{id}
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateActivityInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	activity, err := h.activities.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, activity)
}

// Complete handles PATCH /activities/{id}/complete. The body is optional.
func (h *ActivityHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var in service.CompleteActivityInput
	if !h.rs.Decode(w, r, &in, true) {
		return
	}
	activity, err := h.activities.Complete(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, activity)
}

// Delete handles DELETE /activities/{id}
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.activities.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Deleted(w, "Activity")
}
