package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/service"
)

// PipelineResponse is the board returned by GET /deals?view=pipeline
type PipelineResponse struct {
	Pipeline []domain.PipelineColumn `json:"pipeline"`
}

// MoveStageRequest is the body of PATCH /deals/{id}/stage
type MoveStageRequest struct {
	StageID string `json:"stage_id"`
}

// DealHandler serves /deals
type DealHandler struct {
	deals *service.DealService
	rs    *Responder
}

// NewDealHandler creates a new deal handler
func NewDealHandler(deals *service.DealService, rs *Responder) *DealHandler {
	return &DealHandler{deals: deals, rs: rs}
}

// Register mounts the deal routes under prefix
func (h *DealHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/deals", h.List)
	mux.HandleFunc("GET "+prefix+"/deals/{id}", h.Get)
	mux.HandleFunc("POST "+prefix+"/deals", h.Create)
	mux.HandleFunc("PUT "+prefix+"/deals/{id}", h.Update)
	mux.HandleFunc("PATCH "+prefix+"/deals/{id}/stage", h.MoveStage)
	mux.HandleFunc("DELETE "+prefix+"/deals/{id}", h.Delete)
}

// List handles GET /deals?stageId=&status=&assignedTo=&view=pipeline
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.DealFilter{
		ListParams: listParams(q),
		StageID:    q.Get("stageId"),
		Status:     q.Get("status"),
		AssignedTo: q.Get("assignedTo"),
	}

	if q.Get("view") == "pipeline" {
		board, err := h.deals.Pipeline(r.Context(), f)
		if err != nil {
			h.rs.Error(w, r, err)
			return
		}
		h.rs.JSON(w, http.StatusOK, PipelineResponse{Pipeline: board})
		return
	}

	page, err := h.deals.List(r.Context(), f)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

// Get handles GET /deals/{id}
func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	deal, err := h.deals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, deal)
}

// Create handles POST /deals
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateDealInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	deal, err := h.deals.Create(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, deal)
}

// Update handles PUT /deals/{id}
func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateDealInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	deal, err := h.deals.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, deal)
}

// MoveStage handles PATCH /deals/{id}/stage, the board drag-and-drop
func (h *DealHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	var req MoveStageRequest
	if !h.rs.Decode(w, r, &req, false) {
		return
	}
	deal, err := h.deals.MoveStage(r.Context(), r.PathValue("id"), req.StageID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, deal)
}

// Delete handles DELETE /deals/{id}
func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.deals.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Deleted(w, "Deal")
}
