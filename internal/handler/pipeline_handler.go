package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/service"
)

// PipelineHandler serves /pipeline/stages
type PipelineHandler struct {
	stages *service.PipelineService
	rs     *Responder
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(stages *service.PipelineService, rs *Responder) *PipelineHandler {
	return &PipelineHandler{stages: stages, rs: rs}
}

// Register mounts the stage routes under prefix. The reorder route is a
// literal segment and wins over {id}.
func (h *PipelineHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/pipeline/stages", h.List)
	mux.HandleFunc("POST "+prefix+"/pipeline/stages", h.Create)
	mux.HandleFunc("POST "+prefix+"/pipeline/stages/reorder", h.Reorder)
	mux.HandleFunc("PUT "+prefix+"/pipeline/stages/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/pipeline/stages/{id}", h.Delete)
}

// List handles GET /pipeline/stages
func (h *PipelineHandler) List(w http.ResponseWriter, r *http.Request) {
	stages, err := h.stages.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, stages)
}

// Create handles POST /pipeline/stages
func (h *PipelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateStageInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	stage, err := h.stages.Create(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, stage)
}

// Update handles PUT /pipeline/stages/{id}
func (h *PipelineHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateStageInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	stage, err := h.stages.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, stage)
}

// Reorder handles POST /pipeline/stages/reorder
func (h *PipelineHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var in service.ReorderStagesInput
	if !h.rs.Decode(w, r, &in, false) {
		return
	}
	stages, err := h.stages.Reorder(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, stages)
}

// Delete handles DELETE /pipeline/stages/{id}
func (h *PipelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.stages.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Deleted(w, "Stage")
}
