package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/service"
)

// DashboardHandler serves /dashboard
type DashboardHandler struct {
	dashboard *service.DashboardService
	rs        *Responder
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService, rs *Responder) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, rs: rs}
}

// Register mounts the dashboard routes under prefix
func (h *DashboardHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/dashboard/stats", h.Stats)
	mux.HandleFunc("GET "+prefix+"/dashboard/metrics", h.Metrics)
}

// Stats handles GET /dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, stats)
}

// Metrics handles GET /dashboard/metrics?period=<days>
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	period := intParam(r.URL.Query(), "period", service.DefaultMetricsPeriod)
	metrics, err := h.dashboard.Metrics(r.Context(), period)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, metrics)
}
