package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// APIVersion is reported by GET /
const APIVersion = "1.0.0"

// Pinger is a dependency that can report its liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx)
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     Pinger
	redis  Pinger
	clock  domain.Clock
	rs     *Responder
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. redis may be nil when the
// server runs without it.
func NewHealthHandler(db, redis Pinger, rs *Responder, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		db:     db,
		redis:  redis,
		clock:  time.Now,
		rs:     rs,
		logger: logger,
	}
}

// RootResponse is returned by GET /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Register mounts the health routes. apiPrefix is where /health lives.
func (h *HealthHandler) Register(mux *http.ServeMux, apiPrefix string) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET "+apiPrefix+"/health", h.Health)
	mux.HandleFunc("GET /healthz", h.Live)
	mux.HandleFunc("GET /readyz", h.Ready)
}

// Root handles GET /
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	h.rs.JSON(w, http.StatusOK, RootResponse{
		Message: "CRM API",
		Version: APIVersion,
		Status:  "healthy",
	})
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.rs.JSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: domain.FormatTimestamp(h.clock()),
	})
}

// Live handles GET /healthz - Simple liveness check
// Returns 200 if the server is running
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	h.rs.JSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz - Readiness check for Kubernetes
// Returns 200 only if the database and, when configured, Redis respond
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	h.rs.JSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks})

	if !ready {
		h.logger.Warn("readiness check failed",
			slog.String("database", checks["database"]),
			slog.String("redis", checks["redis"]),
		)
	}
}
