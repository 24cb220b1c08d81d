package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
)

// Entry describes one state-changing action on a CRM resource
type Entry struct {
	UserID     string
	Action     string // create, update, delete, convert, move_stage, complete, reorder
	Resource   string // leads, contacts, companies, deals, activities, pipeline
	ResourceID string
	Status     string // succeeded, rejected, failed
	Details    string
}

// Logger writes audit records to a structured log
type Logger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewLogger creates an audit logger on top of logger
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger, now: time.Now}
}

// Log records e together with the request id carried by ctx
func (al *Logger) Log(ctx context.Context, e Entry) {
	level := slog.LevelInfo
	if e.Status == StatusFailed {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit",
		slog.String("action", e.Action),
		slog.String("resource", e.Resource),
		slog.String("resource_id", e.ResourceID),
		slog.String("user_id", e.UserID),
		slog.String("status", e.Status),
		slog.String("details", e.Details),
		slog.String("request_id", logger.RequestID(ctx)),
		slog.Time("timestamp", al.now().UTC()),
	)
}

// Audit statuses derived from the response code
const (
	StatusSucceeded = "succeeded"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

// StatusFor classifies an HTTP status code
func StatusFor(code int) string {
	switch {
	case code >= 500:
		return StatusFailed
	case code >= 400:
		return StatusRejected
	default:
		return StatusSucceeded
	}
}
