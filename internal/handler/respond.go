package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse is the envelope of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse acknowledges deletes
type MessageResponse struct {
	Message string `json:"message"`
}

// Responder writes JSON bodies and maps domain errors to status codes.
// Raw messages of unexpected errors are only exposed in development.
type Responder struct {
	logger      *slog.Logger
	development bool
}

// NewResponder creates a responder
func NewResponder(logger *slog.Logger, development bool) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{logger: logger, development: development}
}

// JSON writes v with status
func (rs *Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// Error writes the envelope for err
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	msg, known := domain.Message(err)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		rs.JSON(w, http.StatusNotFound, ErrorResponse{Error: "Not Found", Message: msg})
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrConflict):
		rs.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "Bad Request", Message: msg})
	default:
		rs.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", logger.RequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		message := "An unexpected error occurred"
		if rs.development {
			message = err.Error()
		} else if known {
			message = msg
		}
		rs.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error", Message: message})
	}
}

// NotFound is the catch-all for unknown routes
func (rs *Responder) NotFound(w http.ResponseWriter, _ *http.Request) {
	rs.JSON(w, http.StatusNotFound, ErrorResponse{Error: "Not Found", Message: "The requested resource was not found"})
}

// Deleted acknowledges a delete of entity
func (rs *Responder) Deleted(w http.ResponseWriter, entity string) {
	rs.JSON(w, http.StatusOK, MessageResponse{Message: entity + " deleted successfully"})
}

// Decode reads a JSON body into dst. An empty body leaves dst untouched when
// allowEmpty is set. It writes a 400 and returns false on malformed input.
func (rs *Responder) Decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) && allowEmpty {
		return true
	}
	message := "Invalid JSON body"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		message = fmt.Sprintf("%s has the wrong type", typeErr.Field)
	}
	if errors.Is(err, io.EOF) {
		message = "Request body is required"
	}
	rs.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "Bad Request", Message: message})
	return false
}
