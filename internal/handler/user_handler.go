package handler

import (
	"net/http"

	"github.com/aryan0dhankhar/crm/internal/service"
)

// UserHandler serves the read-only /users listing
type UserHandler struct {
	users *service.UserService
	rs    *Responder
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, rs *Responder) *UserHandler {
	return &UserHandler{users: users, rs: rs}
}

// Register mounts the user routes under prefix
func (h *UserHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/users", h.List)
	mux.HandleFunc("GET "+prefix+"/users/{id}", h.Get)
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, users)
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, user)
}
