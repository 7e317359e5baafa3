package handler

import (
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
)

// UserHandler serves account listing and profile updates.
type UserHandler struct {
	svc *service.UserService
	log *slog.Logger
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc *service.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateProfile handles PUT /api/users/update
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), caller(r).ID, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
