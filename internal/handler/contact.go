package handler

import (
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
)

// ContactHandler serves the public contact form.
type ContactHandler struct {
	svc *service.ContactService
	log *slog.Logger
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(svc *service.ContactService, log *slog.Logger) *ContactHandler {
	return &ContactHandler{svc: svc, log: log}
}

// Send handles POST /api/contact
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.Send(r.Context(), req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Message sent successfully!")
}
