package handler

import (
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
	"github.com/Shivanand-hulikatti/eventhub/internal/storage"
	"github.com/Shivanand-hulikatti/eventhub/internal/view"
)

// ImageStore saves uploaded images and removes them again.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(ref string) error
}

// EventHandler holds all HTTP handlers for the event API.
type EventHandler struct {
	svc     *service.EventService
	images  ImageStore
	metrics *Metrics
	log     *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, images ImageStore, metrics *Metrics, log *slog.Logger) *EventHandler {
	return &EventHandler{svc: svc, images: images, metrics: metrics, log: log}
}

// eventForm is the create/update payload. Multipart requests carry the same
// fields as form values plus an optional "image" file part. Image is only ever
// set from a file stored by this request.
type eventForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Image       string `json:"-"`
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	form, err := h.readEventForm(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user := caller(r)
	event, err := h.svc.CreateEvent(r.Context(), user.ID, model.CreateEventInput{
		Title:       form.Title,
		Description: form.Description,
		Date:        form.Date,
		Location:    form.Location,
		Image:       form.Image,
	})
	if err != nil {
		h.discardUpload(form.Image)
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.NewDetail(*event, user.ID, view.BaseURL(r)))
}

// ListEvents handles GET /api/events
// Admins see every event, everyone else the events they created.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := caller(r)
	events, err := h.svc.ListEvents(r.Context(), user)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Details(events, user.ID, view.BaseURL(r)))
}

// AdminEvents handles GET /api/events/admin-events
func (h *EventHandler) AdminEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.AdminEvents(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Details(events, caller(r).ID, view.BaseURL(r)))
}

// UpcomingEvents handles GET /api/events/upcoming
func (h *EventHandler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.UpcomingEvents(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Summaries(events, caller(r).ID, view.BaseURL(r)))
}

// AvailableEvents handles GET /api/events/available
func (h *EventHandler) AvailableEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.AvailableEvents(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Summaries(events, caller(r).ID, view.BaseURL(r)))
}

// MyEvents handles GET /api/events/myevents
func (h *EventHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	user := caller(r)
	events, err := h.svc.MyEvents(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Details(events, user.ID, view.BaseURL(r)))
}

// Register handles POST /api/events/{id}/register
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Register(r.Context(), caller(r).ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.metrics.registrationChanged("register")
	writeMessage(w, http.StatusOK, "Registered successfully")
}

// Unregister handles DELETE /api/events/{id}/unregister
func (h *EventHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unregister(r.Context(), caller(r).ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.metrics.registrationChanged("unregister")
	writeMessage(w, http.StatusOK, "Unregistered successfully")
}

// UpdateEvent handles PUT /api/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	form, err := h.readEventForm(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), model.UpdateEventInput{
		Title:       form.Title,
		Description: form.Description,
		Date:        form.Date,
		Location:    form.Location,
		Image:       form.Image,
	})
	if err != nil {
		h.discardUpload(form.Image)
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewDetail(*event, caller(r).ID, view.BaseURL(r)))
}

// DeleteEvent handles DELETE /api/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Event deleted successfully")
}

// MarkAttendees handles PUT /api/events/{id}/attendees
func (h *EventHandler) MarkAttendees(w http.ResponseWriter, r *http.Request) {
	var req model.AttendeesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.MarkAttendees(r.Context(), chi.URLParam(r, "id"), req.Attendees); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Attendees updated successfully")
}

// Registrants handles GET /api/events/{id}/registrants
func (h *EventHandler) Registrants(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Registrants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Registrants(users))
}

// readEventForm accepts multipart/form-data or a JSON body. An uploaded image
// is stored immediately and its reference returned in the form's Image.
func (h *EventHandler) readEventForm(w http.ResponseWriter, r *http.Request) (eventForm, error) {
	var form eventForm
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		err := decodeJSON(w, r, &form)
		return form, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return form, apperr.InvalidInput("Image must be 5MB or smaller")
		}
		return form, apperr.Wrap(apperr.KindInvalidInput, "Invalid form data", err)
	}
	defer r.MultipartForm.RemoveAll()

	form.Title = r.FormValue("title")
	form.Description = r.FormValue("description")
	form.Date = r.FormValue("date")
	form.Location = r.FormValue("location")

	_, fh, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return form, apperr.Wrap(apperr.KindInvalidInput, "Invalid form data", err)
	}
	ref, err := h.images.Save(fh)
	switch {
	case errors.Is(err, storage.ErrNotImage):
		return form, apperr.InvalidInput("Only image files are allowed!")
	case errors.Is(err, storage.ErrTooLarge):
		return form, apperr.InvalidInput("Image must be 5MB or smaller")
	case err != nil:
		return form, apperr.Internal("Failed to store image", err)
	}
	form.Image = ref
	return form, nil
}

// discardUpload removes an image stored for a request that then failed.
func (h *EventHandler) discardUpload(ref string) {
	if ref == "" {
		return
	}
	if err := h.images.Remove(ref); err != nil {
		h.log.Warn("discard uploaded image", "image", ref, "error", err)
	}
}
