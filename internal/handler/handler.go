// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.MessageResponse{Message: msg})
}

// writeError renders err as {message}. Errors outside the apperr taxonomy are
// reported as 500 with their own text.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperr.KindInternal {
			log.Error("request failed",
				"method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeMessage(w, ae.Kind.HTTPStatus(), ae.Message)
		return
	}
	log.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeMessage(w, http.StatusInternalServerError, err.Error())
}

// decodeJSON reads a single JSON object. An empty body decodes as {}.
// Unknown fields are ignored, so frontends may send extras like confirmPassword.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindInvalidInput, "Invalid request body", err)
	}
	return nil
}

// caller returns the authenticated user. Routes using it sit behind Authenticate.
func caller(r *http.Request) *model.User {
	u, _ := auth.UserFromContext(r.Context())
	if u == nil {
		return &model.User{}
	}
	return u
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
