package api

import (
	"encoding/json"
	"net/http"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
)

// ErrorResponse is the envelope for all error payloads.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// RespondJSON writes payload as JSON with the given status. A nil
// payload writes only the status line.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, `{"message":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error maps an application error to its HTTP status and writes the
// error envelope. Unknown and dependency errors are masked with a
// generic message so internals never leak to clients.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		status = http.StatusBadRequest
	case apperr.KindAuthentication:
		status = http.StatusUnauthorized
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}

	resp := ErrorResponse{Message: apperr.MessageOf(err)}
	if status == http.StatusInternalServerError {
		resp.Message = "internal server error"
	}
	if details := apperr.DetailsOf(err); len(details) > 0 {
		resp.Details = details
	}

	RespondJSON(w, status, resp)
}
