package common

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vrtmanagement/feedback-system/internal/survey/application"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// WriteError maps the application error taxonomy onto status codes:
// ValidationError 400, NotFoundError 404, anything else 500. Upstream
// failures are logged with their cause and surfaced with a sanitized message.
func WriteError(logger *zap.Logger, w http.ResponseWriter, err error) {
	switch {
	case application.IsValidation(err):
		WriteJSON(logger, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case application.IsNotFound(err):
		WriteJSON(logger, w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		WriteJSON(logger, w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
