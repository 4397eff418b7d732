package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders typed application errors with their status and payload;
// anything else becomes a generic 500 carrying the correlation id.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Entry, err error) {
	requestID := middleware.RequestIDFromContext(r.Context())

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Status >= 500 {
			logger.WithFields(log.Fields{
				"request_id": requestID,
				"code":       appErr.Code,
			}).WithError(err).Error("request failed")
		}
		writeJSON(w, appErr.Status, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			},
		})
		return
	}

	logger.WithField("request_id", requestID).WithError(err).Error("unhandled error")
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    apperr.CodeInternal,
			"message": "Internal server error",
			"details": map[string]string{"request_id": requestID},
		},
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apperr.Validation("failed to read request body", "")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Validation("invalid JSON", "")
	}
	return nil
}
