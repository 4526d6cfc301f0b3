package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/industryverse/backend/internal/apperr"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError is the single place the error taxonomy becomes a status code
// and a user-safe message. Failure detail only leaks in development mode.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}

	body := map[string]interface{}{
		"success": false,
		"message": appErr.Message,
	}
	if h.cfg.Development() && appErr.Err != nil {
		body["detail"] = appErr.Err.Error()
	}
	respondJSON(w, appErr.Status, body)
}
