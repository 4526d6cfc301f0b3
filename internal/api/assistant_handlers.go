package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/core"
)

// ChatHandler runs one assistant exchange and streams the reply as SSE:
// zero or more {type:"chunk"} events followed by exactly one
// {type:"done",sessionId} event.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req core.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeError(w, apperr.BadRequest("Message is required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, apperr.Internal(nil))
		return
	}

	setupSSEHeaders(w)
	sink := &sseSink{w: w, flusher: flusher}

	if err := h.assistant.Chat(r.Context(), identity.UserID, req, sink); err != nil {
		if !sink.wrote {
			// Response not committed yet: report a real status code.
			h.writeError(w, err)
			return
		}
		writeSSE(w, flusher, streamEvent{Type: "error", Message: apperr.From(err).Message})
	}
}

func (h *APIHandler) AssistantHistoryHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	sessions, err := h.assistant.History(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "logs": sessions})
}

// ClearSessionHandler is idempotent: clearing an absent or foreign session
// still reports success.
func (h *APIHandler) ClearSessionHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.assistant.ClearSession(identity.UserID, sessionID); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Session cleared"})
}
