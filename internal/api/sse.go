package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// streamEvent is one event on the chat response stream. The wire format is
// standard SSE: "data: <json>\n\n" per event.
type streamEvent struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message,omitempty"`
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event streamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sse event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write sse event: %w", err)
	}
	flusher.Flush()
	return nil
}

// sseSink adapts the response writer to the assistant's StreamSink. wrote
// tracks whether the response is already committed, so earlier failures can
// still produce a proper status code.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	wrote   bool
}

func (s *sseSink) Chunk(content string) error {
	s.wrote = true
	return writeSSE(s.w, s.flusher, streamEvent{Type: "chunk", Content: content})
}

func (s *sseSink) Done(sessionID string) error {
	s.wrote = true
	return writeSSE(s.w, s.flusher, streamEvent{Type: "done", SessionID: sessionID})
}
