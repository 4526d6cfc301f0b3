package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/store"
)

const historyLimit = 20

// ConversationStore is the persistence surface the assistant needs. The
// SQLite store satisfies it; tests substitute doubles.
type ConversationStore interface {
	GetSessionForUser(id, userID string) (*store.AssistantSession, error)
	CreateSession(userID string, context *string, turns []store.ChatTurn) (*store.AssistantSession, error)
	UpdateSessionTurns(id, userID string, turns []store.ChatTurn) error
	ListRecentSessions(userID string, limit int) ([]store.AssistantSession, error)
	DeleteSession(id, userID string) error
}

// Relay forwards a streaming chat completion, chunk by chunk.
type Relay interface {
	StreamChatCompletion(ctx context.Context, systemPrompt string, turns []store.ChatTurn, onChunk func(content string) error) (string, error)
}

// StreamSink receives the incremental output of a chat exchange. Done is
// called exactly once, after the exchange persisted, carrying the session id
// the caller resumes with.
type StreamSink interface {
	Chunk(content string) error
	Done(sessionID string) error
}

type ChatRequest struct {
	Message   string `json:"message"`
	Context   string `json:"context"`
	SessionID string `json:"session_id"`
}

type AssistantService struct {
	sessions ConversationStore
	relay    Relay
}

func NewAssistantService(sessions ConversationStore, relay Relay) *AssistantService {
	return &AssistantService{
		sessions: sessions,
		relay:    relay,
	}
}

// Chat runs one exchange: load (or start) the session, append the user turn,
// stream the assistant reply through sink, then persist both turns. A session
// id that does not resolve for this user starts a fresh session rather than
// erroring; the client learns the real id from the done event.
//
// Nothing is persisted when the relay fails before producing a reply, so an
// upstream outage never leaves a session with a dangling user turn.
func (s *AssistantService) Chat(ctx context.Context, userID string, req ChatRequest, sink StreamSink) error {
	if strings.TrimSpace(req.Message) == "" {
		return apperr.BadRequest("Message is required")
	}

	var session *store.AssistantSession
	if req.SessionID != "" {
		var err error
		session, err = s.sessions.GetSessionForUser(req.SessionID, userID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
	}

	var turns []store.ChatTurn
	if session != nil {
		turns = session.Turns
	}
	turns = append(turns, store.ChatTurn{Role: "user", Content: req.Message, Timestamp: time.Now()})

	reply, err := s.relay.StreamChatCompletion(ctx, BuildSystemPrompt(req.Context), turns, sink.Chunk)
	if err != nil {
		return err
	}

	turns = append(turns, store.ChatTurn{Role: "assistant", Content: reply, Timestamp: time.Now()})

	if session != nil {
		if err := s.sessions.UpdateSessionTurns(session.ID, userID, turns); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return sink.Done(session.ID)
	}

	var contextLabel *string
	if req.Context != "" {
		contextLabel = &req.Context
	}
	created, err := s.sessions.CreateSession(userID, contextLabel, turns)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return sink.Done(created.ID)
}

// History returns up to 20 sessions, most recently updated first.
func (s *AssistantService) History(userID string) ([]store.AssistantSession, error) {
	return s.sessions.ListRecentSessions(userID, historyLimit)
}

// ClearSession removes a session scoped to the owner. Clearing a session that
// does not exist (or belongs to someone else) succeeds silently.
func (s *AssistantService) ClearSession(userID, sessionID string) error {
	return s.sessions.DeleteSession(sessionID, userID)
}
