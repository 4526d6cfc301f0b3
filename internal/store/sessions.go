package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Assistant session methods. The turn list is stored as a JSON array in a
// TEXT column; array order is insertion order and is never rewritten except
// by appending.

// GetSessionForUser returns the session only when it is owned by userID.
// A missing or foreign session yields (nil, nil).
func (s *SQLiteStore) GetSessionForUser(id, userID string) (*AssistantSession, error) {
	row := s.db.QueryRow(
		"SELECT id, user_id, context, turns, created_at, updated_at FROM assistant_sessions WHERE id = ? AND user_id = ?",
		id, userID,
	)
	session, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assistant session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) CreateSession(userID string, context *string, turns []ChatTurn) (*AssistantSession, error) {
	turnsJSON, err := json.Marshal(turns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal turns: %w", err)
	}

	session := &AssistantSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Context:   context,
		Turns:     turns,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err = s.db.Exec(
		"INSERT INTO assistant_sessions (id, user_id, context, turns, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		session.ID, session.UserID, session.Context, string(turnsJSON), session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assistant session: %w", err)
	}
	return session, nil
}

// UpdateSessionTurns replaces the stored turn list and bumps updated_at. The
// caller only ever passes the previous list plus appended turns.
func (s *SQLiteStore) UpdateSessionTurns(id, userID string, turns []ChatTurn) error {
	turnsJSON, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal turns: %w", err)
	}

	res, err := s.db.Exec(
		"UPDATE assistant_sessions SET turns = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		string(turnsJSON), time.Now(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assistant session: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("assistant session not found or not owned by user")
	}
	return nil
}

func (s *SQLiteStore) ListRecentSessions(userID string, limit int) ([]AssistantSession, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, context, turns, created_at, updated_at FROM assistant_sessions WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assistant sessions: %w", err)
	}
	defer rows.Close()

	var sessions []AssistantSession
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assistant session row: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes zero or one session scoped to the owner. Deleting a
// missing or foreign session is not an error.
func (s *SQLiteStore) DeleteSession(id, userID string) error {
	_, err := s.db.Exec("DELETE FROM assistant_sessions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete assistant session: %w", err)
	}
	return nil
}

func scanSession(scan func(dest ...interface{}) error) (*AssistantSession, error) {
	var session AssistantSession
	var context sql.NullString
	var turnsJSON string
	err := scan(&session.ID, &session.UserID, &context, &turnsJSON, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if context.Valid {
		session.Context = &context.String
	}
	if err := json.Unmarshal([]byte(turnsJSON), &session.Turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal turns: %w", err)
	}
	return &session, nil
}
