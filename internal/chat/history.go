package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/achen-archive/memoirsite/internal/db"
	"github.com/achen-archive/memoirsite/internal/llm"
)

// StoredMessage is one turn of a saved conversation.
type StoredMessage struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Role      llm.Role   `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
	CreatedAt string     `json:"created_at"`
}

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("chat session not found")

// History persists chat sessions and their messages.
type History struct {
	db *db.DB
}

// NewHistory creates a History backed by the given database.
func NewHistory(database *db.DB) *History {
	return &History{db: database}
}

// StartSession creates a new session for a client and returns its id.
func (h *History) StartSession(ctx context.Context, clientID string) (string, error) {
	id := uuid.New().String()
	if clientID == "" {
		clientID = "anonymous"
	}
	_, err := h.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (id, client_id) VALUES (?, ?)", id, clientID)
	if err != nil {
		return "", fmt.Errorf("creating chat session: %w", err)
	}
	return id, nil
}

// Append records a message in a session. Citations may be nil.
func (h *History) Append(ctx context.Context, sessionID string, role llm.Role, content string, citations []Citation) error {
	if citations == nil {
		citations = []Citation{}
	}
	citationsJSON, err := json.Marshal(citations)
	if err != nil {
		return fmt.Errorf("encoding citations: %w", err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, role, content, citations)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, string(role), content, string(citationsJSON),
	)
	if err != nil {
		return fmt.Errorf("saving chat message: %w", err)
	}

	_, err = h.db.ExecContext(ctx,
		"UPDATE chat_sessions SET updated_at = datetime('now') WHERE id = ?", sessionID)
	return err
}

// Messages returns all messages of a session, oldest first.
func (h *History) Messages(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	var exists int
	err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_sessions WHERE id = ?", sessionID).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, role, content, citations, created_at FROM chat_messages
		WHERE session_id = ? ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []StoredMessage
	for rows.Next() {
		var (
			m             StoredMessage
			role          string
			citationsJSON string
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &citationsJSON, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.SessionID = sessionID
		m.Role = llm.Role(role)
		if err := json.Unmarshal([]byte(citationsJSON), &m.Citations); err != nil {
			m.Citations = nil
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
