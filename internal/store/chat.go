package store

import (
	"fmt"
	"time"
)

// ChatMessage is one line of a photo reminiscence conversation.
type ChatMessage struct {
	ID        int64  `json:"id"`
	ProfileID int64  `json:"profileId"`
	PhotoID   int64  `json:"photoId,omitempty"`
	SessionID int64  `json:"sessionId,omitempty"`
	Content   string `json:"content"`
	Sender    string `json:"sender"` // "ai" or "user"
	CreatedAt int64  `json:"createdAt"`
}

// CreateChatMessage appends a message to a conversation.
func (db *DB) CreateChatMessage(m *ChatMessage) (*ChatMessage, error) {
	if m.Sender != "ai" && m.Sender != "user" {
		return nil, fmt.Errorf("invalid sender %q", m.Sender)
	}
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO chat_messages (profile_id, photo_id, session_id, content, sender, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ProfileID, m.PhotoID, m.SessionID, m.Content, m.Sender, now)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	id, _ := result.LastInsertId()
	out := *m
	out.ID = id
	out.CreatedAt = now
	return &out, nil
}

// ListChatMessages returns messages ordered oldest first, filtered by
// session and/or photo when those ids are > 0.
func (db *DB) ListChatMessages(sessionID, photoID int64) ([]ChatMessage, error) {
	query := `
		SELECT id, profile_id, photo_id, session_id, content, sender, created_at
		FROM chat_messages WHERE 1=1`
	args := []any{}
	if sessionID > 0 {
		query += ` AND session_id = ?`
		args = append(args, sessionID)
	}
	if photoID > 0 {
		query += ` AND photo_id = ?`
		args = append(args, photoID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.PhotoID, &m.SessionID, &m.Content, &m.Sender, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
