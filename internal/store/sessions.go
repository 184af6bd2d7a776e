package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotActive is returned when an answer or end targets a game
// session that is already over or does not exist.
var ErrSessionNotActive = errors.New("store: game session not active")

// GameSession tracks one run of the familiar-faces game.
type GameSession struct {
	ID             int64  `json:"id"`
	ProfileID      int64  `json:"profileId"`
	StartedAt      int64  `json:"startedAt"`
	EndedAt        *int64 `json:"endedAt,omitempty"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
	AvgAttention   int    `json:"avgAttention"`
	AvgRelaxation  int    `json:"avgRelaxation"`
}

// CreateGameSession starts a familiar-faces session for a profile.
func (db *DB) CreateGameSession(profileID int64) (*GameSession, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO game_sessions (profile_id, started_at) VALUES (?, ?)
	`, profileID, now)
	if err != nil {
		return nil, fmt.Errorf("insert game session: %w", err)
	}
	id, _ := result.LastInsertId()
	return &GameSession{ID: id, ProfileID: profileID, StartedAt: now}, nil
}

// GetGameSession returns a session by id, or nil if none exists.
func (db *DB) GetGameSession(id int64) (*GameSession, error) {
	var s GameSession
	err := db.QueryRow(`
		SELECT id, profile_id, started_at, ended_at, correct_answers, total_questions, avg_attention, avg_relaxation
		FROM game_sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.ProfileID, &s.StartedAt, &s.EndedAt, &s.CorrectAnswers, &s.TotalQuestions, &s.AvgAttention, &s.AvgRelaxation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game session: %w", err)
	}
	return &s, nil
}

// ListGameSessions returns sessions, newest first, optionally by profile.
func (db *DB) ListGameSessions(profileID int64) ([]GameSession, error) {
	query := `
		SELECT id, profile_id, started_at, ended_at, correct_answers, total_questions, avg_attention, avg_relaxation
		FROM game_sessions`
	args := []any{}
	if profileID > 0 {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list game sessions: %w", err)
	}
	defer rows.Close()

	var out []GameSession
	for rows.Next() {
		var s GameSession
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.StartedAt, &s.EndedAt, &s.CorrectAnswers, &s.TotalQuestions, &s.AvgAttention, &s.AvgRelaxation); err != nil {
			return nil, fmt.Errorf("scan game session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecordGameAnswer bumps the question counters on an open session.
func (db *DB) RecordGameAnswer(id int64, correct bool) (*GameSession, error) {
	inc := 0
	if correct {
		inc = 1
	}
	result, err := db.Exec(`
		UPDATE game_sessions
		SET total_questions = total_questions + 1, correct_answers = correct_answers + ?
		WHERE id = ? AND ended_at IS NULL
	`, inc, id)
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("session %d: %w", id, ErrSessionNotActive)
	}
	return db.GetGameSession(id)
}

// EndGameSession closes a session and folds in the average attention and
// relaxation over its recorded signal readings.
func (db *DB) EndGameSession(id int64) (*GameSession, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE game_sessions
		SET ended_at = ?,
		    avg_attention = COALESCE((SELECT CAST(ROUND(AVG(attention)) AS INTEGER) FROM signal_readings WHERE session_id = game_sessions.id), 0),
		    avg_relaxation = COALESCE((SELECT CAST(ROUND(AVG(relaxation)) AS INTEGER) FROM signal_readings WHERE session_id = game_sessions.id), 0)
		WHERE id = ? AND ended_at IS NULL
	`, now, id)
	if err != nil {
		return nil, fmt.Errorf("end game session: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("session %d: %w", id, ErrSessionNotActive)
	}
	return db.GetGameSession(id)
}
