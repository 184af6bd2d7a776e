package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BanditSession is the persisted bandit-trainer session row. The stats
// columns are derived from the trial log; the log itself stays the source
// of truth.
type BanditSession struct {
	ID                int64  `json:"id"`
	PublicID          string `json:"publicId"`
	ProfileID         int64  `json:"profileId"`
	StartedAt         int64  `json:"startedAt"`
	EndedAt           *int64 `json:"endedAt,omitempty"`
	TotalTrials       int    `json:"totalTrials"`
	OptimalChoices    int    `json:"optimalChoices"`
	ExplorationRate   int    `json:"explorationRate"`
	LearningRate      int    `json:"learningRate"`
	AvgReactionMs     int    `json:"avgReactionMs"`
	SignalCorrelation int    `json:"signalCorrelation"`
}

// BanditStats carries the derived columns for a stats update.
type BanditStats struct {
	TotalTrials       int
	OptimalChoices    int
	ExplorationRate   int
	LearningRate      int
	AvgReactionMs     int
	SignalCorrelation int
}

// BanditTrial is one persisted trial row.
type BanditTrial struct {
	ID         int64 `json:"id"`
	SessionID  int64 `json:"sessionId"`
	TrialIndex int   `json:"trialIndex"`
	Arm        int   `json:"arm"`
	Reward     int   `json:"reward"`
	ReactionMs int   `json:"reactionMs"`
	RecordedAt int64 `json:"recordedAt"`
}

// CreateBanditSession starts a new trainer session for a profile.
func (db *DB) CreateBanditSession(profileID int64) (*BanditSession, error) {
	now := time.Now().UnixMilli()
	publicID := uuid.NewString()
	result, err := db.Exec(`
		INSERT INTO bandit_sessions (public_id, profile_id, started_at) VALUES (?, ?, ?)
	`, publicID, profileID, now)
	if err != nil {
		return nil, fmt.Errorf("insert bandit session: %w", err)
	}
	id, _ := result.LastInsertId()
	return &BanditSession{ID: id, PublicID: publicID, ProfileID: profileID, StartedAt: now}, nil
}

const banditSessionCols = `id, public_id, profile_id, started_at, ended_at,
	total_trials, optimal_choices, exploration_rate, learning_rate, avg_reaction_ms, signal_correlation`

func scanBanditSession(row interface{ Scan(...any) error }) (*BanditSession, error) {
	var s BanditSession
	err := row.Scan(&s.ID, &s.PublicID, &s.ProfileID, &s.StartedAt, &s.EndedAt,
		&s.TotalTrials, &s.OptimalChoices, &s.ExplorationRate, &s.LearningRate, &s.AvgReactionMs, &s.SignalCorrelation)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetBanditSession returns a session by id, or nil if none exists.
func (db *DB) GetBanditSession(id int64) (*BanditSession, error) {
	s, err := scanBanditSession(db.QueryRow(
		`SELECT `+banditSessionCols+` FROM bandit_sessions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bandit session: %w", err)
	}
	return s, nil
}

// ListBanditSessions returns sessions newest first, optionally by profile.
func (db *DB) ListBanditSessions(profileID int64) ([]BanditSession, error) {
	query := `SELECT ` + banditSessionCols + ` FROM bandit_sessions`
	args := []any{}
	if profileID > 0 {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY started_at DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bandit sessions: %w", err)
	}
	defer rows.Close()

	var out []BanditSession
	for rows.Next() {
		s, err := scanBanditSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bandit session: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListBanditTrials returns a session's trial log in trial order.
func (db *DB) ListBanditTrials(sessionID int64) ([]BanditTrial, error) {
	rows, err := db.Query(`
		SELECT id, session_id, trial_index, arm, reward, reaction_ms, recorded_at
		FROM bandit_trials WHERE session_id = ? ORDER BY trial_index
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list bandit trials: %w", err)
	}
	defer rows.Close()

	var out []BanditTrial
	for rows.Next() {
		var t BanditTrial
		if err := rows.Scan(&t.ID, &t.SessionID, &t.TrialIndex, &t.Arm, &t.Reward, &t.ReactionMs, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan bandit trial: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AppendBanditTrial inserts a trial and applies the freshly recomputed
// stats in one transaction, so a concurrent reader never observes the
// trial without its stats (or the reverse). The UNIQUE(session_id,
// trial_index) constraint backs the gap-free index invariant.
func (db *DB) AppendBanditTrial(t *BanditTrial, stats BanditStats) (*BanditTrial, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin trial append: %w", err)
	}

	now := time.Now().UnixMilli()
	result, err := tx.Exec(`
		INSERT INTO bandit_trials (session_id, trial_index, arm, reward, reaction_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.SessionID, t.TrialIndex, t.Arm, t.Reward, t.ReactionMs, now)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert bandit trial: %w", err)
	}

	if err := updateBanditStats(tx, t.SessionID, stats); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit trial append: %w", err)
	}

	id, _ := result.LastInsertId()
	out := *t
	out.ID = id
	out.RecordedAt = now
	return &out, nil
}

// UpdateBanditStats rewrites the derived columns for a session.
func (db *DB) UpdateBanditStats(sessionID int64, stats BanditStats) error {
	return updateBanditStats(db.DB, sessionID, stats)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func updateBanditStats(e execer, sessionID int64, stats BanditStats) error {
	_, err := e.Exec(`
		UPDATE bandit_sessions
		SET total_trials = ?, optimal_choices = ?, exploration_rate = ?,
		    learning_rate = ?, avg_reaction_ms = ?, signal_correlation = ?
		WHERE id = ?
	`, stats.TotalTrials, stats.OptimalChoices, stats.ExplorationRate,
		stats.LearningRate, stats.AvgReactionMs, stats.SignalCorrelation, sessionID)
	if err != nil {
		return fmt.Errorf("update bandit stats: %w", err)
	}
	return nil
}

// EndBanditSession closes a session exactly once, applying the final
// stats in the same statement. Returns false if the session was already
// ended.
func (db *DB) EndBanditSession(sessionID int64, stats BanditStats) (bool, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE bandit_sessions
		SET ended_at = ?, total_trials = ?, optimal_choices = ?, exploration_rate = ?,
		    learning_rate = ?, avg_reaction_ms = ?, signal_correlation = ?
		WHERE id = ? AND ended_at IS NULL
	`, now, stats.TotalTrials, stats.OptimalChoices, stats.ExplorationRate,
		stats.LearningRate, stats.AvgReactionMs, stats.SignalCorrelation, sessionID)
	if err != nil {
		return false, fmt.Errorf("end bandit session: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
