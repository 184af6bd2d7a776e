package store

import (
	"fmt"
	"time"
)

// Reading is one persisted biosignal sample. Only the four affective
// channels are stored; band powers stay in the live feed.
type Reading struct {
	ID          int64 `json:"id"`
	ProfileID   int64 `json:"profileId"`
	SessionID   int64 `json:"sessionId"`
	Attention   int   `json:"attention"`
	Relaxation  int   `json:"relaxation"`
	Stress      int   `json:"stress"`
	Recognition int   `json:"recognition"`
	RecordedAt  int64 `json:"recordedAt"`
}

// CreateReading persists one sample. Values are stored as given; the feed
// clamps before they ever get here.
func (db *DB) CreateReading(r *Reading) (*Reading, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO signal_readings (profile_id, session_id, attention, relaxation, stress, recognition, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ProfileID, r.SessionID, r.Attention, r.Relaxation, r.Stress, r.Recognition, now)
	if err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}
	id, _ := result.LastInsertId()
	out := *r
	out.ID = id
	out.RecordedAt = now
	return &out, nil
}

// ListReadings returns samples oldest first, optionally by profile.
func (db *DB) ListReadings(profileID int64) ([]Reading, error) {
	query := `
		SELECT id, profile_id, session_id, attention, relaxation, stress, recognition, recorded_at
		FROM signal_readings`
	args := []any{}
	if profileID > 0 {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY recorded_at, id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.SessionID, &r.Attention, &r.Relaxation, &r.Stress, &r.Recognition, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentAttention returns the profile's last n attention readings, oldest
// first. Feeds the signal-correlation heuristic in session stats.
func (db *DB) RecentAttention(profileID int64, n int) ([]float64, error) {
	rows, err := db.Query(`
		SELECT attention FROM signal_readings
		WHERE profile_id = ?
		ORDER BY recorded_at DESC, id DESC LIMIT ?
	`, profileID, n)
	if err != nil {
		return nil, fmt.Errorf("recent attention: %w", err)
	}
	defer rows.Close()

	var vals []float64
	for rows.Next() {
		var a float64
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan attention: %w", err)
		}
		vals = append(vals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
	return vals, nil
}
