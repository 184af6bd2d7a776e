package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// CognitiveProfile is a persisted scoring snapshot. FeatureWeights is a
// descriptive byproduct kept as JSON; it never feeds a computation.
type CognitiveProfile struct {
	ID               int64              `json:"id"`
	ProfileID        int64              `json:"profileId"`
	CreatedAt        int64              `json:"createdAt"`
	DeclineRisk      int                `json:"declineRisk"`
	AttentionScore   int                `json:"attentionScore"`
	MemoryScore      int                `json:"memoryScore"`
	CognitiveControl int                `json:"cognitiveControl"`
	FatigueLevel     int                `json:"fatigueLevel"`
	SampleCount      int                `json:"sampleCount"`
	FeatureWeights   map[string]float64 `json:"featureWeights,omitempty"`
}

// CreateCognitiveProfile persists a scoring snapshot. Snapshots are
// write-once; there is no update path.
func (db *DB) CreateCognitiveProfile(p *CognitiveProfile) (*CognitiveProfile, error) {
	now := time.Now().UnixMilli()
	var weights []byte
	if p.FeatureWeights != nil {
		var err error
		weights, err = json.Marshal(p.FeatureWeights)
		if err != nil {
			return nil, fmt.Errorf("marshal feature weights: %w", err)
		}
	}
	result, err := db.Exec(`
		INSERT INTO cognitive_profiles (profile_id, created_at, decline_risk, attention_score,
			memory_score, cognitive_control, fatigue_level, sample_count, feature_weights)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ProfileID, now, p.DeclineRisk, p.AttentionScore, p.MemoryScore,
		p.CognitiveControl, p.FatigueLevel, p.SampleCount, string(weights))
	if err != nil {
		return nil, fmt.Errorf("insert cognitive profile: %w", err)
	}
	id, _ := result.LastInsertId()
	out := *p
	out.ID = id
	out.CreatedAt = now
	return &out, nil
}

func scanCognitiveProfile(row interface{ Scan(...any) error }) (*CognitiveProfile, error) {
	var p CognitiveProfile
	var weights string
	err := row.Scan(&p.ID, &p.ProfileID, &p.CreatedAt, &p.DeclineRisk, &p.AttentionScore,
		&p.MemoryScore, &p.CognitiveControl, &p.FatigueLevel, &p.SampleCount, &weights)
	if err != nil {
		return nil, err
	}
	if weights != "" {
		if err := json.Unmarshal([]byte(weights), &p.FeatureWeights); err != nil {
			return nil, fmt.Errorf("decode feature weights: %w", err)
		}
	}
	return &p, nil
}

const cogProfileCols = `id, profile_id, created_at, decline_risk, attention_score,
	memory_score, cognitive_control, fatigue_level, sample_count, feature_weights`

// ListCognitiveProfiles returns snapshots newest first, optionally by profile.
func (db *DB) ListCognitiveProfiles(profileID int64) ([]CognitiveProfile, error) {
	query := `SELECT ` + cogProfileCols + ` FROM cognitive_profiles`
	args := []any{}
	if profileID > 0 {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cognitive profiles: %w", err)
	}
	defer rows.Close()

	var out []CognitiveProfile
	for rows.Next() {
		p, err := scanCognitiveProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cognitive profile: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// LatestCognitiveProfile returns the most recent snapshot for a profile,
// or nil if none exists.
func (db *DB) LatestCognitiveProfile(profileID int64) (*CognitiveProfile, error) {
	p, err := scanCognitiveProfile(db.QueryRow(
		`SELECT `+cogProfileCols+` FROM cognitive_profiles
		 WHERE profile_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, profileID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest cognitive profile: %w", err)
	}
	return p, nil
}
