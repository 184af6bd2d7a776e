package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Profile is a patient profile. All other rows hang off one of these.
type Profile struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	AvatarInitials string `json:"avatarInitials"`
	CreatedAt      int64  `json:"createdAt"`
}

// CreateProfile inserts a new patient profile.
func (db *DB) CreateProfile(name, avatarInitials string) (*Profile, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO profiles (name, avatar_initials, created_at)
		VALUES (?, ?, ?)
	`, name, avatarInitials, now)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	id, _ := result.LastInsertId()
	return &Profile{ID: id, Name: name, AvatarInitials: avatarInitials, CreatedAt: now}, nil
}

// GetProfile returns a profile by id, or nil if none exists.
func (db *DB) GetProfile(id int64) (*Profile, error) {
	var p Profile
	err := db.QueryRow(`
		SELECT id, name, avatar_initials, created_at FROM profiles WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.AvatarInitials, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// ListProfiles returns all profiles, oldest first.
func (db *DB) ListProfiles() ([]Profile, error) {
	rows, err := db.Query(`
		SELECT id, name, avatar_initials, created_at FROM profiles ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarInitials, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProfile removes a profile. Owned photos, sessions, messages,
// readings, and scoring snapshots cascade via foreign keys.
func (db *DB) DeleteProfile(id int64) error {
	if _, err := db.Exec(`DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
