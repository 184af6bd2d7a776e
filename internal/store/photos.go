package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Photo is a familiar face with optional memory prompts. The image itself
// is stored inline as base64; uploads are capped upstream.
type Photo struct {
	ID           int64  `json:"id"`
	ProfileID    int64  `json:"profileId"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	ImageBase64  string `json:"imageBase64"`
	MemoryNotes  string `json:"memoryNotes,omitempty"`
	Place        string `json:"place,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

// CreatePhoto inserts a photo for a profile.
func (db *DB) CreatePhoto(p *Photo) (*Photo, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO photos (profile_id, name, relationship, image_base64, memory_notes, place, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ProfileID, p.Name, p.Relationship, p.ImageBase64, p.MemoryNotes, p.Place, now)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}
	id, _ := result.LastInsertId()
	out := *p
	out.ID = id
	out.CreatedAt = now
	return &out, nil
}

// GetPhoto returns a photo by id, or nil if none exists.
func (db *DB) GetPhoto(id int64) (*Photo, error) {
	var p Photo
	err := db.QueryRow(`
		SELECT id, profile_id, name, relationship, image_base64, memory_notes, place, created_at
		FROM photos WHERE id = ?
	`, id).Scan(&p.ID, &p.ProfileID, &p.Name, &p.Relationship, &p.ImageBase64, &p.MemoryNotes, &p.Place, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return &p, nil
}

// ListPhotos returns photos, optionally filtered by profile (profileID > 0).
func (db *DB) ListPhotos(profileID int64) ([]Photo, error) {
	query := `
		SELECT id, profile_id, name, relationship, image_base64, memory_notes, place, created_at
		FROM photos`
	args := []any{}
	if profileID > 0 {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY created_at`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.ProfileID, &p.Name, &p.Relationship, &p.ImageBase64, &p.MemoryNotes, &p.Place, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePhoto removes a photo and detaches its chat messages.
func (db *DB) DeletePhoto(id int64) error {
	if _, err := db.Exec(`DELETE FROM chat_messages WHERE photo_id = ?`, id); err != nil {
		return fmt.Errorf("delete photo messages: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM photos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}
