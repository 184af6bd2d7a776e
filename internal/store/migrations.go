package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "profiles: patient profiles",
		SQL: `
CREATE TABLE profiles (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    avatar_initials TEXT NOT NULL,
    created_at      INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "photos: familiar faces with memory notes",
		SQL: `
CREATE TABLE photos (
    id           INTEGER PRIMARY KEY,
    profile_id   INTEGER NOT NULL,
    name         TEXT NOT NULL,
    relationship TEXT,
    image_base64 TEXT NOT NULL,
    memory_notes TEXT,
    place        TEXT,
    created_at   INTEGER NOT NULL,

    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_photos_profile ON photos(profile_id);
`,
	},
	{
		Version:     3,
		Description: "game_sessions: familiar-faces game tracking",
		SQL: `
CREATE TABLE game_sessions (
    id              INTEGER PRIMARY KEY,
    profile_id      INTEGER NOT NULL,
    started_at      INTEGER NOT NULL,
    ended_at        INTEGER,
    correct_answers INTEGER NOT NULL DEFAULT 0,
    total_questions INTEGER NOT NULL DEFAULT 0,
    avg_attention   INTEGER NOT NULL DEFAULT 0,
    avg_relaxation  INTEGER NOT NULL DEFAULT 0,

    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_game_sessions_profile ON game_sessions(profile_id, started_at DESC);
`,
	},
	{
		Version:     4,
		Description: "chat_messages: photo reminiscence transcripts",
		SQL: `
CREATE TABLE chat_messages (
    id         INTEGER PRIMARY KEY,
    profile_id INTEGER NOT NULL,
    photo_id   INTEGER,
    session_id INTEGER,
    content    TEXT NOT NULL,
    sender     TEXT NOT NULL CHECK (sender IN ('ai', 'user')),
    created_at INTEGER NOT NULL,

    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_chat_session ON chat_messages(session_id);
CREATE INDEX idx_chat_photo   ON chat_messages(photo_id);
`,
	},
	{
		Version:     5,
		Description: "signal_readings: simulated biosignal samples",
		SQL: `
CREATE TABLE signal_readings (
    id          INTEGER PRIMARY KEY,
    profile_id  INTEGER NOT NULL,
    session_id  INTEGER NOT NULL DEFAULT 0,
    attention   INTEGER NOT NULL,
    relaxation  INTEGER NOT NULL,
    stress      INTEGER NOT NULL,
    recognition INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL,

    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_readings_profile ON signal_readings(profile_id, recorded_at);
CREATE INDEX idx_readings_session ON signal_readings(session_id);
`,
	},
	{
		Version:     6,
		Description: "bandit_sessions + bandit_trials: adaptive trainer",
		SQL: `
CREATE TABLE bandit_sessions (
    id                 INTEGER PRIMARY KEY,
    public_id          TEXT NOT NULL UNIQUE,
    profile_id         INTEGER NOT NULL,
    started_at         INTEGER NOT NULL,
    ended_at           INTEGER,
    total_trials       INTEGER NOT NULL DEFAULT 0,
    optimal_choices    INTEGER NOT NULL DEFAULT 0,
    exploration_rate   INTEGER NOT NULL DEFAULT 0,
    learning_rate      INTEGER NOT NULL DEFAULT 0,
    avg_reaction_ms    INTEGER NOT NULL DEFAULT 0,
    signal_correlation INTEGER NOT NULL DEFAULT 0,

    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_bandit_sessions_profile ON bandit_sessions(profile_id, started_at DESC);

CREATE TABLE bandit_trials (
    id          INTEGER PRIMARY KEY,
    session_id  INTEGER NOT NULL,
    trial_index INTEGER NOT NULL,
    arm         INTEGER NOT NULL CHECK (arm IN (0, 1, 2)),
    reward      INTEGER NOT NULL CHECK (reward IN (0, 1)),
    reaction_ms INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL,

    UNIQUE (session_id, trial_index),
    FOREIGN KEY (session_id) REFERENCES bandit_sessions(id) ON DELETE CASCADE
);

CREATE INDEX idx_bandit_trials_session ON bandit_trials(session_id, trial_index);
`,
	},
	{
		Version:     7,
		Description: "cognitive_profiles: derived scoring snapshots",
		SQL: `
CREATE TABLE cognitive_profiles (
    id                INTEGER PRIMARY KEY,
    profile_id        INTEGER NOT NULL,
    created_at        INTEGER NOT NULL,
    decline_risk      INTEGER NOT NULL,
    attention_score   INTEGER NOT NULL,
    memory_score      INTEGER NOT NULL,
    cognitive_control INTEGER NOT NULL,
    fatigue_level     INTEGER NOT NULL,
    sample_count      INTEGER NOT NULL,
    feature_weights   TEXT,

    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_cog_profiles_profile ON cognitive_profiles(profile_id, created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
