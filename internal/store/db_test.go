package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProfile(t *testing.T, db *DB) *Profile {
	t.Helper()
	p, err := db.CreateProfile("Eleanor Roosevelt", "ER")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	return p
}

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keepsake.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	db := testDB(t)
	created := seedProfile(t, db)

	got, err := db.GetProfile(created.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got == nil || got.Name != "Eleanor Roosevelt" || got.AvatarInitials != "ER" {
		t.Errorf("got %+v", got)
	}

	missing, err := db.GetProfile(9999)
	if err != nil {
		t.Fatalf("GetProfile missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing profile, got %+v", missing)
	}
}

func TestDeleteProfileCascades(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)

	if _, err := db.CreatePhoto(&Photo{ProfileID: p.ID, Name: "Arthur", ImageBase64: "aGk="}); err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}
	if _, err := db.CreateBanditSession(p.ID); err != nil {
		t.Fatalf("CreateBanditSession: %v", err)
	}
	if _, err := db.CreateReading(&Reading{ProfileID: p.ID, Attention: 50, Relaxation: 50, Stress: 20, Recognition: 40}); err != nil {
		t.Fatalf("CreateReading: %v", err)
	}

	if err := db.DeleteProfile(p.ID); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	photos, err := db.ListPhotos(p.ID)
	if err != nil {
		t.Fatalf("ListPhotos: %v", err)
	}
	if len(photos) != 0 {
		t.Errorf("photos survived delete: %+v", photos)
	}
	sessions, err := db.ListBanditSessions(p.ID)
	if err != nil {
		t.Fatalf("ListBanditSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("bandit sessions survived delete: %+v", sessions)
	}
}
