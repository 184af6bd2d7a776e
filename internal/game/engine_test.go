package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/treloar/keepsake/internal/signal"
	"github.com/treloar/keepsake/internal/store"
)

func testEngine(t *testing.T) (*Engine, *store.DB, int64) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	profile, err := db.CreateProfile("Eleanor Roosevelt", "ER")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	feed := signal.NewFeed(signal.WithSeed(1))
	eng := NewEngine(db, feed, []float64{0.3, 0.5, 0.7}, 20, 0)
	return eng, db, profile.ID
}

func TestEngineTrialCap(t *testing.T) {
	eng, db, profileID := testEngine(t)
	eng.maxTrials = 3

	sess, err := db.CreateBanditSession(profileID)
	if err != nil {
		t.Fatalf("CreateBanditSession: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := eng.RecordTrial(sess.ID, 2, 1, 500); err != nil {
			t.Fatalf("trial %d: %v", i, err)
		}
	}
	if _, _, err := eng.RecordTrial(sess.ID, 2, 1, 500); !errors.Is(err, ErrSessionFull) {
		t.Errorf("trial past cap: err = %v, want ErrSessionFull", err)
	}

	trials, err := db.ListBanditTrials(sess.ID)
	if err != nil {
		t.Fatalf("ListBanditTrials: %v", err)
	}
	if len(trials) != 3 {
		t.Errorf("log length = %d, want 3 (rejected trial must not persist)", len(trials))
	}
}

func TestSessionRecordValidation(t *testing.T) {
	sess := &Session{ID: 1}

	if _, err := sess.Record(3, 1, 500, time.Now()); !errors.Is(err, ErrInvalidArm) {
		t.Errorf("arm 3: err = %v, want ErrInvalidArm", err)
	}
	if _, err := sess.Record(-1, 1, 500, time.Now()); !errors.Is(err, ErrInvalidArm) {
		t.Errorf("arm -1: err = %v, want ErrInvalidArm", err)
	}
	if len(sess.Trials) != 0 {
		t.Fatalf("rejected records must not append, log has %d", len(sess.Trials))
	}

	trial, err := sess.Record(2, 1, -50, time.Now())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if trial.Index != 1 {
		t.Errorf("first index = %d, want 1", trial.Index)
	}
	if trial.ReactionMs != 0 {
		t.Errorf("negative reaction clamped to %d, want 0", trial.ReactionMs)
	}

	if err := sess.End(time.Now()); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := sess.Record(1, 0, 500, time.Now()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("record after end: err = %v, want ErrSessionClosed", err)
	}
	if len(sess.Trials) != 1 {
		t.Errorf("log changed by rejected record: %d trials", len(sess.Trials))
	}
	if err := sess.End(time.Now()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("second end: err = %v, want ErrSessionClosed", err)
	}
}

func TestEngineRecordTrial(t *testing.T) {
	eng, db, profileID := testEngine(t)
	sess, err := eng.StartSession(profileID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	arms := []int{0, 0, 2, 2}
	for i, arm := range arms {
		trial, stats, err := eng.RecordTrial(sess.ID, arm, 1, 600)
		if err != nil {
			t.Fatalf("RecordTrial %d: %v", i, err)
		}
		if trial.TrialIndex != i+1 {
			t.Errorf("trial index = %d, want %d", trial.TrialIndex, i+1)
		}
		if stats.TotalTrials != i+1 {
			t.Errorf("stats.TotalTrials = %d, want %d", stats.TotalTrials, i+1)
		}
	}

	row, err := db.GetBanditSession(sess.ID)
	if err != nil {
		t.Fatalf("GetBanditSession: %v", err)
	}
	if row.TotalTrials != 4 || row.OptimalChoices != 2 {
		t.Errorf("persisted stats = %+v", row)
	}
	if row.LearningRate != 100 {
		t.Errorf("learningRate = %d, want 100 for 0,0,2,2", row.LearningRate)
	}
}

func TestEngineRecordTrialErrors(t *testing.T) {
	eng, _, profileID := testEngine(t)
	sess, _ := eng.StartSession(profileID)

	if _, _, err := eng.RecordTrial(sess.ID, 7, 1, 500); !errors.Is(err, ErrInvalidArm) {
		t.Errorf("err = %v, want ErrInvalidArm", err)
	}
	if _, _, err := eng.RecordTrial(99999, 1, 1, 500); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}

	if _, _, err := eng.EndSession(sess.ID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if _, _, err := eng.RecordTrial(sess.ID, 1, 1, 500); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("record after end: err = %v, want ErrSessionClosed", err)
	}
	if _, _, err := eng.EndSession(sess.ID); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("double end: err = %v, want ErrSessionClosed", err)
	}
}

func TestEngineEndSessionWritesSnapshot(t *testing.T) {
	eng, db, profileID := testEngine(t)
	sess, _ := eng.StartSession(profileID)

	for i := 0; i < 12; i++ {
		arm := 2
		if i%4 == 0 {
			arm = i % 3
		}
		if _, _, err := eng.RecordTrial(sess.ID, arm, 1, 700); err != nil {
			t.Fatalf("RecordTrial: %v", err)
		}
	}

	row, snapshot, err := eng.EndSession(sess.ID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if row.EndedAt == nil {
		t.Error("session row not closed")
	}
	if snapshot == nil || snapshot.SampleCount != 12 {
		t.Fatalf("snapshot = %+v, want sampleCount 12", snapshot)
	}

	latest, err := db.LatestCognitiveProfile(profileID)
	if err != nil {
		t.Fatalf("LatestCognitiveProfile: %v", err)
	}
	if latest == nil || latest.ID != snapshot.ID {
		t.Errorf("latest snapshot = %+v, want %+v", latest, snapshot)
	}
}

func TestEngineRecomputeIdempotent(t *testing.T) {
	eng, _, profileID := testEngine(t)
	sess, _ := eng.StartSession(profileID)

	for _, arm := range []int{1, 2, 2} {
		if _, _, err := eng.RecordTrial(sess.ID, arm, 1, 650); err != nil {
			t.Fatalf("RecordTrial: %v", err)
		}
	}

	first, err := eng.RecomputeStats(sess.ID)
	if err != nil {
		t.Fatalf("RecomputeStats: %v", err)
	}
	second, err := eng.RecomputeStats(sess.ID)
	if err != nil {
		t.Fatalf("RecomputeStats: %v", err)
	}
	if first != second {
		t.Errorf("recompute not idempotent: %+v vs %+v", first, second)
	}
}

func TestEngineConcurrentRecording(t *testing.T) {
	eng, db, profileID := testEngine(t)
	sess, _ := eng.StartSession(profileID)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(arm int) {
			defer wg.Done()
			if _, _, err := eng.RecordTrial(sess.ID, arm%3, 1, 500); err != nil {
				t.Errorf("RecordTrial: %v", err)
			}
		}(i)
	}
	wg.Wait()

	trials, err := db.ListBanditTrials(sess.ID)
	if err != nil {
		t.Fatalf("ListBanditTrials: %v", err)
	}
	if len(trials) != n {
		t.Fatalf("recorded %d trials, want %d", len(trials), n)
	}
	for i, trial := range trials {
		if trial.TrialIndex != i+1 {
			t.Errorf("index gap at %d: got %d", i, trial.TrialIndex)
		}
	}
}
