package store

import (
	"testing"
)

func TestBanditSessionLifecycle(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)

	sess, err := db.CreateBanditSession(p.ID)
	if err != nil {
		t.Fatalf("CreateBanditSession: %v", err)
	}
	if sess.PublicID == "" {
		t.Error("expected a public id")
	}
	if sess.EndedAt != nil {
		t.Error("new session should be open")
	}

	stats := BanditStats{TotalTrials: 1, OptimalChoices: 1, AvgReactionMs: 800}
	trial := &BanditTrial{SessionID: sess.ID, TrialIndex: 1, Arm: 2, Reward: 1, ReactionMs: 800}
	appended, err := db.AppendBanditTrial(trial, stats)
	if err != nil {
		t.Fatalf("AppendBanditTrial: %v", err)
	}
	if appended.ID == 0 || appended.RecordedAt == 0 {
		t.Errorf("appended trial not filled in: %+v", appended)
	}

	got, err := db.GetBanditSession(sess.ID)
	if err != nil {
		t.Fatalf("GetBanditSession: %v", err)
	}
	if got.TotalTrials != 1 || got.OptimalChoices != 1 || got.AvgReactionMs != 800 {
		t.Errorf("stats not applied with append: %+v", got)
	}

	trials, err := db.ListBanditTrials(sess.ID)
	if err != nil {
		t.Fatalf("ListBanditTrials: %v", err)
	}
	if len(trials) != 1 || trials[0].TrialIndex != 1 {
		t.Errorf("trials = %+v", trials)
	}

	closed, err := db.EndBanditSession(sess.ID, stats)
	if err != nil {
		t.Fatalf("EndBanditSession: %v", err)
	}
	if !closed {
		t.Fatal("expected first end to close the session")
	}

	// Ending twice is rejected, not re-applied.
	closed, err = db.EndBanditSession(sess.ID, BanditStats{})
	if err != nil {
		t.Fatalf("EndBanditSession twice: %v", err)
	}
	if closed {
		t.Error("second end should report already closed")
	}
	got, _ = db.GetBanditSession(sess.ID)
	if got.TotalTrials != 1 {
		t.Errorf("second end overwrote stats: %+v", got)
	}
}

func TestAppendRejectsDuplicateIndex(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)
	sess, _ := db.CreateBanditSession(p.ID)

	first := &BanditTrial{SessionID: sess.ID, TrialIndex: 1, Arm: 0, Reward: 0, ReactionMs: 500}
	if _, err := db.AppendBanditTrial(first, BanditStats{TotalTrials: 1}); err != nil {
		t.Fatalf("first append: %v", err)
	}

	dup := &BanditTrial{SessionID: sess.ID, TrialIndex: 1, Arm: 1, Reward: 1, ReactionMs: 600}
	if _, err := db.AppendBanditTrial(dup, BanditStats{TotalTrials: 2}); err == nil {
		t.Fatal("duplicate trial index must be rejected")
	}

	// The failed append must not have half-applied its stats.
	got, _ := db.GetBanditSession(sess.ID)
	if got.TotalTrials != 1 {
		t.Errorf("stats after rejected append = %+v", got)
	}
}

func TestRecentAttentionOrder(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)

	for _, a := range []int{10, 20, 30, 40} {
		if _, err := db.CreateReading(&Reading{ProfileID: p.ID, Attention: a}); err != nil {
			t.Fatalf("CreateReading: %v", err)
		}
	}

	vals, err := db.RecentAttention(p.ID, 3)
	if err != nil {
		t.Fatalf("RecentAttention: %v", err)
	}
	want := []float64{20, 30, 40}
	if len(vals) != 3 {
		t.Fatalf("got %v", vals)
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("vals = %v, want %v (chronological)", vals, want)
			break
		}
	}
}

func TestCognitiveProfileRoundTrip(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)

	snap := &CognitiveProfile{
		ProfileID:        p.ID,
		DeclineRisk:      42,
		AttentionScore:   61,
		MemoryScore:      70,
		CognitiveControl: 65,
		FatigueLevel:     35,
		SampleCount:      12,
		FeatureWeights:   map[string]float64{"exploration": 0.12, "learning": 0.2, "recognition": 0.18},
	}
	created, err := db.CreateCognitiveProfile(snap)
	if err != nil {
		t.Fatalf("CreateCognitiveProfile: %v", err)
	}

	latest, err := db.LatestCognitiveProfile(p.ID)
	if err != nil {
		t.Fatalf("LatestCognitiveProfile: %v", err)
	}
	if latest == nil || latest.ID != created.ID {
		t.Fatalf("latest = %+v, want id %d", latest, created.ID)
	}
	if latest.FeatureWeights["learning"] != 0.2 {
		t.Errorf("feature weights lost: %+v", latest.FeatureWeights)
	}

	none, err := db.LatestCognitiveProfile(9999)
	if err != nil {
		t.Fatalf("LatestCognitiveProfile missing: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for unknown profile, got %+v", none)
	}
}
