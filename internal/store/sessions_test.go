package store

import "testing"

func TestGameSessionAnswers(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)

	sess, err := db.CreateGameSession(p.ID)
	if err != nil {
		t.Fatalf("CreateGameSession: %v", err)
	}

	if _, err := db.RecordGameAnswer(sess.ID, true); err != nil {
		t.Fatalf("RecordGameAnswer: %v", err)
	}
	if _, err := db.RecordGameAnswer(sess.ID, false); err != nil {
		t.Fatalf("RecordGameAnswer: %v", err)
	}
	got, err := db.RecordGameAnswer(sess.ID, true)
	if err != nil {
		t.Fatalf("RecordGameAnswer: %v", err)
	}
	if got.TotalQuestions != 3 || got.CorrectAnswers != 2 {
		t.Errorf("counters = %d/%d, want 2/3", got.CorrectAnswers, got.TotalQuestions)
	}
}

func TestEndGameSessionAveragesReadings(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)
	sess, _ := db.CreateGameSession(p.ID)

	for _, r := range []Reading{
		{ProfileID: p.ID, SessionID: sess.ID, Attention: 60, Relaxation: 40},
		{ProfileID: p.ID, SessionID: sess.ID, Attention: 80, Relaxation: 60},
	} {
		reading := r
		if _, err := db.CreateReading(&reading); err != nil {
			t.Fatalf("CreateReading: %v", err)
		}
	}

	ended, err := db.EndGameSession(sess.ID)
	if err != nil {
		t.Fatalf("EndGameSession: %v", err)
	}
	if ended.EndedAt == nil {
		t.Fatal("ended_at not set")
	}
	if ended.AvgAttention != 70 || ended.AvgRelaxation != 50 {
		t.Errorf("averages = %d/%d, want 70/50", ended.AvgAttention, ended.AvgRelaxation)
	}

	// Answering after end is rejected.
	if _, err := db.RecordGameAnswer(sess.ID, true); err == nil {
		t.Error("expected answer on ended session to fail")
	}
	// Ending twice is rejected.
	if _, err := db.EndGameSession(sess.ID); err == nil {
		t.Error("expected second end to fail")
	}
}

func TestEndGameSessionNoReadings(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)
	sess, _ := db.CreateGameSession(p.ID)

	ended, err := db.EndGameSession(sess.ID)
	if err != nil {
		t.Fatalf("EndGameSession: %v", err)
	}
	if ended.AvgAttention != 0 || ended.AvgRelaxation != 0 {
		t.Errorf("averages = %d/%d, want zeroes", ended.AvgAttention, ended.AvgRelaxation)
	}
}

func TestChatMessageFilters(t *testing.T) {
	db := testDB(t)
	p := seedProfile(t, db)
	photo, _ := db.CreatePhoto(&Photo{ProfileID: p.ID, Name: "Arthur", ImageBase64: "aGk="})

	msgs := []ChatMessage{
		{ProfileID: p.ID, PhotoID: photo.ID, SessionID: 1, Content: "Do you remember Arthur?", Sender: "ai"},
		{ProfileID: p.ID, PhotoID: photo.ID, SessionID: 1, Content: "I think so", Sender: "user"},
		{ProfileID: p.ID, SessionID: 2, Content: "Hello again", Sender: "ai"},
	}
	for _, m := range msgs {
		msg := m
		if _, err := db.CreateChatMessage(&msg); err != nil {
			t.Fatalf("CreateChatMessage: %v", err)
		}
	}

	bySession, err := db.ListChatMessages(1, 0)
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(bySession) != 2 {
		t.Errorf("session filter returned %d messages", len(bySession))
	}
	if bySession[0].Sender != "ai" || bySession[1].Sender != "user" {
		t.Errorf("messages out of order: %+v", bySession)
	}

	byPhoto, err := db.ListChatMessages(0, photo.ID)
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(byPhoto) != 2 {
		t.Errorf("photo filter returned %d messages", len(byPhoto))
	}

	if _, err := db.CreateChatMessage(&ChatMessage{ProfileID: p.ID, Content: "bad", Sender: "robot"}); err == nil {
		t.Error("expected invalid sender to be rejected")
	}
}
