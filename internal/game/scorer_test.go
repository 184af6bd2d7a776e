package game

import (
	"errors"
	"testing"
	"time"

	"github.com/treloar/keepsake/internal/signal"
)

func testVector() *signal.Vector {
	return &signal.Vector{
		Attention:   70,
		Relaxation:  60,
		Stress:      20,
		Recognition: 40,
	}
}

func TestScoreSessionRequiresFinalVector(t *testing.T) {
	trials := mkTrials([]int{2, 2, 2, 2, 2}, nil)
	stats := ComputeStats(trials, 2, nil)

	_, err := ScoreSession(trials, stats, 2, nil, time.Now())
	if !errors.Is(err, ErrMissingSignal) {
		t.Errorf("err = %v, want ErrMissingSignal", err)
	}
}

func TestScoreSessionShortGameDefaults(t *testing.T) {
	trials := mkTrials([]int{2, 1, 2}, nil)
	stats := ComputeStats(trials, 2, nil)

	p, err := ScoreSession(trials, stats, 2, testVector(), time.Now())
	if err != nil {
		t.Fatalf("ScoreSession: %v", err)
	}
	if p.MemoryScore != 50 {
		t.Errorf("memoryScore = %d, want default 50 under 5 trials", p.MemoryScore)
	}
	if p.DeclineRisk != 50 {
		t.Errorf("declineRisk = %d, want default 50 under 10 trials", p.DeclineRisk)
	}
	if p.SampleCount != 3 {
		t.Errorf("sampleCount = %d, want 3 so callers can spot the default", p.SampleCount)
	}
}

func TestScoreSessionSignalDerivedFields(t *testing.T) {
	trials := mkTrials([]int{2, 2}, nil)
	stats := ComputeStats(trials, 2, nil)

	p, err := ScoreSession(trials, stats, 2, testVector(), time.Now())
	if err != nil {
		t.Fatalf("ScoreSession: %v", err)
	}
	if p.AttentionScore != 70 {
		t.Errorf("attentionScore = %d, want 70", p.AttentionScore)
	}
	// (relaxation + 100 - stress)/2 = (60+100-20)/2 = 70
	if p.CognitiveControl != 70 {
		t.Errorf("cognitiveControl = %d, want 70", p.CognitiveControl)
	}
	if p.FatigueLevel != 40 {
		t.Errorf("fatigueLevel = %d, want 100-60", p.FatigueLevel)
	}
}

func TestScoreSessionMemoryWindow(t *testing.T) {
	// 15 trials: the 5 oldest all miss, the most recent 10 hit 7 times.
	arms := []int{0, 0, 0, 0, 0, 2, 2, 2, 2, 2, 2, 2, 0, 0, 0}
	trials := mkTrials(arms, nil)
	stats := ComputeStats(trials, 2, nil)

	p, err := ScoreSession(trials, stats, 2, testVector(), time.Now())
	if err != nil {
		t.Fatalf("ScoreSession: %v", err)
	}
	if p.MemoryScore != 70 {
		t.Errorf("memoryScore = %d, want 70 (7 of last 10 optimal)", p.MemoryScore)
	}
}

func TestScoreSessionDeclineRisk(t *testing.T) {
	// 10 trials, all arm 2: exploration 0, learning 0 (no improvement
	// possible), recognition 40. Risk = 0.3*1 + 0.4*1 + 0.3*0.6 = 0.88.
	trials := mkTrials([]int{2, 2, 2, 2, 2, 2, 2, 2, 2, 2}, nil)
	stats := ComputeStats(trials, 2, nil)

	p, err := ScoreSession(trials, stats, 2, testVector(), time.Now())
	if err != nil {
		t.Fatalf("ScoreSession: %v", err)
	}
	if p.DeclineRisk != 88 {
		t.Errorf("declineRisk = %d, want 88", p.DeclineRisk)
	}
	if w := p.FeatureWeights["recognition"]; w < 0.17 || w > 0.19 {
		t.Errorf("recognition contribution = %v, want 0.18", w)
	}
}

func TestScoreSessionRanges(t *testing.T) {
	extremes := []*signal.Vector{
		{Attention: 0, Relaxation: 0, Stress: 100, Recognition: 0},
		{Attention: 100, Relaxation: 100, Stress: 0, Recognition: 100},
	}
	trials := mkTrials([]int{0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1, 2}, nil)
	stats := ComputeStats(trials, 2, nil)

	for _, v := range extremes {
		p, err := ScoreSession(trials, stats, 2, v, time.Now())
		if err != nil {
			t.Fatalf("ScoreSession: %v", err)
		}
		for name, val := range map[string]int{
			"declineRisk":      p.DeclineRisk,
			"attentionScore":   p.AttentionScore,
			"memoryScore":      p.MemoryScore,
			"cognitiveControl": p.CognitiveControl,
			"fatigueLevel":     p.FatigueLevel,
		} {
			if val < 0 || val > 100 {
				t.Errorf("%s = %d out of [0,100] for vector %+v", name, val, v)
			}
		}
	}
}
