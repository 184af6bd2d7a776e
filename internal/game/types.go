// Package game implements the 3-armed bandit trainer core: trial
// recording, session statistics, and cognitive scoring. Everything here is
// pure computation; persistence and HTTP live elsewhere.
package game

import (
	"errors"
	"time"
)

// NumArms is fixed: the trainer always presents three choices.
const NumArms = 3

var (
	// ErrSessionClosed rejects mutation of a session whose EndedAt is set.
	ErrSessionClosed = errors.New("game: session already ended")

	// ErrInvalidArm rejects a choice outside {0,1,2}. Nothing is recorded.
	ErrInvalidArm = errors.New("game: arm out of range")

	// ErrMissingSignal rejects scoring without a final signal vector.
	// Too few trials is not an error; it yields documented defaults.
	ErrMissingSignal = errors.New("game: final signal vector required")

	// ErrSessionNotFound reports an unknown session id.
	ErrSessionNotFound = errors.New("game: session not found")

	// ErrSessionFull rejects trials past the configured per-session cap.
	ErrSessionFull = errors.New("game: session trial limit reached")
)

// Trial is one recorded choice-and-outcome event. Immutable once appended.
type Trial struct {
	SessionID  int64     `json:"sessionId"`
	Index      int       `json:"trialIndex"` // 1-based, gap-free
	Arm        int       `json:"arm"`        // 0, 1, or 2
	Reward     int       `json:"reward"`     // 0 or 1
	ReactionMs int       `json:"reactionMs"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Session is the bandit session aggregate: an ordered trial log bounded by
// explicit start and end.
type Session struct {
	ID        int64      `json:"id"`
	ProfileID int64      `json:"profileId"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Trials    []Trial    `json:"trials,omitempty"`
	Stats     *Stats     `json:"stats,omitempty"`
}

// Ended reports whether the session has been closed.
func (s *Session) Ended() bool { return s.EndedAt != nil }

// Record validates and appends one trial, assigning the next gap-free
// index. The trial log is append-only: a failed call leaves it untouched.
func (s *Session) Record(arm, reward, reactionMs int, at time.Time) (Trial, error) {
	if s.Ended() {
		return Trial{}, ErrSessionClosed
	}
	if arm < 0 || arm >= NumArms {
		return Trial{}, ErrInvalidArm
	}
	if reward != 0 {
		reward = 1
	}
	if reactionMs < 0 {
		reactionMs = 0
	}
	t := Trial{
		SessionID:  s.ID,
		Index:      len(s.Trials) + 1,
		Arm:        arm,
		Reward:     reward,
		ReactionMs: reactionMs,
		RecordedAt: at,
	}
	s.Trials = append(s.Trials, t)
	return t, nil
}

// End closes the session exactly once.
func (s *Session) End(at time.Time) error {
	if s.Ended() {
		return ErrSessionClosed
	}
	s.EndedAt = &at
	return nil
}

// Stats is derived from the trial log; recomputing from the same log yields
// the same values, modulo the attention history behind SignalCorrelation.
type Stats struct {
	TotalTrials    int `json:"totalTrials"`
	OptimalChoices int `json:"optimalChoices"`
	ExplorationRate int `json:"explorationRate"` // 0-100
	LearningRate    int `json:"learningRate"`    // 0-100
	AvgReactionMs   int `json:"avgReactionMs"`
	// SignalCorrelation is a coarse heuristic linking recent attention to
	// in-session learning. It is not a statistical correlation coefficient.
	SignalCorrelation int `json:"signalCorrelation"` // 0-100
}

// CognitiveProfile is a derived snapshot written once per completed session
// (or per manual recording upload). The decline-risk score is a heuristic
// index, not a clinical diagnosis.
type CognitiveProfile struct {
	ProfileID        int64              `json:"profileId"`
	CreatedAt        time.Time          `json:"createdAt"`
	DeclineRisk      int                `json:"declineRisk"`      // 0-100
	AttentionScore   int                `json:"attentionScore"`   // 0-100
	MemoryScore      int                `json:"memoryScore"`      // 0-100
	CognitiveControl int                `json:"cognitiveControl"` // 0-100
	FatigueLevel     int                `json:"fatigueLevel"`     // 0-100
	SampleCount      int                `json:"sampleCount"`
	FeatureWeights   map[string]float64 `json:"featureWeights,omitempty"`
}

// OptimalArm returns the arm with the highest configured reward
// probability. The optimal arm always comes from configuration, never from
// observed rewards; reward variance must not look like a wrong policy.
func OptimalArm(probabilities []float64) int {
	best := 0
	for i, p := range probabilities {
		if p > probabilities[best] {
			best = i
		}
	}
	return best
}
