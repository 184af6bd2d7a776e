package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/treloar/keepsake/internal/signal"
	"github.com/treloar/keepsake/internal/store"
)

// Engine ties the pure bandit core to its collaborators: the store holds
// the trial log and derived rows, the feed supplies signal history for the
// correlation heuristic and the final vector for scoring.
//
// Recording and recomputation are serialized per session so trial indexes
// stay gap-free and every recompute sees a consistent snapshot. Recompute
// happens synchronously inside the recording call, never fire-and-forget.
type Engine struct {
	db              *store.DB
	feed            *signal.Feed
	optimalArm      int
	attentionWindow int
	maxTrials       int

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewEngine creates an engine. The optimal arm is fixed up front from the
// configured reward probabilities. maxTrials caps the trial log per
// session; zero means unlimited.
func NewEngine(db *store.DB, feed *signal.Feed, rewardProbabilities []float64, attentionWindow, maxTrials int) *Engine {
	if attentionWindow <= 0 {
		attentionWindow = 20
	}
	return &Engine{
		db:              db,
		feed:            feed,
		optimalArm:      OptimalArm(rewardProbabilities),
		attentionWindow: attentionWindow,
		maxTrials:       maxTrials,
		locks:           make(map[int64]*sync.Mutex),
	}
}

// OptimalArm returns the configured optimal arm index.
func (e *Engine) OptimalArm() int { return e.optimalArm }

func (e *Engine) sessionLock(id int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// StartSession opens a new trainer session for a profile.
func (e *Engine) StartSession(profileID int64) (*store.BanditSession, error) {
	return e.db.CreateBanditSession(profileID)
}

// loadSession materializes the session aggregate from its persisted rows.
func (e *Engine) loadSession(sessionID int64) (*Session, error) {
	row, err := e.db.GetBanditSession(sessionID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrSessionNotFound
	}
	trialRows, err := e.db.ListBanditTrials(sessionID)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        row.ID,
		ProfileID: row.ProfileID,
		StartedAt: time.UnixMilli(row.StartedAt),
	}
	if row.EndedAt != nil {
		endedAt := time.UnixMilli(*row.EndedAt)
		sess.EndedAt = &endedAt
	}
	for _, t := range trialRows {
		sess.Trials = append(sess.Trials, Trial{
			SessionID:  t.SessionID,
			Index:      t.TrialIndex,
			Arm:        t.Arm,
			Reward:     t.Reward,
			ReactionMs: t.ReactionMs,
			RecordedAt: time.UnixMilli(t.RecordedAt),
		})
	}
	return sess, nil
}

// computeStats recomputes the derived stats for a session aggregate using
// the profile's recent attention readings.
func (e *Engine) computeStats(sess *Session) (Stats, error) {
	attention, err := e.db.RecentAttention(sess.ProfileID, e.attentionWindow)
	if err != nil {
		return Stats{}, fmt.Errorf("load attention history: %w", err)
	}
	return ComputeStats(sess.Trials, e.optimalArm, attention), nil
}

// RecordTrial validates and appends one trial, then recomputes and
// persists the session stats in the same transaction as the append.
func (e *Engine) RecordTrial(sessionID int64, arm, reward, reactionMs int) (*store.BanditTrial, Stats, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.loadSession(sessionID)
	if err != nil {
		return nil, Stats{}, err
	}
	if e.maxTrials > 0 && len(sess.Trials) >= e.maxTrials {
		return nil, Stats{}, ErrSessionFull
	}

	trial, err := sess.Record(arm, reward, reactionMs, time.Now())
	if err != nil {
		return nil, Stats{}, err
	}

	stats, err := e.computeStats(sess)
	if err != nil {
		return nil, Stats{}, err
	}

	row, err := e.db.AppendBanditTrial(&store.BanditTrial{
		SessionID:  trial.SessionID,
		TrialIndex: trial.Index,
		Arm:        trial.Arm,
		Reward:     trial.Reward,
		ReactionMs: trial.ReactionMs,
	}, toStoreStats(stats))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("append trial: %w", err)
	}
	return row, stats, nil
}

// RecomputeStats re-derives and persists the stats from the unchanged
// trial log. Idempotent modulo signal-history drift.
func (e *Engine) RecomputeStats(sessionID int64) (Stats, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.loadSession(sessionID)
	if err != nil {
		return Stats{}, err
	}
	stats, err := e.computeStats(sess)
	if err != nil {
		return Stats{}, err
	}
	if err := e.db.UpdateBanditStats(sessionID, toStoreStats(stats)); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// EndSession closes the session exactly once, runs the final recompute,
// and writes the cognitive-profile snapshot scored against the signal
// vector at session end.
func (e *Engine) EndSession(sessionID int64) (*store.BanditSession, *store.CognitiveProfile, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.loadSession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Ended() {
		return nil, nil, ErrSessionClosed
	}

	stats, err := e.computeStats(sess)
	if err != nil {
		return nil, nil, err
	}

	closed, err := e.db.EndBanditSession(sessionID, toStoreStats(stats))
	if err != nil {
		return nil, nil, err
	}
	if !closed {
		return nil, nil, ErrSessionClosed
	}

	final := e.feed.Snapshot()
	scored, err := ScoreSession(sess.Trials, stats, e.optimalArm, &final, time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("score session: %w", err)
	}

	snapshot, err := e.db.CreateCognitiveProfile(&store.CognitiveProfile{
		ProfileID:        sess.ProfileID,
		DeclineRisk:      scored.DeclineRisk,
		AttentionScore:   scored.AttentionScore,
		MemoryScore:      scored.MemoryScore,
		CognitiveControl: scored.CognitiveControl,
		FatigueLevel:     scored.FatigueLevel,
		SampleCount:      scored.SampleCount,
		FeatureWeights:   scored.FeatureWeights,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("persist cognitive profile: %w", err)
	}

	row, err := e.db.GetBanditSession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return row, snapshot, nil
}

func toStoreStats(s Stats) store.BanditStats {
	return store.BanditStats{
		TotalTrials:       s.TotalTrials,
		OptimalChoices:    s.OptimalChoices,
		ExplorationRate:   s.ExplorationRate,
		LearningRate:      s.LearningRate,
		AvgReactionMs:     s.AvgReactionMs,
		SignalCorrelation: s.SignalCorrelation,
	}
}
