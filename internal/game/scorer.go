package game

import (
	"time"

	"github.com/treloar/keepsake/internal/signal"
)

// Scoring policy constants. Sessions shorter than these thresholds return
// the neutral default 50; callers must check SampleCount before reading 50
// as a real midpoint estimate.
const (
	memoryScoreWindow    = 10 // most recent trials considered
	memoryScoreMinTrials = 5
	declineRiskMinTrials = 10
	neutralScore         = 50
)

// Decline-risk blend: less exploration, less learning improvement, and
// weaker recognition each push the index up.
const (
	explorationWeight = 0.3
	learningWeight    = 0.4
	recognitionWeight = 0.3
)

// ScoreSession derives a cognitive profile snapshot from a finished
// session's trial log, its derived stats, and the signal vector at session
// end. Pure computation; the only failure is a missing final vector.
func ScoreSession(trials []Trial, stats Stats, optimalArm int, final *signal.Vector, at time.Time) (CognitiveProfile, error) {
	if final == nil {
		return CognitiveProfile{}, ErrMissingSignal
	}

	p := CognitiveProfile{
		CreatedAt:        at,
		SampleCount:      len(trials),
		AttentionScore:   clampPercent(round(final.Attention)),
		CognitiveControl: clampPercent(round((final.Relaxation + 100 - final.Stress) / 2)),
		FatigueLevel:     clampPercent(round(100 - final.Relaxation)),
		MemoryScore:      memoryScore(trials, optimalArm),
	}
	p.DeclineRisk, p.FeatureWeights = declineRisk(stats, final)
	return p, nil
}

// memoryScore is the optimal-arm fraction over the most recent trials,
// scaled to [0,100]. Too few trials means the neutral default, not an error.
func memoryScore(trials []Trial, optimalArm int) int {
	if len(trials) < memoryScoreMinTrials {
		return neutralScore
	}
	recent := trials
	if len(recent) > memoryScoreWindow {
		recent = recent[len(recent)-memoryScoreWindow:]
	}
	n := 0
	for _, t := range recent {
		if t.Arm == optimalArm {
			n++
		}
	}
	return clampPercent(round(100 * float64(n) / float64(len(recent))))
}

// declineRisk blends exploration, learning, and recognition deficits into
// one 0-100 index. The returned weights record each term's contribution;
// they are for explanatory display only and carry no guarantee of summing
// to one.
func declineRisk(stats Stats, final *signal.Vector) (int, map[string]float64) {
	if stats.TotalTrials < declineRiskMinTrials {
		return neutralScore, map[string]float64{
			"exploration": explorationWeight,
			"learning":    learningWeight,
			"recognition": recognitionWeight,
		}
	}

	explorationTerm := explorationWeight * (1 - float64(stats.ExplorationRate)/100)
	learningTerm := learningWeight * (1 - float64(stats.LearningRate)/100)
	recognitionTerm := recognitionWeight * (1 - final.Recognition/100)

	risk := clampPercent(round(100 * (explorationTerm + learningTerm + recognitionTerm)))
	return risk, map[string]float64{
		"exploration": explorationTerm,
		"learning":    learningTerm,
		"recognition": recognitionTerm,
	}
}
