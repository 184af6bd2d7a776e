package game

import "math"

// ComputeStats derives session statistics from the full trial log. Pure
// given fixed inputs and safe on any log, including an empty one: sparse
// sessions resolve to zero values rather than errors.
//
// recentAttention is the profile's most recent attention readings; it only
// feeds the SignalCorrelation heuristic, never the recording itself.
func ComputeStats(trials []Trial, optimalArm int, recentAttention []float64) Stats {
	var s Stats
	s.TotalTrials = len(trials)
	if s.TotalTrials == 0 {
		return s
	}

	var armCounts [NumArms]int
	var reactionSum float64
	for _, t := range trials {
		armCounts[t.Arm]++
		reactionSum += float64(t.ReactionMs)
		if t.Arm == optimalArm {
			s.OptimalChoices++
		}
	}

	maxArmCount := 0
	for _, c := range armCounts {
		if c > maxArmCount {
			maxArmCount = c
		}
	}
	// 0 when every trial picked the same arm; approaches 67 for an even
	// three-way spread. Never reaches 100.
	s.ExplorationRate = round(100 * (1 - float64(maxArmCount)/float64(s.TotalTrials)))

	s.LearningRate = learningRate(trials, optimalArm)
	s.AvgReactionMs = round(reactionSum / float64(s.TotalTrials))
	s.SignalCorrelation = signalCorrelation(recentAttention, s.LearningRate)
	return s
}

// learningRate measures improvement in optimal-arm selection between the
// first and second half of the log (first half gets the floor when odd).
// Fewer than 2 trials, or no improvement, yields 0, never negative.
func learningRate(trials []Trial, optimalArm int) int {
	if len(trials) < 2 {
		return 0
	}
	half := len(trials) / 2
	first, second := trials[:half], trials[half:]

	frac := func(ts []Trial) float64 {
		n := 0
		for _, t := range ts {
			if t.Arm == optimalArm {
				n++
			}
		}
		return float64(n) / float64(len(ts))
	}

	improvement := frac(second) - frac(first)
	if improvement < 0 {
		improvement = 0
	}
	return clampPercent(round(100 * improvement))
}

// signalCorrelation is the coarse attention/learning association:
// round(min(100, max(0, meanAttention * learningRate / 100))). No readings
// means no association, not an error.
func signalCorrelation(recentAttention []float64, learningRate int) int {
	if len(recentAttention) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range recentAttention {
		sum += a
	}
	mean := sum / float64(len(recentAttention))
	return clampPercent(round(mean * float64(learningRate) / 100))
}

func round(v float64) int {
	return int(math.Round(v))
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
