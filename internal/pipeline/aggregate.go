package pipeline

import "math"

const (
	teamDeltaScale = 50.0
	teamDeltaMin   = -50
	teamDeltaMax   = 50
)

// TeamDelta maps a team's average p-score to a weekly point change:
// 0.0 → −50, baseline → 0, 2.0 → +50, clamped at both ends.
func TeamDelta(avgPScore float64) int {
	delta := int(math.Round((avgPScore - BaselinePScore) * teamDeltaScale))
	if delta < teamDeltaMin {
		return teamDeltaMin
	}
	if delta > teamDeltaMax {
		return teamDeltaMax
	}
	return delta
}

// ApplyDelta folds a weekly change into a cumulative total, which never
// drops below zero.
func ApplyDelta(previousTotal, delta int) int {
	total := previousTotal + delta
	if total < 0 {
		return 0
	}
	return total
}
