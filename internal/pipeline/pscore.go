package pipeline

import (
	"math"
	"sort"

	"github.com/remi/owc-fantasy/internal/domain"
)

// BaselinePScore is the neutral performance index. A player who did not
// play any map this week scores exactly the baseline, by rule rather than
// as a missing-data fallback.
const BaselinePScore = 1.0

// MatchScore is one player's performance summary for a single match.
type MatchScore struct {
	PScore     float64
	MapsPlayed int
}

// MatchPScores computes the per-player performance index for one match:
//
//	p = (Σ Si/Mi) / n · √(n / N̄)
//
// where Si is the player's score on map i, Mi the median score on that
// map, n the maps the player played, and N̄ the mean maps played per
// participant. The result depends only on the set of records, not their
// order.
func MatchPScores(records []*domain.MatchMapRecord) map[int64]MatchScore {
	if len(records) == 0 {
		return map[int64]MatchScore{}
	}

	scoresByMap := make(map[int][]int64)
	mapsPlayed := make(map[int64]int)
	for _, rec := range records {
		if rec.Score > 0 {
			scoresByMap[rec.MapIndex] = append(scoresByMap[rec.MapIndex], rec.Score)
		}
		mapsPlayed[rec.PlayerOsuID]++
	}

	medianByMap := make(map[int]float64, len(scoresByMap))
	for idx, scores := range scoresByMap {
		medianByMap[idx] = median(scores)
	}

	var totalMaps int
	for _, n := range mapsPlayed {
		totalMaps += n
	}
	meanMapsPlayed := float64(totalMaps) / float64(len(mapsPlayed))

	ratioSum := make(map[int64]float64)
	ratioCount := make(map[int64]int)
	for _, rec := range records {
		med := medianByMap[rec.MapIndex]
		if med <= 0 || rec.Score <= 0 {
			continue
		}
		ratioSum[rec.PlayerOsuID] += float64(rec.Score) / med
		ratioCount[rec.PlayerOsuID]++
	}

	results := make(map[int64]MatchScore, len(ratioSum))
	for playerID, sum := range ratioSum {
		n := ratioCount[playerID]
		if n == 0 {
			continue
		}
		avgRatio := sum / float64(n)
		normalization := 1.0
		if meanMapsPlayed > 0 {
			normalization = math.Sqrt(float64(n) / meanMapsPlayed)
		}
		results[playerID] = MatchScore{
			PScore:     avgRatio * normalization,
			MapsPlayed: n,
		}
	}
	return results
}

// WeeklyPScores folds per-match results into one index per player: the
// mean of match p-scores weighted by maps played in each match.
func WeeklyPScores(byMatch map[int64][]*domain.MatchMapRecord) map[int64]float64 {
	weightedSum := make(map[int64]float64)
	weights := make(map[int64]int)
	for _, records := range byMatch {
		for playerID, result := range MatchPScores(records) {
			weightedSum[playerID] += result.PScore * float64(result.MapsPlayed)
			weights[playerID] += result.MapsPlayed
		}
	}

	out := make(map[int64]float64, len(weightedSum))
	for playerID, sum := range weightedSum {
		if w := weights[playerID]; w > 0 {
			out[playerID] = sum / float64(w)
		}
	}
	return out
}

func median(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
