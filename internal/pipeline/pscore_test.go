package pipeline_test

import (
	"testing"

	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(matchID, playerID int64, mapIndex int, score int64) *domain.MatchMapRecord {
	return &domain.MatchMapRecord{
		MatchID:     matchID,
		PlayerOsuID: playerID,
		MapIndex:    mapIndex,
		Score:       score,
	}
}

func TestMatchPScores_EqualScoresAreNeutral(t *testing.T) {
	// Everyone scores the same on every map, so every ratio against the
	// median is 1 and every player plays the mean number of maps.
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 500000),
		record(1, 200, 0, 500000),
		record(1, 100, 1, 600000),
		record(1, 200, 1, 600000),
	}

	scores := pipeline.MatchPScores(records)
	require.Len(t, scores, 2)
	assert.InDelta(t, 1.0, scores[100].PScore, 1e-9)
	assert.InDelta(t, 1.0, scores[200].PScore, 1e-9)
	assert.Equal(t, 2, scores[100].MapsPlayed)
}

func TestMatchPScores_HigherScorerBeatsLowerScorer(t *testing.T) {
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 900000),
		record(1, 200, 0, 500000),
		record(1, 100, 1, 800000),
		record(1, 200, 1, 400000),
	}

	scores := pipeline.MatchPScores(records)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[100].PScore, scores[200].PScore)
	assert.Greater(t, scores[100].PScore, 1.0)
	assert.Less(t, scores[200].PScore, 1.0)
}

func TestMatchPScores_OrderIndependent(t *testing.T) {
	forward := []*domain.MatchMapRecord{
		record(1, 100, 0, 700000),
		record(1, 200, 0, 650000),
		record(1, 300, 0, 620000),
		record(1, 100, 1, 710000),
		record(1, 200, 1, 690000),
	}
	reversed := make([]*domain.MatchMapRecord, len(forward))
	for i, r := range forward {
		reversed[len(forward)-1-i] = r
	}

	a := pipeline.MatchPScores(forward)
	b := pipeline.MatchPScores(reversed)
	require.Equal(t, len(a), len(b))
	for id, score := range a {
		assert.InDelta(t, score.PScore, b[id].PScore, 1e-12, "player %d", id)
	}
}

func TestMatchPScores_PartialParticipationPenalized(t *testing.T) {
	// Players 100 and 200 tie on the shared map, but 100 plays both maps
	// while 200 plays one, so the √(n/N̄) factor separates them.
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 600000),
		record(1, 200, 0, 600000),
		record(1, 300, 0, 600000),
		record(1, 100, 1, 600000),
		record(1, 300, 1, 600000),
	}

	scores := pipeline.MatchPScores(records)
	assert.Greater(t, scores[100].PScore, scores[200].PScore)
}

func TestMatchPScores_Empty(t *testing.T) {
	assert.Empty(t, pipeline.MatchPScores(nil))
}

func TestWeeklyPScores_WeightedByMapsPlayed(t *testing.T) {
	// Match 1: player 100 neutral over 3 maps. Match 2: one map where 100
	// doubles the median. The weekly score must sit closer to the
	// three-map match.
	byMatch := map[int64][]*domain.MatchMapRecord{
		1: {
			record(1, 100, 0, 500000), record(1, 200, 0, 500000), record(1, 300, 0, 500000),
			record(1, 100, 1, 500000), record(1, 200, 1, 500000), record(1, 300, 1, 500000),
			record(1, 100, 2, 500000), record(1, 200, 2, 500000), record(1, 300, 2, 500000),
		},
		2: {
			record(2, 100, 0, 900000), record(2, 200, 0, 450000), record(2, 300, 0, 450000),
		},
	}

	weekly := pipeline.WeeklyPScores(byMatch)
	require.Contains(t, weekly, int64(100))

	match2 := pipeline.MatchPScores(byMatch[2])
	// 3 maps at 1.0 plus 1 map at the match-2 value, weighted 3:1.
	expected := (3.0 + match2[100].PScore) / 4.0
	assert.InDelta(t, expected, weekly[100], 1e-9)
}

func TestWeeklyPScores_AbsentPlayerHasNoEntry(t *testing.T) {
	byMatch := map[int64][]*domain.MatchMapRecord{
		1: {record(1, 100, 0, 500000), record(1, 200, 0, 400000)},
	}
	weekly := pipeline.WeeklyPScores(byMatch)
	assert.NotContains(t, weekly, int64(999))
}
