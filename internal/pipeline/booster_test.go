package pipeline_test

import (
	"errors"
	"testing"

	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradedRecord(matchID, playerID int64, mapIndex int, score int64, grade string) *domain.MatchMapRecord {
	r := record(matchID, playerID, mapIndex, score)
	r.Grade = grade
	return r
}

func teamRecord(matchID, playerID int64, mapIndex int, score int64, team string) *domain.MatchMapRecord {
	r := record(matchID, playerID, mapIndex, score)
	r.TeamColor = team
	r.Grade = "A"
	return r
}

func evalWith(t *testing.T, boosterID int, playerID int64, records []*domain.MatchMapRecord, pscores map[int64]float64) domain.Verdict {
	t.Helper()
	wc := pipeline.BuildWeekContext(records, pscores)
	verdict, err := pipeline.EvaluateBooster(boosterID, playerID, wc)
	require.NoError(t, err)
	return verdict
}

func TestEvaluateBooster_NoMapsIsNotApplicable(t *testing.T) {
	wc := pipeline.BuildWeekContext(nil, map[int64]float64{})
	for _, booster := range domain.BoosterCatalog {
		verdict, err := pipeline.EvaluateBooster(booster.ID, 100, wc)
		require.NoError(t, err, "booster %d", booster.ID)
		assert.Equal(t, domain.VerdictNotApplicable, verdict.Kind, "booster %d", booster.ID)
		assert.Zero(t, verdict.Delta, "booster %d", booster.ID)
	}
}

func TestEvaluateBooster_UnknownBooster(t *testing.T) {
	wc := pipeline.BuildWeekContext([]*domain.MatchMapRecord{record(1, 100, 0, 1)}, nil)
	verdict, err := pipeline.EvaluateBooster(999, 100, wc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownBooster))
	assert.Equal(t, domain.VerdictNotApplicable, verdict.Kind)
}

func TestSRankStreak(t *testing.T) {
	tests := []struct {
		name   string
		grades []string
		want   domain.VerdictKind
	}{
		{"streak mid sequence", []string{"A", "S", "S", "S", "B"}, domain.VerdictSuccess},
		{"streak broken", []string{"S", "A", "S", "S"}, domain.VerdictFailure},
		{"mixed S tiers count", []string{"S", "SH", "X"}, domain.VerdictSuccess},
		{"two is not enough", []string{"S", "S"}, domain.VerdictFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []*domain.MatchMapRecord
			for i, grade := range tt.grades {
				records = append(records, gradedRecord(1, 100, i, 500000, grade))
			}
			verdict := evalWith(t, 8, 100, records, nil)
			assert.Equal(t, tt.want, verdict.Kind)
		})
	}
}

func TestScoreOver900k(t *testing.T) {
	tests := []struct {
		name   string
		scores []int64
		want   domain.VerdictKind
	}{
		{"one over", []int64{850000, 905000}, domain.VerdictSuccess},
		{"all under", []int64{850000, 899999}, domain.VerdictFailure},
		{"exactly 900000 is not over", []int64{900000}, domain.VerdictFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []*domain.MatchMapRecord
			for i, score := range tt.scores {
				records = append(records, gradedRecord(1, 100, i, score, "A"))
			}
			verdict := evalWith(t, 9, 100, records, nil)
			assert.Equal(t, tt.want, verdict.Kind)
			booster, _ := domain.BoosterByID(9)
			if tt.want == domain.VerdictSuccess {
				assert.Equal(t, booster.SuccessDelta, verdict.Delta)
			} else {
				assert.Equal(t, booster.FailureDelta, verdict.Delta)
			}
		})
	}
}

func Test727(t *testing.T) {
	combo := record(1, 100, 0, 500000)
	combo.MaxCombo = 727
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 4, 100, []*domain.MatchMapRecord{combo}, nil).Kind)

	digits := record(1, 100, 0, 727001)
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 4, 100, []*domain.MatchMapRecord{digits}, nil).Kind)

	neither := record(1, 100, 0, 500000)
	neither.MaxCombo = 728
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 4, 100, []*domain.MatchMapRecord{neither}, nil).Kind)
}

func TestPlayedTiebreaker(t *testing.T) {
	tb := record(1, 100, 2, 800000)
	tb.Tiebreaker = true
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 500000),
		tb,
	}
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 10, 100, records, nil).Kind)

	noTB := []*domain.MatchMapRecord{record(1, 100, 0, 500000)}
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 10, 100, noTB, nil).Kind)
}

func TestLedWinningTeam(t *testing.T) {
	// Red wins both maps on aggregate score.
	records := []*domain.MatchMapRecord{
		teamRecord(1, 100, 0, 700000, "red"),
		teamRecord(1, 200, 0, 400000, "blue"),
		teamRecord(1, 100, 1, 650000, "red"),
		teamRecord(1, 200, 1, 500000, "blue"),
	}
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 2, 100, records, nil).Kind)
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 2, 200, records, nil).Kind)
}

func TestLedWinningTeam_TieHasNoWinner(t *testing.T) {
	// One map each: no decisive lobby winner, so both sides fail.
	records := []*domain.MatchMapRecord{
		teamRecord(1, 100, 0, 700000, "red"),
		teamRecord(1, 200, 0, 400000, "blue"),
		teamRecord(1, 100, 1, 300000, "red"),
		teamRecord(1, 200, 1, 500000, "blue"),
	}
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 2, 100, records, nil).Kind)
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 2, 200, records, nil).Kind)
}

func TestFullCoverage(t *testing.T) {
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 500000),
		record(1, 100, 1, 500000),
		record(1, 200, 1, 500000),
	}
	// 100 played both maps of the lobby, 200 only one.
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 11, 100, records, nil).Kind)
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 11, 200, records, nil).Kind)
}

func TestLowComboEverywhere(t *testing.T) {
	low := record(1, 100, 0, 500000)
	low.MaxCombo = 450
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 12, 100, []*domain.MatchMapRecord{low}, nil).Kind)

	high := record(1, 100, 1, 500000)
	high.MaxCombo = 1200
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 12, 100, []*domain.MatchMapRecord{low, high}, nil).Kind)
}

func TestSoloTopScore(t *testing.T) {
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 900000),
		record(1, 200, 0, 500000),
		record(1, 200, 1, 500000),
	}
	// 100 played exactly one map and topped it.
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 5, 100, records, nil).Kind)
	// 200 played two maps, so the bet cannot land.
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 5, 200, records, nil).Kind)
}

func TestHighestAndLowestPScore(t *testing.T) {
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 900000),
		record(1, 200, 0, 400000),
	}
	pscores := map[int64]float64{100: 1.9, 200: 0.7}

	// Faker wants the lobby maximum and at least 1.8.
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 7, 100, records, pscores).Kind)
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 7, 200, records, pscores).Kind)

	// Noob wants the lobby minimum at or below baseline.
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 3, 200, records, pscores).Kind)
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 3, 100, records, pscores).Kind)
}

func TestHighestPScore_SharedMaximumBothQualify(t *testing.T) {
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 900000),
		record(1, 200, 0, 900000),
	}
	pscores := map[int64]float64{100: 1.9, 200: 1.9}

	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 7, 100, records, pscores).Kind)
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 7, 200, records, pscores).Kind)
}

func TestBadRankOnDT(t *testing.T) {
	dt := gradedRecord(1, 100, 0, 500000, "B")
	dt.Mods = []byte(`["DT"]`)
	assert.Equal(t, domain.VerdictSuccess, evalWith(t, 6, 100, []*domain.MatchMapRecord{dt}, nil).Kind)

	goodDT := gradedRecord(1, 100, 0, 800000, "S")
	goodDT.Mods = []byte(`["NC"]`)
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 6, 100, []*domain.MatchMapRecord{goodDT}, nil).Kind)

	badNoMod := gradedRecord(1, 100, 0, 300000, "C")
	assert.Equal(t, domain.VerdictFailure, evalWith(t, 6, 100, []*domain.MatchMapRecord{badNoMod}, nil).Kind)
}

func TestBadRankOnDT_MalformedModsDegrades(t *testing.T) {
	broken := gradedRecord(1, 100, 0, 500000, "B")
	broken.Mods = []byte(`{not json`)

	wc := pipeline.BuildWeekContext([]*domain.MatchMapRecord{broken}, nil)
	verdict, err := pipeline.EvaluateBooster(6, 100, wc)
	require.Error(t, err)

	var compErr *domain.ComputationError
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, domain.VerdictNotApplicable, verdict.Kind)
	assert.Zero(t, verdict.Delta)
}
