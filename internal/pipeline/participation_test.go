package pipeline_test

import (
	"testing"

	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkParticipation(t *testing.T) {
	players := []*domain.Player{
		{OsuUserID: 100}, {OsuUserID: 200}, {OsuUserID: 300},
	}
	records := []*domain.MatchMapRecord{
		record(1, 100, 0, 500000),
		record(1, 100, 1, 500000),
		record(2, 100, 0, 500000),
		record(2, 200, 0, 500000),
	}

	stats := pipeline.MarkParticipation(players, records)
	require.Len(t, stats, 3)

	assert.True(t, stats[100].Playing)
	assert.Equal(t, 2, stats[100].MatchesPlayed)
	assert.Equal(t, 3, stats[100].MapsPlayed)

	assert.True(t, stats[200].Playing)
	assert.Equal(t, 1, stats[200].MatchesPlayed)
	assert.Equal(t, 1, stats[200].MapsPlayed)

	// On the roster but absent from every record.
	assert.False(t, stats[300].Playing)
	assert.Zero(t, stats[300].MatchesPlayed)
	assert.Zero(t, stats[300].MapsPlayed)
}

func TestMarkParticipation_EmptyWeek(t *testing.T) {
	players := []*domain.Player{{OsuUserID: 100}}
	stats := pipeline.MarkParticipation(players, nil)
	assert.False(t, stats[100].Playing)
}
