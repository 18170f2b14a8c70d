package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/osuapi"
	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatchSource struct {
	responses map[int64]*osuapi.MatchResponse
	failing   map[int64]error
}

func (s *fakeMatchSource) FetchMatch(ctx context.Context, matchID int64) (*osuapi.MatchResponse, error) {
	if err, ok := s.failing[matchID]; ok {
		return nil, backoff.Permanent(err)
	}
	resp, ok := s.responses[matchID]
	if !ok {
		return nil, backoff.Permanent(errors.New("match not found"))
	}
	return resp, nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	known   map[int64]bool
	matches []*domain.Match
	records []*domain.MatchMapRecord
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{known: make(map[int64]bool)}
}

func (r *fakeMatchRepo) CreateWithRecords(ctx context.Context, match *domain.Match, records []*domain.MatchMapRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[match.ID] = true
	r.matches = append(r.matches, match)
	r.records = append(r.records, records...)
	return nil
}

func (r *fakeMatchRepo) Exists(ctx context.Context, matchID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.known[matchID], nil
}

func (r *fakeMatchRepo) GetByWeek(ctx context.Context, tournament string, week int) ([]*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matches, nil
}

func (r *fakeMatchRepo) RecordsByWeek(ctx context.Context, tournament string, week int) ([]*domain.MatchMapRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records, nil
}

func testMatchResponse(matchID int64) *osuapi.MatchResponse {
	return &osuapi.MatchResponse{
		Match: osuapi.MatchInfo{ID: matchID, Name: "OWC2025: (US) vs (KR)"},
		Events: []osuapi.MatchEvent{
			{ID: 1}, // lobby event without a game
			{ID: 2, Game: &osuapi.MatchGame{
				ID: 10,
				Beatmap: &osuapi.Beatmap{
					ID:      501,
					Version: "Extra",
					Beatmapset: &osuapi.Beatmapset{
						Artist: "Artist", Title: "Song",
					},
				},
				Scores: []osuapi.GameScore{
					{UserID: 100, Score: 700000, MaxCombo: 900, Rank: "S", Mods: []string{"HD"}, Match: osuapi.ScoreSlot{Team: "red"}},
					{UserID: 200, Score: 600000, MaxCombo: 850, Rank: "A", Match: osuapi.ScoreSlot{Team: "blue"}},
				},
			}},
			{ID: 3, Game: &osuapi.MatchGame{
				ID: 11,
				Beatmap: &osuapi.Beatmap{
					ID:      502,
					Version: "TB: Apocalypse",
				},
				Scores: []osuapi.GameScore{
					{UserID: 100, Score: 800000, MaxCombo: 1100, Rank: "S", Match: osuapi.ScoreSlot{Team: "red"}},
					{UserID: 0, Score: 1, Rank: "F", Match: osuapi.ScoreSlot{Team: "none"}}, // referee slot
				},
			}},
		},
	}
}

func newTestIngestor(source pipeline.MatchSource, repo *fakeMatchRepo) *pipeline.Ingestor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.NewIngestor(source, repo, "owc2025", 2, logger)
}

func TestIngest_NormalizesRecords(t *testing.T) {
	repo := newFakeMatchRepo()
	source := &fakeMatchSource{responses: map[int64]*osuapi.MatchResponse{
		42: testMatchResponse(42),
	}}

	report, err := newTestIngestor(source, repo).Ingest(context.Background(), 1, []int64{42}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, report.Ingested)
	assert.False(t, report.Incomplete())

	require.Len(t, repo.matches, 1)
	assert.Equal(t, int64(42), repo.matches[0].ID)
	assert.Equal(t, "owc2025", repo.matches[0].Tournament)
	assert.Equal(t, 1, repo.matches[0].Week)

	// Zero user ids (referee slots) are dropped.
	require.Len(t, repo.records, 3)

	first := repo.records[0]
	assert.Equal(t, int64(100), first.PlayerOsuID)
	assert.Equal(t, 0, first.MapIndex)
	assert.Equal(t, "red", first.TeamColor)
	assert.Equal(t, "Artist - Song [Extra]", first.MapName)
	assert.False(t, first.Tiebreaker)
	assert.JSONEq(t, `["HD"]`, string(first.Mods))

	last := repo.records[2]
	assert.Equal(t, 1, last.MapIndex)
	assert.True(t, last.Tiebreaker)
}

func TestIngest_SkipsKnownMatches(t *testing.T) {
	repo := newFakeMatchRepo()
	repo.known[42] = true
	source := &fakeMatchSource{responses: map[int64]*osuapi.MatchResponse{
		42: testMatchResponse(42),
	}}

	report, err := newTestIngestor(source, repo).Ingest(context.Background(), 1, []int64{42}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, report.Skipped)
	assert.Empty(t, report.Ingested)
	assert.Empty(t, repo.matches)
}

func TestIngest_FailureIsolation(t *testing.T) {
	repo := newFakeMatchRepo()
	source := &fakeMatchSource{
		responses: map[int64]*osuapi.MatchResponse{42: testMatchResponse(42)},
		failing:   map[int64]error{43: errors.New("api is down")},
	}

	report, err := newTestIngestor(source, repo).Ingest(context.Background(), 1, []int64{42, 43}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, report.Ingested)
	assert.True(t, report.Incomplete())

	require.Contains(t, report.Failed, int64(43))
	var ingErr *domain.IngestError
	assert.True(t, errors.As(report.Failed[43], &ingErr))
	assert.Equal(t, int64(43), ingErr.MatchID)
}

func TestIngest_DryRunCommitsNothing(t *testing.T) {
	repo := newFakeMatchRepo()
	source := &fakeMatchSource{responses: map[int64]*osuapi.MatchResponse{
		42: testMatchResponse(42),
	}}

	report, err := newTestIngestor(source, repo).Ingest(context.Background(), 1, []int64{42}, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, report.Ingested)
	assert.Empty(t, repo.matches)
	assert.Empty(t, repo.records)

	// The normalized records surface on the report instead, so later
	// stages can run over what would have been committed.
	require.Len(t, report.Pending, 3)
	assert.Equal(t, int64(42), report.Pending[0].MatchID)
}
