package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/repository/postgres"
	"github.com/remi/owc-fantasy/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekRecord(osuID int64, week, teamDelta, boosterDelta, total int) *domain.WeeklyScoreRecord {
	return &domain.WeeklyScoreRecord{
		ID:           uuid.New(),
		UserOsuID:    osuID,
		Tournament:   "testcup",
		Week:         week,
		TeamDelta:    teamDelta,
		BoosterDelta: boosterDelta,
		Total:        total,
		ComputedAt:   time.Now(),
	}
}

func TestScoreRepository_CommitWeekIsIdempotent(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	testutil.CreateUser(t, testDB.DB, 100)

	require.NoError(t, repos.Score.CommitWeek(ctx, []*domain.WeeklyScoreRecord{
		weekRecord(100, 1, 20, 5, 25),
	}))

	// Re-running the week replaces the record instead of doubling it.
	require.NoError(t, repos.Score.CommitWeek(ctx, []*domain.WeeklyScoreRecord{
		weekRecord(100, 1, 30, -5, 25),
	}))

	rec, err := repos.Score.GetByUserWeek(ctx, 100, "testcup", 1)
	require.NoError(t, err)
	assert.Equal(t, 30, rec.TeamDelta)
	assert.Equal(t, -5, rec.BoosterDelta)
	assert.Equal(t, 25, rec.Total)

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.WeeklyScoreRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestScoreRepository_CommitWeekRefreshesUserScore(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	testutil.CreateUser(t, testDB.DB, 100)

	require.NoError(t, repos.Score.CommitWeek(ctx, []*domain.WeeklyScoreRecord{
		weekRecord(100, 1, 40, 10, 50),
	}))

	user, err := repos.User.GetByOsuID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, user.Score)
}

func TestScoreRepository_PreviousTotal(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	testutil.CreateUser(t, testDB.DB, 100)

	// No history yet.
	total, err := repos.Score.PreviousTotal(ctx, 100, "testcup", 1)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repos.Score.CommitWeek(ctx, []*domain.WeeklyScoreRecord{
		weekRecord(100, 1, 25, 0, 25),
		weekRecord(100, 2, 15, 0, 40),
	}))

	total, err = repos.Score.PreviousTotal(ctx, 100, "testcup", 3)
	require.NoError(t, err)
	assert.Equal(t, 40, total)

	// Strictly before the requested week.
	total, err = repos.Score.PreviousTotal(ctx, 100, "testcup", 2)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
}

func TestScoreRepository_Leaderboard(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	testutil.CreateUser(t, testDB.DB, 100)
	testutil.CreateUser(t, testDB.DB, 200)

	require.NoError(t, repos.Score.CommitWeek(ctx, []*domain.WeeklyScoreRecord{
		weekRecord(100, 1, 10, 0, 10),
		weekRecord(200, 1, 30, 0, 30),
	}))
	require.NoError(t, repos.Score.CommitWeek(ctx, []*domain.WeeklyScoreRecord{
		weekRecord(100, 2, 45, 0, 55),
	}))

	entries, err := repos.Score.Leaderboard(ctx, "testcup")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Latest week per user, ordered by total descending.
	assert.Equal(t, int64(100), entries[0].OsuID)
	assert.Equal(t, 55, entries[0].Score)
	assert.Equal(t, 2, entries[0].Week)
	assert.Equal(t, int64(200), entries[1].OsuID)
	assert.Equal(t, 30, entries[1].Score)
}

func TestRunLock_RefusesConcurrentWeek(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	release, err := repos.RunLock.Acquire(ctx, "testcup", 1)
	require.NoError(t, err)
	defer release()

	_, err = repos.RunLock.Acquire(ctx, "testcup", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWeekLocked)

	// A different week is untouched by the held lock.
	release2, err := repos.RunLock.Acquire(ctx, "testcup", 2)
	require.NoError(t, err)
	release2()
}
