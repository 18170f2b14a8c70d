package repository

import (
	"context"

	"github.com/remi/owc-fantasy/internal/domain"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByOsuID(ctx context.Context, osuID int64) (*domain.User, error)
	// ResetScores zeroes every user's cached cumulative score.
	ResetScores(ctx context.Context) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserOsuID(ctx context.Context, osuID int64) (*domain.UserSession, error)
	DeleteByUserOsuID(ctx context.Context, osuID int64) error
}

type PlayerRepository interface {
	GetAll(ctx context.Context, tournament string) ([]*domain.Player, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
	UpdateAll(ctx context.Context, players []*domain.Player) error
	// ReplaceAll wipes the tournament's players and inserts the seed
	// baseline in one transaction (--recreate).
	ReplaceAll(ctx context.Context, tournament string, players []*domain.Player) error
}

type MatchRepository interface {
	// CreateWithRecords commits a match and all of its map records in one
	// transaction; ingestion per match id is all-or-nothing.
	CreateWithRecords(ctx context.Context, match *domain.Match, records []*domain.MatchMapRecord) error
	Exists(ctx context.Context, matchID int64) (bool, error)
	GetByWeek(ctx context.Context, tournament string, week int) ([]*domain.Match, error)
	RecordsByWeek(ctx context.Context, tournament string, week int) ([]*domain.MatchMapRecord, error)
}

type TeamRepository interface {
	Save(ctx context.Context, team *domain.Team) error
	GetByUser(ctx context.Context, osuID int64, tournament string) (*domain.Team, error)
	GetAll(ctx context.Context, tournament string) ([]*domain.Team, error)
}

type SnapshotRepository interface {
	UpsertAll(ctx context.Context, snapshots []*domain.PlayerWeekSnapshot) error
	GetByWeek(ctx context.Context, tournament string, week int) ([]*domain.PlayerWeekSnapshot, error)
}

type ScoreRepository interface {
	// CommitWeek writes a whole week's records in one transaction,
	// replacing any prior record for each (user, tournament, week) key and
	// refreshing the users' cached totals. A failure commits nothing.
	CommitWeek(ctx context.Context, records []*domain.WeeklyScoreRecord) error
	GetByUserWeek(ctx context.Context, osuID int64, tournament string, week int) (*domain.WeeklyScoreRecord, error)
	// PreviousTotal returns the cumulative total of the user's most recent
	// record strictly before week, or zero when none exists.
	PreviousTotal(ctx context.Context, osuID int64, tournament string, week int) (int, error)
	// Leaderboard returns each user's latest record joined with their
	// profile, ordered by total descending.
	Leaderboard(ctx context.Context, tournament string) ([]*domain.LeaderboardEntry, error)
}

// RunLock serializes pipeline runs per tournament-week. Concurrent runs
// for the same week are refused, not interleaved.
type RunLock interface {
	Acquire(ctx context.Context, tournament string, week int) (release func(), err error)
}

type Repositories struct {
	User     UserRepository
	Session  SessionRepository
	Player   PlayerRepository
	Match    MatchRepository
	Team     TeamRepository
	Snapshot SnapshotRepository
	Score    ScoreRepository
	RunLock  RunLock
}
