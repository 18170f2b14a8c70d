package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
)

// PlayerBuilder creates test players with a builder pattern
type PlayerBuilder struct {
	osuUserID  int64
	tournament string
	username   string
	rank       int
	cost       int
	pscore     float64
	playing    bool
}

// NewPlayerBuilder creates a new PlayerBuilder with default values
func NewPlayerBuilder(osuUserID int64) *PlayerBuilder {
	return &PlayerBuilder{
		osuUserID:  osuUserID,
		tournament: "testcup",
		username:   fmt.Sprintf("player_%d", osuUserID),
		rank:       1,
		cost:       5000,
		pscore:     1.0,
	}
}

func (b *PlayerBuilder) WithTournament(tournament string) *PlayerBuilder {
	b.tournament = tournament
	return b
}

func (b *PlayerBuilder) WithRank(rank int) *PlayerBuilder {
	b.rank = rank
	return b
}

func (b *PlayerBuilder) WithCost(cost int) *PlayerBuilder {
	b.cost = cost
	return b
}

func (b *PlayerBuilder) WithPScore(p float64) *PlayerBuilder {
	b.pscore = p
	return b
}

func (b *PlayerBuilder) WithPlaying(playing bool) *PlayerBuilder {
	b.playing = playing
	return b
}

// Build creates the player in the database
func (b *PlayerBuilder) Build(t *testing.T, db *gorm.DB) *domain.Player {
	t.Helper()

	player := &domain.Player{
		OsuUserID:  b.osuUserID,
		Tournament: b.tournament,
		Username:   b.username,
		Rank:       b.rank,
		Cost:       b.cost,
		PScore:     b.pscore,
		Playing:    b.playing,
	}
	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	return player
}

// CreateUser inserts a fantasy user keyed by osu id
func CreateUser(t *testing.T, db *gorm.DB, osuID int64) *domain.User {
	t.Helper()

	user := &domain.User{
		OsuID:     osuID,
		Username:  fmt.Sprintf("user_%d", osuID),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateTeam inserts a fantasy roster for a user
func CreateTeam(t *testing.T, db *gorm.DB, osuID int64, tournament string, playerIDs []int64, boosters map[int64]int) *domain.Team {
	t.Helper()

	encodedIDs, err := domain.EncodePlayerIDs(playerIDs)
	if err != nil {
		t.Fatalf("failed to encode player ids: %v", err)
	}
	encodedBoosters, err := domain.EncodeBoosters(boosters)
	if err != nil {
		t.Fatalf("failed to encode boosters: %v", err)
	}

	team := &domain.Team{
		ID:         uuid.New(),
		UserOsuID:  osuID,
		Tournament: tournament,
		PlayerIDs:  encodedIDs,
		Boosters:   encodedBoosters,
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return team
}
