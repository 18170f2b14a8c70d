package service

import (
	"context"

	"github.com/remi/owc-fantasy/internal/config"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/repository"
)

type PlayerService struct {
	playerRepo   repository.PlayerRepository
	snapshotRepo repository.SnapshotRepository
	cfg          *config.Config
}

func NewPlayerService(playerRepo repository.PlayerRepository, snapshotRepo repository.SnapshotRepository, cfg *config.Config) *PlayerService {
	return &PlayerService{
		playerRepo:   playerRepo,
		snapshotRepo: snapshotRepo,
		cfg:          cfg,
	}
}

// RosterView is the roster plus the draft constraints the UI needs to
// validate picks client-side.
type RosterView struct {
	Tournament  string           `json:"tournament"`
	TotalBudget int              `json:"totalBudget"`
	MaxTeamSize int              `json:"maxTeamSize"`
	Players     []*domain.Player `json:"players"`
}

// ListPlayers returns the tournament roster with current costs and
// p-scores, for the drafting UI.
func (s *PlayerService) ListPlayers(ctx context.Context) (*RosterView, error) {
	players, err := s.playerRepo.GetAll(ctx, s.cfg.Tournament)
	if err != nil {
		return nil, err
	}
	return &RosterView{
		Tournament:  s.cfg.Tournament,
		TotalBudget: s.cfg.TotalBudget,
		MaxTeamSize: s.cfg.MaxTeamSize,
		Players:     players,
	}, nil
}

// WeekSnapshots returns the roster's state as of a past scoring week.
func (s *PlayerService) WeekSnapshots(ctx context.Context, week int) ([]*domain.PlayerWeekSnapshot, error) {
	return s.snapshotRepo.GetByWeek(ctx, s.cfg.Tournament, week)
}

// Boosters exposes the static booster catalog.
func (s *PlayerService) Boosters() []domain.Booster {
	return domain.BoosterCatalog
}
