package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/remi/owc-fantasy/internal/config"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/repository"
)

// TeamService owns fantasy roster writes. Budget, roster size and booster
// assignment rules are all enforced here at write time, so the pipeline
// can trust stored teams.
type TeamService struct {
	teamRepo   repository.TeamRepository
	playerRepo repository.PlayerRepository
	cfg        *config.Config
}

func NewTeamService(teamRepo repository.TeamRepository, playerRepo repository.PlayerRepository, cfg *config.Config) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		cfg:        cfg,
	}
}

type SaveTeamInput struct {
	PlayerIDs []int64       `json:"playerIds"`
	Boosters  map[int64]int `json:"boosters"` // player id -> booster id
}

type TeamView struct {
	Team    *domain.Team     `json:"team"`
	Players []*domain.Player `json:"players"`
	Budget  int              `json:"budget"`
	Spent   int              `json:"spent"`
}

// SaveTeam validates and stores a user's roster wholesale. Partially
// drafted rosters (fewer than the maximum) are allowed; oversized ones
// are not.
func (s *TeamService) SaveTeam(ctx context.Context, osuID int64, input SaveTeamInput) (*TeamView, error) {
	if len(input.PlayerIDs) > s.cfg.MaxTeamSize {
		return nil, domain.ErrRosterTooLarge
	}

	seen := make(map[int64]bool, len(input.PlayerIDs))
	for _, id := range input.PlayerIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: player %d", domain.ErrDuplicatePlayer, id)
		}
		seen[id] = true
	}

	players, err := s.playerRepo.GetByIDs(ctx, input.PlayerIDs)
	if err != nil {
		return nil, err
	}
	if len(players) != len(input.PlayerIDs) {
		return nil, domain.ErrUnknownPlayer
	}

	spent := 0
	for _, p := range players {
		spent += p.Cost
	}
	if spent > s.cfg.TotalBudget {
		return nil, fmt.Errorf("%w: %d over %d", domain.ErrBudgetExceeded, spent, s.cfg.TotalBudget)
	}

	if err := s.validateBoosters(input.PlayerIDs, input.Boosters); err != nil {
		return nil, err
	}

	encodedIDs, err := domain.EncodePlayerIDs(input.PlayerIDs)
	if err != nil {
		return nil, err
	}
	encodedBoosters, err := domain.EncodeBoosters(input.Boosters)
	if err != nil {
		return nil, err
	}

	team := &domain.Team{
		ID:         uuid.New(),
		UserOsuID:  osuID,
		Tournament: s.cfg.Tournament,
		PlayerIDs:  encodedIDs,
		Boosters:   encodedBoosters,
		BudgetUsed: spent,
	}
	if err := s.teamRepo.Save(ctx, team); err != nil {
		return nil, err
	}

	return &TeamView{
		Team:    team,
		Players: players,
		Budget:  s.cfg.TotalBudget,
		Spent:   spent,
	}, nil
}

// validateBoosters checks that every assignment targets a rostered
// player, references a known booster and that no booster is bet twice.
func (s *TeamService) validateBoosters(roster []int64, boosters map[int64]int) error {
	onRoster := make(map[int64]bool, len(roster))
	for _, id := range roster {
		onRoster[id] = true
	}

	used := make(map[int]bool, len(boosters))
	for playerID, boosterID := range boosters {
		if !onRoster[playerID] {
			return fmt.Errorf("%w: player %d", domain.ErrBoosterOffRoster, playerID)
		}
		if _, ok := domain.BoosterByID(boosterID); !ok {
			return fmt.Errorf("%w: booster %d", domain.ErrUnknownBooster, boosterID)
		}
		if used[boosterID] {
			return fmt.Errorf("%w: booster %d", domain.ErrBoosterReused, boosterID)
		}
		used[boosterID] = true
	}
	return nil
}

func (s *TeamService) GetTeam(ctx context.Context, osuID int64) (*TeamView, error) {
	team, err := s.teamRepo.GetByUser(ctx, osuID, s.cfg.Tournament)
	if err != nil {
		return nil, err
	}

	ids, err := team.PlayerIDList()
	if err != nil {
		return nil, err
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &TeamView{
		Team:    team,
		Players: players,
		Budget:  s.cfg.TotalBudget,
		Spent:   team.BudgetUsed,
	}, nil
}
