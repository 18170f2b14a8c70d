package service

import (
	"context"
	"errors"

	"github.com/remi/owc-fantasy/internal/config"
	"github.com/remi/owc-fantasy/internal/domain"
	"github.com/remi/owc-fantasy/internal/repository"
	"gorm.io/gorm"
)

type LeaderboardService struct {
	scoreRepo repository.ScoreRepository
	cfg       *config.Config
}

func NewLeaderboardService(scoreRepo repository.ScoreRepository, cfg *config.Config) *LeaderboardService {
	return &LeaderboardService{scoreRepo: scoreRepo, cfg: cfg}
}

func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	return s.scoreRepo.Leaderboard(ctx, s.cfg.Tournament)
}

// WeekScore returns one user's committed record for a week, including the
// team and booster deltas separately so the UI can break the week down.
func (s *LeaderboardService) WeekScore(ctx context.Context, osuID int64, week int) (*domain.WeeklyScoreRecord, error) {
	rec, err := s.scoreRepo.GetByUserWeek(ctx, osuID, s.cfg.Tournament, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return rec, nil
}
