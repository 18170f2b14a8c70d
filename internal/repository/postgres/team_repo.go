package postgres

import (
	"context"
	"errors"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *teamRepository {
	return &teamRepository{db: db}
}

// Save overwrites the user's roster wholesale, keyed by (user, tournament).
func (r *teamRepository) Save(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_osu_id"}, {Name: "tournament"}},
		DoUpdates: clause.AssignmentColumns([]string{"player_ids", "boosters", "budget_used", "updated_at"}),
	}).Create(team).Error
}

func (r *teamRepository) GetByUser(ctx context.Context, osuID int64, tournament string) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).
		Where("user_osu_id = ? AND tournament = ?", osuID, tournament).
		First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetAll(ctx context.Context, tournament string) ([]*domain.Team, error) {
	var teams []*domain.Team
	err := r.db.WithContext(ctx).
		Where("tournament = ?", tournament).
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}
