package postgres

import (
	"context"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) UpsertAll(ctx context.Context, snapshots []*domain.PlayerWeekSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tournament"}, {Name: "week"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"playing", "p_score", "cost", "rank", "updated_at"}),
	}).CreateInBatches(snapshots, 200).Error
}

func (r *snapshotRepository) GetByWeek(ctx context.Context, tournament string, week int) ([]*domain.PlayerWeekSnapshot, error) {
	var snapshots []*domain.PlayerWeekSnapshot
	err := r.db.WithContext(ctx).
		Where("tournament = ? AND week = ?", tournament, week).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
