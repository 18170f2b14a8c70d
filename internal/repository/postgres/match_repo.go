package postgres

import (
	"context"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
)

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *matchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateWithRecords(ctx context.Context, match *domain.Match, records []*domain.MatchMapRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 200).Error
	})
}

func (r *matchRepository) Exists(ctx context.Context, matchID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Match{}).
		Where("id = ?", matchID).
		Count(&count).Error
	return count > 0, err
}

func (r *matchRepository) GetByWeek(ctx context.Context, tournament string, week int) ([]*domain.Match, error) {
	var matches []*domain.Match
	err := r.db.WithContext(ctx).
		Where("tournament = ? AND week = ?", tournament, week).
		Order("id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) RecordsByWeek(ctx context.Context, tournament string, week int) ([]*domain.MatchMapRecord, error) {
	var records []*domain.MatchMapRecord
	err := r.db.WithContext(ctx).
		Where("tournament = ? AND week = ?", tournament, week).
		Order("match_id ASC, map_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
