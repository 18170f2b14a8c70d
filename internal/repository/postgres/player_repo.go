package postgres

import (
	"context"
	"errors"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
)

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) GetAll(ctx context.Context, tournament string) ([]*domain.Player, error) {
	var players []*domain.Player
	err := r.db.WithContext(ctx).
		Where("tournament = ?", tournament).
		Order("rank ASC").
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var players []*domain.Player
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	result := r.db.WithContext(ctx).Save(player)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (r *playerRepository) UpdateAll(ctx context.Context, players []*domain.Player) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range players {
			if err := tx.Save(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *playerRepository) ReplaceAll(ctx context.Context, tournament string, players []*domain.Player) error {
	if len(players) == 0 {
		return errors.New("refusing to replace players with an empty baseline")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.PlayerWeekSnapshot{}, "tournament = ?", tournament).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Player{}, "tournament = ?", tournament).Error; err != nil {
			return err
		}
		return tx.Create(players).Error
	})
}
