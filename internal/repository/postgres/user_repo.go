package postgres

import (
	"context"
	"errors"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "osu_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "avatar_url", "updated_at"}),
	}).Create(user).Error
}

func (r *userRepository) GetByOsuID(ctx context.Context, osuID int64) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "osu_id = ?", osuID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ResetScores(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("score <> 0").
		Update("score", 0)
	return result.RowsAffected, result.Error
}
