package postgres

import (
	"context"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByUserOsuID(ctx context.Context, osuID int64) (*domain.UserSession, error) {
	var session domain.UserSession
	err := r.db.WithContext(ctx).
		Where("user_osu_id = ?", osuID).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByUserOsuID(ctx context.Context, osuID int64) error {
	return r.db.WithContext(ctx).Delete(&domain.UserSession{}, "user_osu_id = ?", osuID).Error
}
