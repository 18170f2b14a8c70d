package postgres

import (
	"context"
	"errors"

	"github.com/remi/owc-fantasy/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *scoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) CommitWeek(ctx context.Context, records []*domain.WeeklyScoreRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_osu_id"}, {Name: "tournament"}, {Name: "week"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"team_delta", "booster_delta", "total", "incomplete_ingest", "computed_at",
				}),
			}).Create(rec).Error
			if err != nil {
				return err
			}
			err = tx.Model(&domain.User{}).
				Where("osu_id = ?", rec.UserOsuID).
				Update("score", rec.Total).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *scoreRepository) GetByUserWeek(ctx context.Context, osuID int64, tournament string, week int) (*domain.WeeklyScoreRecord, error) {
	var record domain.WeeklyScoreRecord
	err := r.db.WithContext(ctx).
		Where("user_osu_id = ? AND tournament = ? AND week = ?", osuID, tournament, week).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *scoreRepository) PreviousTotal(ctx context.Context, osuID int64, tournament string, week int) (int, error) {
	var record domain.WeeklyScoreRecord
	err := r.db.WithContext(ctx).
		Where("user_osu_id = ? AND tournament = ? AND week < ?", osuID, tournament, week).
		Order("week DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.Total, nil
}

func (r *scoreRepository) Leaderboard(ctx context.Context, tournament string) ([]*domain.LeaderboardEntry, error) {
	var entries []*domain.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Raw(`SELECT u.osu_id, u.username, u.avatar_url, r.total AS score, r.week
		     FROM weekly_score_records r
		     JOIN (
		         SELECT user_osu_id, MAX(week) AS week
		         FROM weekly_score_records
		         WHERE tournament = ?
		         GROUP BY user_osu_id
		     ) latest
		       ON r.user_osu_id = latest.user_osu_id AND r.week = latest.week
		     JOIN users u ON u.osu_id = r.user_osu_id
		     WHERE r.tournament = ?
		     ORDER BY r.total DESC, u.username ASC`, tournament, tournament).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
