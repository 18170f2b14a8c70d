package domain

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyScoreRecord is the committed outcome of one scoring week for one
// user. Records are keyed by (user, tournament, week) and upserted
// wholesale, so re-running a week replaces the record instead of adding to
// it. Total is the cumulative score after this week, floored at zero.
type WeeklyScoreRecord struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserOsuID        int64     `json:"userOsuId" gorm:"uniqueIndex:idx_score_key;not null"`
	Tournament       string    `json:"tournament" gorm:"uniqueIndex:idx_score_key;not null"`
	Week             int       `json:"week" gorm:"uniqueIndex:idx_score_key;not null"`
	TeamDelta        int       `json:"teamDelta"`
	BoosterDelta     int       `json:"boosterDelta"`
	Total            int       `json:"total"`
	IncompleteIngest bool      `json:"incompleteIngest"`
	ComputedAt       time.Time `json:"computedAt"`
}

// LeaderboardEntry is the read model behind the leaderboard surface: each
// user's latest committed cumulative total.
type LeaderboardEntry struct {
	OsuID     int64  `json:"osuId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	Score     int    `json:"score"`
	Week      int    `json:"week"`
}
