package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a fantasy-league participant, keyed by their osu! account id.
// Score caches the cumulative total from the latest WeeklyScoreRecord.
type User struct {
	OsuID     int64     `json:"osuId" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"index;not null"`
	AvatarURL string    `json:"avatarUrl"`
	Score     int       `json:"score" gorm:"default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserOsuID        int64     `json:"userOsuId" gorm:"index;not null"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}
