package domain

import "time"

// Player is a tournament participant that users can draft. Rank is the
// external seed rank; Cost is the current draft price; PScore and Playing
// describe the most recently scored week. Only the pipeline stages mutate
// these fields.
type Player struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OsuUserID     int64     `json:"osuUserId" gorm:"uniqueIndex:idx_player_tournament_osu"`
	Tournament    string    `json:"tournament" gorm:"uniqueIndex:idx_player_tournament_osu;index;not null"`
	Username      string    `json:"username" gorm:"not null"`
	Country       string    `json:"country"`
	AvatarURL     string    `json:"avatarUrl"`
	Rank          int       `json:"rank" gorm:"not null"`
	Cost          int       `json:"cost" gorm:"not null"`
	PScore        float64   `json:"pScore" gorm:"default:1.0"`
	Playing       bool      `json:"playing" gorm:"default:false"`
	MatchesPlayed int       `json:"matchesPlayed" gorm:"default:0"`
	MapsPlayed    int       `json:"mapsPlayed" gorm:"default:0"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PlayerWeekSnapshot versions a player's scoring state by week. Each
// pipeline run replaces the snapshot for its (tournament, week, player)
// key instead of mutating history, so past weeks stay inspectable.
type PlayerWeekSnapshot struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Tournament string    `json:"tournament" gorm:"uniqueIndex:idx_snapshot_key;not null"`
	Week       int       `json:"week" gorm:"uniqueIndex:idx_snapshot_key;not null"`
	PlayerID   int64     `json:"playerId" gorm:"uniqueIndex:idx_snapshot_key;not null"`
	Playing    bool      `json:"playing"`
	PScore     float64   `json:"pScore"`
	Cost       int       `json:"cost"`
	Rank       int       `json:"rank"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
