package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Match is an ingested multiplayer lobby. Ingestion is all-or-nothing per
// match id: a Match row exists iff every one of its map records was
// committed in the same transaction.
type Match struct {
	ID         int64     `json:"id" gorm:"primaryKey"` // osu! multiplayer match id
	Tournament string    `json:"tournament" gorm:"index;not null"`
	Week       int       `json:"week" gorm:"index;not null"`
	Name       string    `json:"name"`
	IngestedAt time.Time `json:"ingestedAt"`
}

// MatchMapRecord is one player's result on one map of a match. Immutable
// once ingested. MapIndex preserves play order within the match, which the
// booster evaluator depends on.
type MatchMapRecord struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	MatchID     int64          `json:"matchId" gorm:"uniqueIndex:idx_record_key;not null"`
	PlayerOsuID int64          `json:"playerOsuId" gorm:"uniqueIndex:idx_record_key;index;not null"`
	MapIndex    int            `json:"mapIndex" gorm:"uniqueIndex:idx_record_key;not null"`
	Tournament  string         `json:"tournament" gorm:"index;not null"`
	Week        int            `json:"week" gorm:"index;not null"`
	BeatmapID   int64          `json:"beatmapId"`
	MapName     string         `json:"mapName"`
	Score       int64          `json:"score"`
	MaxCombo    int            `json:"maxCombo"`
	Grade       string         `json:"grade"` // SS/S/A/B/C/D with H variants
	Mods        datatypes.JSON `json:"mods" gorm:"type:jsonb"`
	TeamColor   string         `json:"teamColor"` // red/blue sub-team within the lobby
	Tiebreaker  bool           `json:"tiebreaker"`
}

// SGrades are the rank grades counted as an S for streak-style boosters.
// The osu! API reports silver SS/S as X/XH and SH.
var SGrades = map[string]bool{
	"S": true, "SH": true, "SS": true, "X": true, "XH": true,
}
