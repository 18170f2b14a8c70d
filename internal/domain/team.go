package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Team is a user's drafted roster for a tournament, saved wholesale on
// every write. PlayerIDs is an ordered JSON array of Player.ID values;
// Boosters maps a drafted player id to the single booster bet on them.
type Team struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserOsuID  int64          `json:"userOsuId" gorm:"uniqueIndex:idx_team_user_tournament;not null"`
	Tournament string         `json:"tournament" gorm:"uniqueIndex:idx_team_user_tournament;not null"`
	PlayerIDs  datatypes.JSON `json:"playerIds" gorm:"type:jsonb"`
	Boosters   datatypes.JSON `json:"boosters" gorm:"type:jsonb"`
	BudgetUsed int            `json:"budgetUsed" gorm:"default:0"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// PlayerIDList decodes the roster. A nil column is an empty roster.
func (t *Team) PlayerIDList() ([]int64, error) {
	if len(t.PlayerIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal(t.PlayerIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// BoosterMap decodes the player->booster assignments. Keys are stored as
// JSON strings (object keys), so they are parsed back to player ids.
func (t *Team) BoosterMap() (map[int64]int, error) {
	if len(t.Boosters) == 0 {
		return map[int64]int{}, nil
	}
	raw := map[string]int{}
	if err := json.Unmarshal(t.Boosters, &raw); err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

func EncodePlayerIDs(ids []int64) (datatypes.JSON, error) {
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func EncodeBoosters(boosters map[int64]int) (datatypes.JSON, error) {
	raw := make(map[string]int, len(boosters))
	for id, b := range boosters {
		raw[strconv.FormatInt(id, 10)] = b
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
