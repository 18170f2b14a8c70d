package domain

// Booster is a catalog entry for a conditional bet on one drafted player.
// The catalog is a fixed, versioned list; activation predicates live in
// the pipeline's evaluator so display data stays presentation-only.
type Booster struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SuccessDelta int    `json:"successDelta"`
	FailureDelta int    `json:"failureDelta"`
}

// BoosterCatalog lists every booster users may attach to a drafted player.
// Ids and point deltas are part of the season ruleset and never change
// mid-season.
var BoosterCatalog = []Booster{
	{ID: 2, Name: "Captain", Description: "Your player leads the winning team of a lobby", SuccessDelta: 5, FailureDelta: -5},
	{ID: 3, Name: "Noob", Description: "Your player has the lowest p-score in a lobby (at most 1.0)", SuccessDelta: 5, FailureDelta: -2},
	{ID: 4, Name: "727WYSI", Description: "A score containing 727 or a 727 max combo", SuccessDelta: 7, FailureDelta: 0},
	{ID: 5, Name: "Boshyman741", Description: "Plays exactly one map and top-scores it", SuccessDelta: 5, FailureDelta: -5},
	{ID: 6, Name: "They Picked DT2", Description: "B rank or worse on a DT map", SuccessDelta: 6, FailureDelta: -2},
	{ID: 7, Name: "Faker", Description: "Highest p-score in a lobby, at least 1.8", SuccessDelta: 5, FailureDelta: -5},
	{ID: 8, Name: "LETS GO GAMBLING", Description: "S ranks three maps in a row", SuccessDelta: 10, FailureDelta: -10},
	{ID: 9, Name: "ITS OVER 9000(k)", Description: "A score over 900,000 on any map", SuccessDelta: 5, FailureDelta: -5},
	{ID: 10, Name: "TB HYPE", Description: "Plays the tiebreaker map", SuccessDelta: 3, FailureDelta: 0},
	{ID: 11, Name: "OVERWORKING", Description: "Plays every map in a lobby", SuccessDelta: 5, FailureDelta: -5},
	{ID: 12, Name: "Inconsistent", Description: "Below 1000 combo on every map played", SuccessDelta: 5, FailureDelta: -5},
}

// BoosterByID indexes the catalog; unknown ids return ok=false.
func BoosterByID(id int) (Booster, bool) {
	for _, b := range BoosterCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return Booster{}, false
}

type VerdictKind int

const (
	VerdictNotApplicable VerdictKind = iota
	VerdictSuccess
	VerdictFailure
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictSuccess:
		return "success"
	case VerdictFailure:
		return "failure"
	default:
		return "not_applicable"
	}
}

// Verdict is the outcome of evaluating one booster assignment for a week.
// Delta is zero for NotApplicable.
type Verdict struct {
	BoosterID int         `json:"boosterId"`
	PlayerID  int64       `json:"playerId"`
	Kind      VerdictKind `json:"kind"`
	Delta     int         `json:"delta"`
}
