package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/remi/owc-fantasy/internal/domain"
)

// lobby holds the per-match context comparative boosters need: total map
// count, the winning sub-team, the top score on each map and who took
// part. One ingested match is one lobby.
type lobby struct {
	matchID       int64
	totalMaps     int
	winningTeam   string // "" when the match had no decisive winner
	mapHighScores map[int]int64
	participants  map[int64]bool
}

// WeekContext is the fully-materialized input to booster evaluation for
// one scoring week: every player's ordered map records, every lobby's
// derived context and the week's p-score set.
type WeekContext struct {
	mapsByPlayer map[int64][]*domain.MatchMapRecord
	lobbies      map[int64]*lobby
	pscores      map[int64]float64
}

// BuildWeekContext derives lobby contexts from the week's records. The
// records must already be ordered by (match, map index); per-player
// sequences preserve that order, which streak predicates rely on.
func BuildWeekContext(records []*domain.MatchMapRecord, pscores map[int64]float64) *WeekContext {
	wc := &WeekContext{
		mapsByPlayer: make(map[int64][]*domain.MatchMapRecord),
		lobbies:      make(map[int64]*lobby),
		pscores:      pscores,
	}

	type mapKey struct {
		matchID int64
		index   int
	}
	teamScores := make(map[mapKey]map[string]int64)

	for _, rec := range records {
		wc.mapsByPlayer[rec.PlayerOsuID] = append(wc.mapsByPlayer[rec.PlayerOsuID], rec)

		lb := wc.lobbies[rec.MatchID]
		if lb == nil {
			lb = &lobby{
				matchID:       rec.MatchID,
				mapHighScores: make(map[int]int64),
				participants:  make(map[int64]bool),
			}
			wc.lobbies[rec.MatchID] = lb
		}
		lb.participants[rec.PlayerOsuID] = true
		if rec.MapIndex+1 > lb.totalMaps {
			lb.totalMaps = rec.MapIndex + 1
		}
		if rec.Score > lb.mapHighScores[rec.MapIndex] {
			lb.mapHighScores[rec.MapIndex] = rec.Score
		}

		if rec.TeamColor != "" {
			key := mapKey{rec.MatchID, rec.MapIndex}
			if teamScores[key] == nil {
				teamScores[key] = make(map[string]int64)
			}
			teamScores[key][rec.TeamColor] += rec.Score
		}
	}

	// Decide each lobby's winner by counting map wins per sub-team. Maps
	// and lobbies without a single leading team stay undecided.
	mapWins := make(map[int64]map[string]int)
	for key, totals := range teamScores {
		if winner := soleMax(totals); winner != "" {
			if mapWins[key.matchID] == nil {
				mapWins[key.matchID] = make(map[string]int)
			}
			mapWins[key.matchID][winner]++
		}
	}
	for matchID, wins := range mapWins {
		totals := make(map[string]int64, len(wins))
		for team, n := range wins {
			totals[team] = int64(n)
		}
		wc.lobbies[matchID].winningTeam = soleMax(totals)
	}

	return wc
}

// soleMax returns the key with the strictly greatest value, or "" on a
// tie.
func soleMax(totals map[string]int64) string {
	var best string
	var bestVal int64
	tied := false
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch {
		case best == "" || totals[k] > bestVal:
			best, bestVal, tied = k, totals[k], false
		case totals[k] == bestVal:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}

type evalInput struct {
	playerID int64
	maps     []*domain.MatchMapRecord
	week     *WeekContext
}

// playerLobbies lists the lobbies this player appeared in, in match order.
func (in *evalInput) playerLobbies() []*lobby {
	seen := make(map[int64]bool)
	var out []*lobby
	for _, rec := range in.maps {
		if !seen[rec.MatchID] {
			seen[rec.MatchID] = true
			out = append(out, in.week.lobbies[rec.MatchID])
		}
	}
	return out
}

func (in *evalInput) mods(rec *domain.MatchMapRecord) ([]string, error) {
	if len(rec.Mods) == 0 {
		return nil, nil
	}
	var mods []string
	if err := json.Unmarshal(rec.Mods, &mods); err != nil {
		return nil, fmt.Errorf("decode mods for map %d: %w", rec.MapIndex, err)
	}
	return mods, nil
}

type predicate func(in *evalInput) (bool, error)

// predicates is the activation table behind domain.BoosterCatalog; display
// data and evaluation logic stay separate on purpose.
var predicates = map[int]predicate{
	2:  predLedWinningTeam,
	3:  predLowestPScore,
	4:  pred727,
	5:  predSoloTopScore,
	6:  predBadRankOnDT,
	7:  predHighestPScore,
	8:  predSRankStreak,
	9:  predScoreOver900k,
	10: predPlayedTiebreaker,
	11: predFullCoverage,
	12: predLowComboEverywhere,
}

// EvaluateBooster resolves one booster assignment against the week's
// replayed records. A player with no maps yields NotApplicable, as does
// any evaluation that hits malformed data; those never fail the run.
func EvaluateBooster(boosterID int, playerID int64, week *WeekContext) (domain.Verdict, error) {
	verdict := domain.Verdict{BoosterID: boosterID, PlayerID: playerID, Kind: domain.VerdictNotApplicable}

	booster, ok := domain.BoosterByID(boosterID)
	if !ok {
		return verdict, &domain.ComputationError{
			PlayerID: playerID, BoosterID: boosterID,
			Err: domain.ErrUnknownBooster,
		}
	}

	maps := week.mapsByPlayer[playerID]
	if len(maps) == 0 {
		return verdict, nil
	}

	activated, err := predicates[boosterID](&evalInput{playerID: playerID, maps: maps, week: week})
	if err != nil {
		return verdict, &domain.ComputationError{PlayerID: playerID, BoosterID: boosterID, Err: err}
	}

	if activated {
		verdict.Kind = domain.VerdictSuccess
		verdict.Delta = booster.SuccessDelta
	} else {
		verdict.Kind = domain.VerdictFailure
		verdict.Delta = booster.FailureDelta
	}
	return verdict, nil
}

// Captain: the player's sub-team took the most map wins in some lobby.
func predLedWinningTeam(in *evalInput) (bool, error) {
	for _, rec := range in.maps {
		lb := in.week.lobbies[rec.MatchID]
		if lb == nil || lb.winningTeam == "" {
			continue
		}
		if rec.TeamColor != "" && rec.TeamColor == lb.winningTeam {
			return true, nil
		}
	}
	return false, nil
}

// Noob: lowest weekly p-score among a lobby's participants, at most the
// baseline. Players sharing the minimum all qualify.
func predLowestPScore(in *evalInput) (bool, error) {
	own, ok := in.week.pscores[in.playerID]
	if !ok {
		return false, fmt.Errorf("no p-score for player %d", in.playerID)
	}
	for _, lb := range in.playerLobbies() {
		if lb == nil {
			continue
		}
		min, ok := extremePScore(in.week, lb, false)
		if ok && own == min && own <= BaselinePScore {
			return true, nil
		}
	}
	return false, nil
}

// 727WYSI: a score whose digits contain 727, or a 727 max combo.
func pred727(in *evalInput) (bool, error) {
	for _, rec := range in.maps {
		if rec.MaxCombo == 727 || strings.Contains(strconv.FormatInt(rec.Score, 10), "727") {
			return true, nil
		}
	}
	return false, nil
}

// Boshyman741: plays exactly one map and top-scores it.
func predSoloTopScore(in *evalInput) (bool, error) {
	if len(in.maps) != 1 {
		return false, nil
	}
	rec := in.maps[0]
	lb := in.week.lobbies[rec.MatchID]
	if lb == nil {
		return false, fmt.Errorf("no lobby context for match %d", rec.MatchID)
	}
	return rec.Score > 0 && rec.Score == lb.mapHighScores[rec.MapIndex], nil
}

// They Picked DT2: B rank or worse on a DT/NC map.
func predBadRankOnDT(in *evalInput) (bool, error) {
	for _, rec := range in.maps {
		mods, err := in.mods(rec)
		if err != nil {
			return false, err
		}
		hasDT := false
		for _, mod := range mods {
			if mod == "DT" || mod == "NC" {
				hasDT = true
				break
			}
		}
		if hasDT && (rec.Grade == "B" || rec.Grade == "C" || rec.Grade == "D") {
			return true, nil
		}
	}
	return false, nil
}

// Faker: highest weekly p-score among a lobby's participants and at least
// 1.8. Players sharing the maximum all qualify.
func predHighestPScore(in *evalInput) (bool, error) {
	own, ok := in.week.pscores[in.playerID]
	if !ok {
		return false, fmt.Errorf("no p-score for player %d", in.playerID)
	}
	for _, lb := range in.playerLobbies() {
		if lb == nil {
			continue
		}
		max, ok := extremePScore(in.week, lb, true)
		if ok && own == max && own >= 1.8 {
			return true, nil
		}
	}
	return false, nil
}

// LETS GO GAMBLING: three consecutive S-tier grades in play order.
func predSRankStreak(in *evalInput) (bool, error) {
	run := 0
	for _, rec := range in.maps {
		if domain.SGrades[rec.Grade] {
			run++
			if run >= 3 {
				return true, nil
			}
		} else {
			run = 0
		}
	}
	return false, nil
}

// ITS OVER 9000(k): a score above 900,000 on any map.
func predScoreOver900k(in *evalInput) (bool, error) {
	for _, rec := range in.maps {
		if rec.Score > 900000 {
			return true, nil
		}
	}
	return false, nil
}

// TB HYPE: played a map flagged as the tiebreaker.
func predPlayedTiebreaker(in *evalInput) (bool, error) {
	for _, rec := range in.maps {
		if rec.Tiebreaker {
			return true, nil
		}
	}
	return false, nil
}

// OVERWORKING: played every map of some lobby.
func predFullCoverage(in *evalInput) (bool, error) {
	played := make(map[int64]int)
	for _, rec := range in.maps {
		played[rec.MatchID]++
	}
	for matchID, count := range played {
		lb := in.week.lobbies[matchID]
		if lb != nil && lb.totalMaps > 0 && count == lb.totalMaps {
			return true, nil
		}
	}
	return false, nil
}

// Inconsistent: under 1000 max combo on every map played.
func predLowComboEverywhere(in *evalInput) (bool, error) {
	for _, rec := range in.maps {
		if rec.MaxCombo >= 1000 {
			return false, nil
		}
	}
	return true, nil
}

// extremePScore scans a lobby's participants for their largest (or
// smallest) weekly p-score. Participants without a known p-score are
// skipped.
func extremePScore(week *WeekContext, lb *lobby, largest bool) (float64, bool) {
	var extreme float64
	found := false
	for playerID := range lb.participants {
		p, ok := week.pscores[playerID]
		if !ok {
			continue
		}
		if !found || (largest && p > extreme) || (!largest && p < extreme) {
			extreme = p
			found = true
		}
	}
	return extreme, found
}
