package pipeline

import "github.com/remi/owc-fantasy/internal/domain"

// ParticipationStats summarizes a player's activity for the week.
type ParticipationStats struct {
	Playing       bool
	MatchesPlayed int
	MapsPlayed    int
}

// MarkParticipation derives each roster player's activity from the week's
// records: a player is playing iff at least one record references them.
func MarkParticipation(players []*domain.Player, records []*domain.MatchMapRecord) map[int64]ParticipationStats {
	matchesByPlayer := make(map[int64]map[int64]bool)
	mapsByPlayer := make(map[int64]int)
	for _, rec := range records {
		if matchesByPlayer[rec.PlayerOsuID] == nil {
			matchesByPlayer[rec.PlayerOsuID] = make(map[int64]bool)
		}
		matchesByPlayer[rec.PlayerOsuID][rec.MatchID] = true
		mapsByPlayer[rec.PlayerOsuID]++
	}

	stats := make(map[int64]ParticipationStats, len(players))
	for _, p := range players {
		stats[p.OsuUserID] = ParticipationStats{
			Playing:       mapsByPlayer[p.OsuUserID] > 0,
			MatchesPlayed: len(matchesByPlayer[p.OsuUserID]),
			MapsPlayed:    mapsByPlayer[p.OsuUserID],
		}
	}
	return stats
}
