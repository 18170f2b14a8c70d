package pipeline

import "math"

// CostConfig bounds weekly price movement so the drafting budget keeps
// meaning across the season.
type CostConfig struct {
	MinCost        int
	MaxCost        int
	Step           int // cost change per full point of p-score above/below baseline
	MaxWeeklyDelta int
}

// RecalibrateCost moves a player's draft price toward their performance:
// above-baseline weeks push the cost up, below-baseline weeks pull it
// down, never by more than MaxWeeklyDelta and never outside
// [MinCost, MaxCost].
func RecalibrateCost(prev int, pscore float64, cfg CostConfig) int {
	delta := int(math.Round((pscore - BaselinePScore) * float64(cfg.Step)))
	if delta > cfg.MaxWeeklyDelta {
		delta = cfg.MaxWeeklyDelta
	}
	if delta < -cfg.MaxWeeklyDelta {
		delta = -cfg.MaxWeeklyDelta
	}
	return clampCost(prev+delta, cfg)
}

// SeedCost prices a player purely from seed rank: rank 1 gets MaxCost and
// the last seed MinCost, linearly in between. Used on --recreate, before
// any performance data exists.
func SeedCost(rank, totalPlayers int, cfg CostConfig) int {
	if totalPlayers <= 1 || rank <= 1 {
		return cfg.MaxCost
	}
	if rank >= totalPlayers {
		return cfg.MinCost
	}
	span := float64(cfg.MaxCost - cfg.MinCost)
	fraction := float64(rank-1) / float64(totalPlayers-1)
	return clampCost(cfg.MaxCost-int(math.Round(fraction*span)), cfg)
}

func clampCost(cost int, cfg CostConfig) int {
	if cost < cfg.MinCost {
		return cfg.MinCost
	}
	if cost > cfg.MaxCost {
		return cfg.MaxCost
	}
	return cost
}
