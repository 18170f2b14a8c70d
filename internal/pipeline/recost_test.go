package pipeline_test

import (
	"testing"

	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/stretchr/testify/assert"
)

var costCfg = pipeline.CostConfig{
	MinCost:        1000,
	MaxCost:        10000,
	Step:           2000,
	MaxWeeklyDelta: 1500,
}

func TestRecalibrateCost(t *testing.T) {
	tests := []struct {
		name   string
		prev   int
		pscore float64
		want   int
	}{
		{"baseline holds cost", 5000, 1.0, 5000},
		{"above baseline raises", 5000, 1.25, 5500},
		{"below baseline lowers", 5000, 0.75, 4500},
		{"delta capped upward", 5000, 3.0, 6500},
		{"delta capped downward", 5000, 0.0, 3500},
		{"never above max", 9800, 2.0, 10000},
		{"never below min", 1200, 0.1, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.RecalibrateCost(tt.prev, tt.pscore, costCfg))
		})
	}
}

func TestSeedCost(t *testing.T) {
	total := 32

	assert.Equal(t, costCfg.MaxCost, pipeline.SeedCost(1, total, costCfg))
	assert.Equal(t, costCfg.MinCost, pipeline.SeedCost(total, total, costCfg))

	// Monotonically non-increasing across the seed order.
	prev := costCfg.MaxCost
	for rank := 1; rank <= total; rank++ {
		cost := pipeline.SeedCost(rank, total, costCfg)
		assert.LessOrEqual(t, cost, prev, "rank %d", rank)
		assert.GreaterOrEqual(t, cost, costCfg.MinCost)
		assert.LessOrEqual(t, cost, costCfg.MaxCost)
		prev = cost
	}
}

func TestSeedCost_DegenerateRoster(t *testing.T) {
	assert.Equal(t, costCfg.MaxCost, pipeline.SeedCost(1, 1, costCfg))
}
