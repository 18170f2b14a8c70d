package pipeline_test

import (
	"testing"

	"github.com/remi/owc-fantasy/internal/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestTeamDelta(t *testing.T) {
	tests := []struct {
		name string
		avg  float64
		want int
	}{
		{"baseline is zero", 1.0, 0},
		{"floor of the scale", 0.0, -50},
		{"ceiling of the scale", 2.0, 50},
		{"clamped below", -1.0, -50},
		{"clamped above", 3.5, 50},
		{"midpoint rounds", 1.25, 13},
		{"slightly under baseline", 0.9, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.TeamDelta(tt.avg))
		})
	}
}

func TestApplyDelta(t *testing.T) {
	assert.Equal(t, 130, pipeline.ApplyDelta(100, 30))
	assert.Equal(t, 70, pipeline.ApplyDelta(100, -30))
	// Season totals never go negative.
	assert.Equal(t, 0, pipeline.ApplyDelta(20, -50))
	assert.Equal(t, 0, pipeline.ApplyDelta(0, -10))
}
