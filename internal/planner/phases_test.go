package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study_plan_backend/internal/model"
)

func TestSplitPhasesCanonical(t *testing.T) {
	tests := []struct {
		days   int
		bounds [][2]int
	}{
		{3, [][2]int{{1, 1}, {2, 2}, {3, 3}}},
		{4, [][2]int{{1, 1}, {2, 2}, {3, 4}}},
		{10, [][2]int{{1, 4}, {5, 7}, {8, 10}}},
		{15, [][2]int{{1, 6}, {7, 10}, {11, 15}}},
		{30, [][2]int{{1, 12}, {13, 21}, {22, 30}}},
	}
	for _, tt := range tests {
		phases := SplitPhases(tt.days)
		require.Len(t, phases, 3)
		for i, b := range tt.bounds {
			assert.Equal(t, i+1, phases[i].ID)
			assert.Equal(t, b[0], phases[i].StartDay, "D=%d phase %d start", tt.days, i+1)
			assert.Equal(t, b[1], phases[i].EndDay, "D=%d phase %d end", tt.days, i+1)
		}
	}
}

func TestSplitPhasesShortHorizon(t *testing.T) {
	one := SplitPhases(1)
	require.Len(t, one, 1)
	assert.Equal(t, phaseTemplates[2].name, one[0].Name)
	assert.Equal(t, 1, one[0].StartDay)
	assert.Equal(t, 1, one[0].EndDay)

	two := SplitPhases(2)
	require.Len(t, two, 2)
	assert.Equal(t, phaseTemplates[1].name, two[0].Name)
	assert.Equal(t, phaseTemplates[2].name, two[1].Name)
}

func TestSplitPhasesCoversEveryHorizon(t *testing.T) {
	for days := 1; days <= MaxPlanDays; days++ {
		assert.True(t, PhasesCover(SplitPhases(days), days), "D=%d", days)
	}
}

func TestPhasesCoverRejectsBrokenRanges(t *testing.T) {
	valid := SplitPhases(10)

	gap := append([]model.Phase(nil), valid...)
	gap[1].StartDay++

	overlap := append([]model.Phase(nil), valid...)
	overlap[2].StartDay--

	short := append([]model.Phase(nil), valid...)
	short[2].EndDay = 9

	assert.True(t, PhasesCover(valid, 10))
	assert.False(t, PhasesCover(nil, 10))
	assert.False(t, PhasesCover(valid[:2], 10))
	assert.False(t, PhasesCover(gap, 10))
	assert.False(t, PhasesCover(overlap, 10))
	assert.False(t, PhasesCover(short, 10))
	assert.False(t, PhasesCover(valid, 12))
}
