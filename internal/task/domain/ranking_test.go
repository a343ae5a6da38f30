package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestEffectiveRank(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want int
	}{
		{"unset user priority is neutral", Task{AIPriority: 70}, 120},
		{"user bonus", Task{AIPriority: 70, UserPriority: intPtr(90)}, 160},
		{"user penalty", Task{AIPriority: 70, UserPriority: intPtr(0)}, 70},
		{"neutral user priority equals unset", Task{AIPriority: 30, UserPriority: intPtr(50)}, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveRank(tt.task))
		})
	}
}

func TestSortByEffectiveRank_DescendingAndStable(t *testing.T) {
	tasks := []Task{
		{ID: "a", AIPriority: 50},
		{ID: "b", AIPriority: 90},
		{ID: "c", AIPriority: 40, UserPriority: intPtr(60)}, // 100, ties with a
		{ID: "d", AIPriority: 10, UserPriority: intPtr(100)},
	}

	sorted := SortByEffectiveRank(tasks)

	ids := make([]string, len(sorted))
	for i, s := range sorted {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.Equal(t, "a", tasks[0].ID, "input must not be reordered")
}

func TestAdjustUserPriority_StaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var current *int
	for i := 0; i < 500; i++ {
		delta := DefaultAdjustStep
		if rng.Intn(2) == 0 {
			delta = -delta
		}
		delta *= rng.Intn(5)
		v := AdjustUserPriority(current, delta)
		require.GreaterOrEqual(t, v, MinUserPriority)
		require.LessOrEqual(t, v, MaxUserPriority)
		current = &v
	}
}

func TestAdjustUserPriority_StartsFromNeutral(t *testing.T) {
	assert.Equal(t, 60, AdjustUserPriority(nil, 10))
	assert.Equal(t, 40, AdjustUserPriority(nil, -10))
	assert.Equal(t, 100, AdjustUserPriority(intPtr(95), 10))
	assert.Equal(t, 0, AdjustUserPriority(intPtr(3), -10))
}

func TestAdjustUserPriority_ExtremeDeltas(t *testing.T) {
	assert.Equal(t, 100, AdjustUserPriority(intPtr(50), math.MaxInt))
	assert.Equal(t, 0, AdjustUserPriority(intPtr(50), math.MinInt))
	assert.Equal(t, 100, AdjustUserPriority(nil, math.MaxInt))
	assert.Equal(t, 0, AdjustUserPriority(intPtr(math.MaxInt), math.MinInt))
}

func TestBandMapping(t *testing.T) {
	assert.Equal(t, 80, AIPriorityForBand(PriorityHigh))
	assert.Equal(t, 50, AIPriorityForBand(PriorityMedium))
	assert.Equal(t, 20, AIPriorityForBand(PriorityLow))
	assert.Equal(t, 50, AIPriorityForBand(""))

	assert.Equal(t, PriorityHigh, BandForAIPriority(80))
	assert.Equal(t, PriorityMedium, BandForAIPriority(79))
	assert.Equal(t, PriorityMedium, BandForAIPriority(50))
	assert.Equal(t, PriorityLow, BandForAIPriority(49))
}

func TestApplyRanking(t *testing.T) {
	tasks := []Task{
		{ID: "mail", Title: "メール返信", AIPriority: 50, UserPriority: intPtr(70)},
		{ID: "lunch", Title: "昼ごはん", AIPriority: 50},
	}

	merged, unknown := ApplyRanking(tasks, []RankAssignment{
		{TaskID: "mail", AIPriority: 90},
		{TaskID: "lunch", AIPriority: 250},
		{TaskID: "ghost", AIPriority: 10},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, 90, merged[0].AIPriority)
	assert.Equal(t, PriorityHigh, merged[0].Priority)
	require.NotNil(t, merged[0].UserPriority)
	assert.Equal(t, 70, *merged[0].UserPriority, "user axis must survive ranking")
	assert.Equal(t, MaxAIPriority, merged[1].AIPriority)
	assert.Equal(t, []string{"ghost"}, unknown)
	assert.Equal(t, 50, tasks[0].AIPriority, "input must not be mutated")
}
