package domain

import "sort"

// RankAssignment is an AI priority resolved against a concrete task id.
type RankAssignment struct {
	TaskID     string
	AIPriority int
}

// EffectiveRank combines the AI and user axes. An unset user priority counts
// as neutral so it neither helps nor hurts the task.
func EffectiveRank(t Task) int {
	user := NeutralUserPriority
	if t.UserPriority != nil {
		user = *t.UserPriority
	}
	return t.AIPriority + user
}

// SortByEffectiveRank returns a copy ordered by descending effective rank.
// Equal ranks keep their insertion order.
func SortByEffectiveRank(tasks []Task) []Task {
	sorted := Clone(tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return EffectiveRank(sorted[i]) > EffectiveRank(sorted[j])
	})
	return sorted
}

// AdjustUserPriority applies a bounded bump to the user axis. Starting from an
// unset value means starting from neutral. Both operands are clamped first so
// the sum cannot overflow.
func AdjustUserPriority(current *int, delta int) int {
	base := NeutralUserPriority
	if current != nil {
		base = ClampUserPriority(*current)
	}
	span := MaxUserPriority - MinUserPriority
	return ClampUserPriority(base + clamp(delta, -span, span))
}

func ClampUserPriority(v int) int {
	return clamp(v, MinUserPriority, MaxUserPriority)
}

func ClampAIPriority(v int) int {
	return clamp(v, MinAIPriority, MaxAIPriority)
}

// AIPriorityForBand is the numeric priority given to a task created from a band.
func AIPriorityForBand(p Priority) int {
	switch p {
	case PriorityHigh:
		return 80
	case PriorityLow:
		return 20
	default:
		return 50
	}
}

// BandForAIPriority derives the legacy band from a numeric priority.
func BandForAIPriority(v int) Priority {
	switch {
	case v >= 80:
		return PriorityHigh
	case v >= 50:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ApplyRanking merges AI priorities into the collection. Only aiPriority and
// the derived band change; userPriority is never touched. Assignments for
// unknown ids are ignored and reported back.
func ApplyRanking(tasks []Task, assignments []RankAssignment) (merged []Task, unknown []string) {
	merged = Clone(tasks)
	for _, a := range assignments {
		idx := FindIndex(merged, a.TaskID)
		if idx < 0 {
			unknown = append(unknown, a.TaskID)
			continue
		}
		merged[idx].AIPriority = ClampAIPriority(a.AIPriority)
		merged[idx].Priority = BandForAIPriority(merged[idx].AIPriority)
	}
	return merged, unknown
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
