package stats

import (
	"sort"
	"time"
)

// longestStreak returns the longest run of consecutive calendar days among dates.
//
// Only the year, month and day of each value matter; duplicates collapse. No dates → 0, one date → 1.
func longestStreak(dates []time.Time) int {
	seen := make(map[time.Time]struct{}, len(dates))
	sorted := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		c := civilDate(d)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		sorted = append(sorted, c)
	}
	if len(sorted) == 0 {
		return 0
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDate(0, 0, -1).Equal(sorted[i]) {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}
