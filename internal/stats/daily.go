// Package stats derives every view of the entry collection: daily totals,
// calendar heatmap grids, ISO-week cumulative series and the trend line.
// All functions are pure and are recomputed from scratch after each change.
package stats

import "github.com/sadopc/timetracker/internal/store"

// DailyTotals sums entry values per date.
func DailyTotals(entries []store.Entry) map[string]float64 {
	totals := make(map[string]float64, len(entries))
	for _, e := range entries {
		totals[e.Date] += e.Value
	}
	return totals
}

// Total sums every entry value.
func Total(entries []store.Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Value
	}
	return sum
}
