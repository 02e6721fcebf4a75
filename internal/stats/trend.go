package stats

import (
	"sort"

	"github.com/sadopc/timetracker/internal/store"
)

// SmoothingFactor is the weight of each new value in the trend.
const SmoothingFactor = 0.12

// Smooth applies a single-pole exponential moving average.
func Smooth(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + SmoothingFactor*(values[i]-out[i-1])
	}
	return out
}

// TrendPoint pairs an entry value with its smoothed trend.
type TrendPoint struct {
	Date  string
	Value float64
	Trend float64
}

// Trend sorts entries chronologically (stable for equal dates) and smooths
// their values. Entries with malformed dates are skipped.
func Trend(entries []store.Entry) []TrendPoint {
	sorted := make([]store.Entry, 0, len(entries))
	for _, e := range entries {
		if _, err := store.ParseDate(e.Date); err == nil {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	values := make([]float64, len(sorted))
	for i, e := range sorted {
		values[i] = e.Value
	}
	trend := Smooth(values)

	points := make([]TrendPoint, len(sorted))
	for i, e := range sorted {
		points[i] = TrendPoint{Date: e.Date, Value: e.Value, Trend: trend[i]}
	}
	return points
}
