package stats

import (
	"errors"
	"sort"
)

var ErrNoZeroThreshold = errors.New("thresholds need a zero-minimum entry")

// Threshold is a color breakpoint: values >= Min may take Color.
// An empty Color means no fill.
type Threshold struct {
	Min   float64
	Color string
}

// Thresholds is sorted by ascending Min.
type Thresholds []Threshold

// DefaultThresholds returns the built-in green scale.
func DefaultThresholds() Thresholds {
	return Thresholds{
		{Min: 0, Color: ""},
		{Min: 1, Color: "#9BE9A8"},
		{Min: 30, Color: "#40C463"},
		{Min: 60, Color: "#30A14E"},
		{Min: 120, Color: "#216E39"},
	}
}

// NewThresholds sorts ts and checks it contains a zero-minimum entry.
func NewThresholds(ts []Threshold) (Thresholds, error) {
	out := make(Thresholds, len(ts))
	copy(out, ts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Min < out[j].Min })

	for _, t := range out {
		if t.Min == 0 {
			return out, nil
		}
	}
	return nil, ErrNoZeroThreshold
}

// ColorFor returns the color of the highest breakpoint whose Min <= v.
func (t Thresholds) ColorFor(v float64) string {
	color := ""
	for _, th := range t {
		if th.Min <= v {
			color = th.Color
		}
	}
	return color
}
