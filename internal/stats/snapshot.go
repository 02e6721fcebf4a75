package stats

import (
	"time"

	"github.com/sadopc/timetracker/internal/store"
)

// Snapshot holds every derived view of one state of the collection.
type Snapshot struct {
	Daily        map[string]float64
	Total        float64 // minutes, entries only
	InitialHours float64
	Months       []Month
	Weeks        []Bucket
	Trend        []TrendPoint
}

// Compute derives a Snapshot. now selects the current month, which is always
// rendered.
func Compute(entries []store.Entry, initialHours float64, now time.Time) Snapshot {
	daily := DailyTotals(entries)
	return Snapshot{
		Daily:        daily,
		Total:        Total(entries),
		InitialHours: initialHours,
		Months:       BuildMonths(entries, daily, now),
		Weeks:        WeeklySeries(entries, initialHours),
		Trend:        Trend(entries),
	}
}

// GrandTotal is the entry total plus the initial offset, in minutes.
func (s Snapshot) GrandTotal() float64 {
	return s.Total + s.InitialHours*60
}
