package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/timetracker/internal/store"
)

// Cell is one calendar day of the heatmap.
type Cell struct {
	Date    string
	Day     int
	Minutes float64
	InMonth bool // false for padding days of adjacent months
}

// Week is a Sunday-first row of the grid.
type Week [7]Cell

// Month is one calendar month laid out as full weeks.
type Month struct {
	Year  int
	Month time.Month
	Weeks []Week
}

// Title returns e.g. "January 2024".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) after(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year > o.Year
	}
	return ym.Month > o.Month
}

// BuildMonth lays out the given month from the Sunday on or before the 1st
// to the Saturday on or after the last day.
func BuildMonth(year int, month time.Month, totals map[string]float64) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	m := Month{Year: year, Month: month}
	var week Week
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := store.FormatDate(d)
		week[i] = Cell{
			Date:    date,
			Day:     d.Day(),
			Minutes: totals[date],
			InMonth: d.Month() == month,
		}
		i++
		if i == len(week) {
			m.Weeks = append(m.Weeks, week)
			week = Week{}
			i = 0
		}
	}
	return m
}

// MonthsToRender returns every month holding an entry plus the month of now,
// most recent first. Entries with malformed dates are ignored.
func MonthsToRender(entries []store.Entry, now time.Time) []YearMonth {
	seen := map[YearMonth]bool{
		{Year: now.Year(), Month: now.Month()}: true,
	}
	for _, e := range entries {
		d, err := store.ParseDate(e.Date)
		if err != nil {
			continue
		}
		seen[YearMonth{Year: d.Year(), Month: d.Month()}] = true
	}

	months := make([]YearMonth, 0, len(seen))
	for ym := range seen {
		months = append(months, ym)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].after(months[j]) })
	return months
}

// BuildMonths lays out every month from MonthsToRender.
func BuildMonths(entries []store.Entry, totals map[string]float64, now time.Time) []Month {
	yms := MonthsToRender(entries, now)
	months := make([]Month, 0, len(yms))
	for _, ym := range yms {
		months = append(months, BuildMonth(ym.Year, ym.Month, totals))
	}
	return months
}
