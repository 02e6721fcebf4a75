package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/timetracker/internal/store"
)

// WeekKey is an ISO 8601 week: the week containing its Thursday.
type WeekKey struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// ParseWeekKey parses "2025-W03".
func ParseWeekKey(s string) (WeekKey, error) {
	year, week, ok := strings.Cut(s, "-W")
	if !ok {
		return WeekKey{}, fmt.Errorf("invalid ISO week %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return WeekKey{}, fmt.Errorf("invalid ISO week year %q: %w", s, err)
	}
	w, err := strconv.Atoi(week)
	if err != nil {
		return WeekKey{}, fmt.Errorf("invalid ISO week number %q: %w", s, err)
	}
	if w < 1 || w > WeeksInYear(y) {
		return WeekKey{}, fmt.Errorf("invalid ISO week %q: year %d has %d weeks", s, y, WeeksInYear(y))
	}
	return WeekKey{Year: y, Week: w}, nil
}

// String returns the ISO form, e.g. "2025-W03".
func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// Before reports whether k is an earlier week than o.
func (k WeekKey) Before(o WeekKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Week < o.Week
}

// Next steps one week, rolling over after the year's last ISO week.
func (k WeekKey) Next() WeekKey {
	if k.Week >= WeeksInYear(k.Year) {
		return WeekKey{Year: k.Year + 1, Week: 1}
	}
	return WeekKey{Year: k.Year, Week: k.Week + 1}
}

// Monday returns the first day of the week.
func (k WeekKey) Monday() time.Time {
	jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1 := jan4.AddDate(0, 0, -mondayOffset(jan4))
	return week1.AddDate(0, 0, 7*(k.Week-1))
}

// WeeksInYear returns 52 or 53. December 28 always falls in the last ISO
// week of its year.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Bucket is one bar of the weekly cumulative chart. Values are minutes.
type Bucket struct {
	Key   WeekKey
	Start string  // Monday, YYYY-MM-DD
	Value float64 // this week's own total
	Prior float64 // all earlier weeks plus the initial offset
	Label string  // month marker, empty for most weeks
}

// Cumulative is the running total including this week.
func (b Bucket) Cumulative() float64 {
	return b.Prior + b.Value
}

// WeeklySeries buckets entries by ISO week from the first week holding data
// to the last, filling empty weeks with zero. initialHours is folded into the
// running total as minutes.
func WeeklySeries(entries []store.Entry, initialHours float64) []Bucket {
	values := make(map[WeekKey]float64)
	var first, last WeekKey
	found := false
	for _, e := range entries {
		d, err := store.ParseDate(e.Date)
		if err != nil {
			continue
		}
		k := WeekOf(d)
		values[k] += e.Value
		if !found || k.Before(first) {
			first = k
		}
		if !found || last.Before(k) {
			last = k
		}
		found = true
	}
	if !found {
		return nil
	}

	var buckets []Bucket
	running := initialHours * 60
	var prevMonth YearMonth
	for k := first; !last.Before(k); k = k.Next() {
		monday := k.Monday()
		b := Bucket{
			Key:   k,
			Start: store.FormatDate(monday),
			Value: values[k],
			Prior: running,
		}
		ym := YearMonth{Year: monday.Year(), Month: monday.Month()}
		if len(buckets) == 0 || ym != prevMonth {
			b.Label = MonthLabel(monday)
		}
		prevMonth = ym
		running += b.Value
		buckets = append(buckets, b)
	}
	return buckets
}

// MonthLabel names the month of t, adding the year for January.
func MonthLabel(t time.Time) string {
	if t.Month() == time.January {
		return t.Format("Jan 2006")
	}
	return t.Format("Jan")
}

// FormatHours renders minutes as hours with one decimal.
func FormatHours(minutes float64) string {
	return strconv.FormatFloat(minutes/60, 'f', 1, 64)
}
