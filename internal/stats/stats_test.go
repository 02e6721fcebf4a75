package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetracker/internal/store"
)

func TestDailyTotals(t *testing.T) {
	entries := []store.Entry{
		{Date: "2024-01-01", Value: 30},
		{Date: "2024-01-01", Value: 15},
		{Date: "2024-01-02", Value: 10},
	}

	totals := DailyTotals(entries)

	assert.Equal(t, map[string]float64{"2024-01-01": 45, "2024-01-02": 10}, totals)
}

func TestDailyTotalsPreservesMass(t *testing.T) {
	entries := []store.Entry{
		{Date: "2024-03-01", Value: 12.5},
		{Date: "2024-03-09", Value: 60},
		{Date: "2024-03-01", Value: 7.5},
		{Date: "2023-12-31", Value: 1},
		{Date: "2024-03-09", Value: 3},
	}

	var sum float64
	for _, v := range DailyTotals(entries) {
		sum += v
	}

	assert.InDelta(t, Total(entries), sum, 1e-9)
	assert.InDelta(t, 84.0, sum, 1e-9)
}

func TestBuildMonth(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantWeeks int
		wantStart string
		wantEnd   string
	}{
		{"january 2024 starts monday", 2024, time.January, 5, "2023-12-31", "2024-02-03"},
		{"september 2024 starts sunday", 2024, time.September, 5, "2024-09-01", "2024-10-05"},
		{"august 2024 ends saturday", 2024, time.August, 5, "2024-07-28", "2024-08-31"},
		{"february 2015 fits four weeks", 2015, time.February, 4, "2015-02-01", "2015-02-28"},
		{"leap february 2024", 2024, time.February, 5, "2024-01-28", "2024-03-02"},
		{"june 2024 spans six rows", 2024, time.June, 6, "2024-05-26", "2024-07-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildMonth(tt.year, tt.month, nil)

			require.Len(t, m.Weeks, tt.wantWeeks)
			assert.Equal(t, tt.wantStart, m.Weeks[0][0].Date)
			assert.Equal(t, tt.wantEnd, m.Weeks[len(m.Weeks)-1][6].Date)

			seen := map[int]int{}
			for _, w := range m.Weeks {
				for i, c := range w {
					d, err := store.ParseDate(c.Date)
					require.NoError(t, err)
					assert.Equal(t, time.Weekday(i), d.Weekday(), "cell %s in column %d", c.Date, i)
					assert.Equal(t, d.Day(), c.Day)
					if c.InMonth {
						assert.Equal(t, tt.month, d.Month())
						seen[c.Day]++
					} else {
						assert.NotEqual(t, tt.month, d.Month())
					}
				}
			}
			daysInMonth := time.Date(tt.year, tt.month+1, 0, 0, 0, 0, 0, time.UTC).Day()
			require.Len(t, seen, daysInMonth)
			for day, n := range seen {
				assert.Equal(t, 1, n, "day %d", day)
			}
		})
	}
}

func TestBuildMonthUsesTotals(t *testing.T) {
	totals := map[string]float64{"2024-01-01": 45, "2023-12-31": 5}

	m := BuildMonth(2024, time.January, totals)

	assert.Equal(t, Cell{Date: "2023-12-31", Day: 31, Minutes: 5, InMonth: false}, m.Weeks[0][0])
	assert.Equal(t, Cell{Date: "2024-01-01", Day: 1, Minutes: 45, InMonth: true}, m.Weeks[0][1])
	assert.Equal(t, 0.0, m.Weeks[0][2].Minutes)
	assert.Equal(t, "January 2024", m.Title())
}

func TestMonthsToRender(t *testing.T) {
	now := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	entries := []store.Entry{
		{Date: "2024-01-10", Value: 1},
		{Date: "2023-11-02", Value: 1},
		{Date: "2024-01-20", Value: 1},
		{Date: "garbage", Value: 1},
	}

	got := MonthsToRender(entries, now)

	assert.Equal(t, []YearMonth{
		{2024, time.May},
		{2024, time.January},
		{2023, time.November},
	}, got)
}

func TestMonthsToRenderEmpty(t *testing.T) {
	now := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []YearMonth{{2024, time.May}}, MonthsToRender(nil, now))
}

func TestColorFor(t *testing.T) {
	th, err := NewThresholds([]Threshold{
		{Min: 60, Color: "dark"},
		{Min: 0, Color: "empty"},
		{Min: 1, Color: "light"},
		{Min: 30, Color: "mid"},
	})
	require.NoError(t, err)

	tests := []struct {
		v    float64
		want string
	}{
		{0, "empty"},
		{0.5, "empty"},
		{1, "light"},
		{29, "light"},
		{30, "mid"},
		{59.9, "mid"},
		{60, "dark"},
		{600, "dark"},
		{-1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.ColorFor(tt.v), "value %v", tt.v)
	}
}

func TestColorForLastMatchWins(t *testing.T) {
	// Two breakpoints sharing a minimum: the later one wins.
	th, err := NewThresholds([]Threshold{{Min: 0, Color: ""}, {Min: 10, Color: "a"}, {Min: 10, Color: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "b", th.ColorFor(10))
}

func TestNewThresholdsRequiresZero(t *testing.T) {
	_, err := NewThresholds([]Threshold{{Min: 1, Color: "x"}})
	assert.ErrorIs(t, err, ErrNoZeroThreshold)

	_, err = NewThresholds(DefaultThresholds())
	assert.NoError(t, err)
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2015))
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 52, WeeksInYear(2021))
	assert.Equal(t, 52, WeeksInYear(2024))
	assert.Equal(t, 53, WeeksInYear(2026))
}

func TestWeekKeyNext(t *testing.T) {
	assert.Equal(t, WeekKey{2020, 53}, WeekKey{2020, 52}.Next())
	assert.Equal(t, WeekKey{2021, 1}, WeekKey{2020, 53}.Next())
	assert.Equal(t, WeekKey{2025, 1}, WeekKey{2024, 52}.Next())
	assert.Equal(t, WeekKey{2024, 11}, WeekKey{2024, 10}.Next())
}

func TestWeekKeyMonday(t *testing.T) {
	tests := []struct {
		key  WeekKey
		want string
	}{
		{WeekKey{2024, 1}, "2024-01-01"},
		{WeekKey{2025, 1}, "2024-12-30"},
		{WeekKey{2020, 53}, "2020-12-28"},
		{WeekKey{2021, 1}, "2021-01-04"},
	}
	for _, tt := range tests {
		got := tt.key.Monday()
		assert.Equal(t, tt.want, store.FormatDate(got), tt.key.String())
		assert.Equal(t, tt.key, WeekOf(got))
	}
}

func TestParseWeekKey(t *testing.T) {
	k, err := ParseWeekKey("2025-W03")
	require.NoError(t, err)
	assert.Equal(t, WeekKey{2025, 3}, k)
	assert.Equal(t, "2025-W03", k.String())

	for _, bad := range []string{"2025-03", "abcd-W01", "2025-Wxx", "2021-W53", "2021-W00"} {
		_, err := ParseWeekKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeeklySeriesGapFilled(t *testing.T) {
	entries := []store.Entry{
		{Date: "2020-12-20", Value: 60},
		{Date: "2021-01-12", Value: 30},
		{Date: "2020-12-21", Value: 15},
	}

	buckets := WeeklySeries(entries, 0)

	require.Len(t, buckets, 5)
	keys := make([]string, len(buckets))
	for i, b := range buckets {
		keys[i] = b.Key.String()
		if i > 0 {
			assert.Equal(t, buckets[i-1].Key.Next(), b.Key)
			prev, _ := store.ParseDate(buckets[i-1].Start)
			cur, _ := store.ParseDate(b.Start)
			assert.Equal(t, 7*24*time.Hour, cur.Sub(prev))
		}
	}
	assert.Equal(t, []string{"2020-W51", "2020-W52", "2020-W53", "2021-W01", "2021-W02"}, keys)
	assert.Equal(t, []float64{60, 15, 0, 0, 30}, []float64{
		buckets[0].Value, buckets[1].Value, buckets[2].Value, buckets[3].Value, buckets[4].Value,
	})
}

func TestWeeklySeriesCumulative(t *testing.T) {
	entries := []store.Entry{
		{Date: "2024-01-01", Value: 60},
		{Date: "2024-01-03", Value: 30},
		{Date: "2024-01-15", Value: 120},
	}

	buckets := WeeklySeries(entries, 2)

	require.Len(t, buckets, 3)
	assert.Equal(t, 120.0, buckets[0].Prior)
	assert.Equal(t, 90.0, buckets[0].Value)
	assert.Equal(t, 210.0, buckets[1].Prior)
	assert.Equal(t, 0.0, buckets[1].Value)
	assert.Equal(t, 210.0, buckets[2].Prior)
	assert.Equal(t, 330.0, buckets[2].Cumulative())
	assert.Equal(t, "5.5", FormatHours(buckets[2].Cumulative()))
}

func TestWeeklySeriesLabels(t *testing.T) {
	entries := []store.Entry{
		{Date: "2024-11-20", Value: 10},
		{Date: "2025-02-10", Value: 10},
	}

	buckets := WeeklySeries(entries, 0)

	labels := map[string]string{}
	for _, b := range buckets {
		if b.Label != "" {
			labels[b.Start] = b.Label
		}
	}
	assert.Equal(t, map[string]string{
		"2024-11-18": "Nov",
		"2024-12-02": "Dec",
		"2025-01-06": "Jan 2025",
		"2025-02-03": "Feb",
	}, labels)
}

func TestWeeklySeriesEmpty(t *testing.T) {
	assert.Nil(t, WeeklySeries(nil, 10))
	assert.Nil(t, WeeklySeries([]store.Entry{{Date: "bad", Value: 1}}, 0))
}

func TestSmoothConstant(t *testing.T) {
	values := []float64{42, 42, 42, 42, 42, 42, 42}
	for _, v := range Smooth(values) {
		assert.Equal(t, 42.0, v)
	}
}

func TestSmooth(t *testing.T) {
	got := Smooth([]float64{10, 110, 0})

	require.Len(t, got, 3)
	assert.Equal(t, 10.0, got[0])
	assert.InDelta(t, 22.0, got[1], 1e-9)
	assert.InDelta(t, 22.0-0.12*22.0, got[2], 1e-9)
	assert.Nil(t, Smooth(nil))
}

func TestTrendSortsStable(t *testing.T) {
	entries := []store.Entry{
		{Date: "2024-01-03", Value: 3},
		{Date: "2024-01-01", Value: 1},
		{Date: "2024-01-03", Value: 4},
		{Date: "nope", Value: 100},
		{Date: "2024-01-02", Value: 2},
	}

	points := Trend(entries)

	require.Len(t, points, 4)
	assert.Equal(t, []float64{1, 2, 3, 4}, []float64{points[0].Value, points[1].Value, points[2].Value, points[3].Value})
	assert.Equal(t, 1.0, points[0].Trend)
	for _, p := range points {
		assert.False(t, math.IsNaN(p.Trend))
	}
}

func TestComputeSnapshot(t *testing.T) {
	clock := &FixedClock{FixedNow: time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)}
	entries := []store.Entry{
		{Date: "2024-01-01", Value: 30},
		{Date: "2024-01-01", Value: 15},
		{Date: "2024-01-02", Value: 10},
	}

	snap := Compute(entries, 1, clock.Now())

	assert.Equal(t, 55.0, snap.Total)
	assert.Equal(t, 115.0, snap.GrandTotal())
	require.Len(t, snap.Months, 2)
	assert.Equal(t, time.February, snap.Months[0].Month)
	assert.Equal(t, time.January, snap.Months[1].Month)
	require.Len(t, snap.Weeks, 1)
	assert.Equal(t, 60.0, snap.Weeks[0].Prior)
	assert.Len(t, snap.Trend, 3)
}

func TestReverseChronological(t *testing.T) {
	entries := []store.Entry{
		{Date: "2024-01-02", Value: 1},
		{Date: "2024-01-05", Value: 2},
		{Date: "2024-01-02", Value: 3},
	}

	got := ReverseChronological(entries)

	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 0}, []int{got[0].Index, got[1].Index, got[2].Index})
	assert.Equal(t, 3.0, got[1].Value)
}
