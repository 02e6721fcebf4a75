package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
)

const (
	barWidth = 1
	barGap   = 1

	valueDataSet = "value"
)

// ChartColors holds the two series colors shared by the weekly and trend
// charts.
type ChartColors struct {
	Prior lipgloss.Color // running total before the week, raw trend values
	Value lipgloss.Color // the week's own hours, smoothed trend line
}

// DefaultChartColors is used for charts printed outside the TUI.
var DefaultChartColors = ChartColors{Prior: colorPrior, Value: colorAccent}

// WeeklyChart draws the cumulative series as stacked bars: the prior total
// at the bottom, the week's own hours on top. Only the most recent weeks that
// fit in width are shown. Month markers are printed under their bar.
func WeeklyChart(buckets []stats.Bucket, width, height int, colors ChartColors) string {
	if len(buckets) == 0 {
		return lipgloss.NewStyle().Foreground(colorMuted).Render("No data yet")
	}
	if width < 10 {
		width = 10
	}
	if height < 4 {
		height = 4
	}
	buckets = fitBuckets(buckets, width)

	chart := barchart.New(width, height,
		barchart.WithBarWidth(barWidth),
		barchart.WithBarGap(barGap),
		barchart.WithNoAxis(),
	)

	priorStyle := lipgloss.NewStyle().Foreground(colors.Prior)
	weekStyle := lipgloss.NewStyle().Foreground(colors.Value)
	bars := make([]barchart.BarData, len(buckets))
	for i, b := range buckets {
		bars[i] = barchart.BarData{
			Label: b.Key.String(),
			Values: []barchart.BarValue{
				{Name: "Prior", Value: b.Prior / 60, Style: priorStyle},
				{Name: "Week", Value: b.Value / 60, Style: weekStyle},
			},
		}
	}
	chart.PushAll(bars)
	chart.Draw()

	return lipgloss.JoinVertical(lipgloss.Left, chart.View(), MarkerRow(buckets, barWidth+barGap))
}

// MarkerRow places each non-empty bucket label at its bar's column. A label
// that would overlap the previous one is dropped.
func MarkerRow(buckets []stats.Bucket, step int) string {
	var row []rune
	for i, b := range buckets {
		if b.Label == "" {
			continue
		}
		col := i * step
		if col < len(row) {
			continue
		}
		for len(row) < col {
			row = append(row, ' ')
		}
		row = append(row, []rune(b.Label)...)
		row = append(row, ' ')
	}
	return lipgloss.NewStyle().Foreground(colorMuted).Render(strings.TrimRight(string(row), " "))
}

// fitBuckets keeps the most recent buckets that fit in width. When weeks are
// cut off, the first kept bucket is labeled with its month so the marker row
// never starts unnamed.
func fitBuckets(buckets []stats.Bucket, width int) []stats.Bucket {
	n := width / (barWidth + barGap)
	if n < 1 {
		n = 1
	}
	if len(buckets) <= n {
		return buckets
	}
	out := make([]stats.Bucket, n)
	copy(out, buckets[len(buckets)-n:])
	if out[0].Label == "" {
		if d, err := store.ParseDate(out[0].Start); err == nil {
			out[0].Label = stats.MonthLabel(d)
		}
	}
	return out
}

// TrendChart plots raw entry values and the smoothed trend over time.
func TrendChart(points []stats.TrendPoint, width, height int, colors ChartColors) string {
	if len(points) < 2 {
		return lipgloss.NewStyle().Foreground(colorMuted).Render("Need at least two entries for a trend")
	}
	if width < 10 {
		width = 10
	}
	if height < 4 {
		height = 4
	}

	chart := tslc.New(width, height)
	chart.SetStyle(lipgloss.NewStyle().Foreground(colors.Value))
	chart.SetDataSetStyle(valueDataSet, lipgloss.NewStyle().Foreground(colors.Prior))
	for _, p := range points {
		t, err := store.ParseDate(p.Date)
		if err != nil {
			continue
		}
		chart.PushDataSet(valueDataSet, tslc.TimePoint{Time: t, Value: p.Value})
		chart.Push(tslc.TimePoint{Time: t, Value: p.Trend})
	}
	chart.DrawBrailleAll()
	return chart.View()
}

// WeeklyTable lists every bucket with its week and cumulative hours.
func WeeklyTable(buckets []stats.Bucket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-9s %-10s %8s %10s  %s\n", "Week", "Start", "Hours", "Total", "")
	for _, bk := range buckets {
		fmt.Fprintf(&b, "%-9s %-10s %8s %10s  %s\n",
			bk.Key, bk.Start, stats.FormatHours(bk.Value), stats.FormatHours(bk.Cumulative()), bk.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TrendTable lists each point with its smoothed value.
func TrendTable(points []stats.TrendPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %8s %8s\n", "Date", "Minutes", "Trend")
	for _, p := range points {
		fmt.Fprintf(&b, "%-10s %8s %8.1f\n", p.Date, formatMinutes(p.Value), p.Trend)
	}
	return strings.TrimRight(b.String(), "\n")
}

// EntriesTable lists entries newest first with their insertion index.
func EntriesTable(entries []stats.IndexedEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%5s  %-10s %8s  %s\n", "#", "Date", "Minutes", "Note")
	for _, e := range entries {
		fmt.Fprintf(&b, "%5d  %-10s %8s  %s\n", e.Index, e.Date, formatMinutes(e.Value), e.Note)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Since formats how long ago date was relative to now, e.g. "today", "3d ago".
func Since(date string, now time.Time) string {
	d, err := store.ParseDate(date)
	if err != nil {
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(d).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days > 1:
		return fmt.Sprintf("%dd ago", days)
	}
	return fmt.Sprintf("in %dd", -days)
}
