// Package render draws derived views as terminal text.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracker/internal/stats"
)

var (
	colorMuted  = lipgloss.Color("#666666")
	colorFg     = lipgloss.Color("#C0CAF5")
	colorOnFill = lipgloss.Color("#1A1B26")
	colorAccent = lipgloss.Color("#6C63FF")
	colorPrior  = lipgloss.Color("#414868")

	monthTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	weekdayStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	cellStyle       = lipgloss.NewStyle().PaddingRight(1)
)

var weekdayHeader = "Su Mo Tu We Th Fr Sa"

// Month draws one calendar month. Cells are filled with the threshold color
// of their minutes; selected, when non-empty, marks the cell with that date.
func Month(m stats.Month, th stats.Thresholds, selected string) string {
	lines := make([]string, 0, len(m.Weeks)+2)
	lines = append(lines, monthTitleStyle.Render(m.Title()))
	lines = append(lines, weekdayStyle.Render(weekdayHeader))
	for _, w := range m.Weeks {
		var row strings.Builder
		for _, c := range w {
			row.WriteString(Cell(c, th, c.Date == selected))
		}
		lines = append(lines, strings.TrimRight(row.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// Cell draws a single day, three columns wide.
func Cell(c stats.Cell, th stats.Thresholds, selected bool) string {
	text := fmt.Sprintf("%2d", c.Day)
	style := lipgloss.NewStyle()
	switch {
	case !c.InMonth:
		style = style.Foreground(colorMuted).Faint(true)
	default:
		if color := th.ColorFor(c.Minutes); color != "" {
			style = style.Background(lipgloss.Color(color)).Foreground(colorOnFill)
		} else {
			style = style.Foreground(colorFg)
		}
	}
	if selected {
		style = style.Reverse(true).Bold(true)
	}
	return cellStyle.Render(style.Render(text))
}

// Legend shows one swatch per threshold.
func Legend(th stats.Thresholds) string {
	var parts []string
	for _, t := range th {
		swatch := lipgloss.NewStyle().Foreground(colorMuted).Render("··")
		if t.Color != "" {
			swatch = lipgloss.NewStyle().Background(lipgloss.Color(t.Color)).Render("  ")
		}
		parts = append(parts, fmt.Sprintf("%s %sm", swatch, formatMinutes(t.Min)))
	}
	return strings.Join(parts, "  ")
}

// Months stacks months vertically, separated by a blank line.
func Months(months []stats.Month, th stats.Thresholds, selected string) string {
	blocks := make([]string, len(months))
	for i, m := range months {
		blocks[i] = Month(m, th, selected)
	}
	return strings.Join(blocks, "\n\n")
}

func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
