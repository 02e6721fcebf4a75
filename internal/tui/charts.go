package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracker/internal/render"
	"github.com/sadopc/timetracker/internal/stats"
)

type chartsModel struct {
	width  int
	height int

	weeks []stats.Bucket
	trend []stats.TrendPoint
	total float64 // minutes, including the initial offset
}

func newChartsModel() chartsModel {
	return chartsModel{}
}

func (c *chartsModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c *chartsModel) setData(snap stats.Snapshot) {
	c.weeks = snap.Weeks
	c.trend = snap.Trend
	c.total = snap.GrandTotal()
}

func (c chartsModel) view() string {
	w := c.width - 4
	chartWidth := max(20, w-6)
	chartHeight := max(4, (c.height-12)/2)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Charts"), "  ",
		highlightStyle.Render(fmt.Sprintf("%s total", formatHours(c.total))),
		"  ", mutedStyle.Render(fmt.Sprintf("%d weeks", len(c.weeks))),
	)

	weekly := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Cumulative hours by week")+"  "+chartKey(),
		render.WeeklyChart(c.weeks, chartWidth, chartHeight, chartColors),
	)
	trend := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render(fmt.Sprintf("Minutes per entry, smoothed (α=%.2f)", stats.SmoothingFactor)),
		render.TrendChart(c.trend, chartWidth, chartHeight, chartColors),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", weekly, "", trend),
	)
}
