package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetracker/internal/render"
	"github.com/sadopc/timetracker/internal/stats"
)

const (
	chartWidth  = 72
	chartHeight = 12
)

func (c *Context) snapshot() stats.Snapshot {
	return stats.Compute(c.repo.Entries(), c.repo.InitialHours(), c.Clock.Now())
}

// heatmapCommand implements `timetracker heatmap`.
type heatmapCommand struct {
	ctx *Context
	cmd *cobra.Command

	months int
}

func newHeatmapCommand(ctx *Context) *heatmapCommand {
	c := &heatmapCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "heatmap",
		Short: "Print month calendars colored by minutes per day",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().IntVarP(&c.months, "months", "m", 0, "Only the N most recent months (0 for all)")
	return c
}

func (c *heatmapCommand) Cmd() *cobra.Command { return c.cmd }

func (c *heatmapCommand) run(cmd *cobra.Command, _ []string) error {
	th, err := c.ctx.cfg.Thresholds()
	if err != nil {
		return err
	}
	months := c.ctx.snapshot().Months
	if c.months > 0 && len(months) > c.months {
		months = months[:c.months]
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Months(months, th, ""))
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.Legend(th))
	return nil
}

// weeklyCommand implements `timetracker weekly`.
type weeklyCommand struct {
	ctx *Context
	cmd *cobra.Command

	chart bool
}

func newWeeklyCommand(ctx *Context) *weeklyCommand {
	c := &weeklyCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "weekly",
		Short: "Print cumulative hours per ISO week",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.chart, "chart", false, "Draw a stacked bar chart instead of a table")
	return c
}

func (c *weeklyCommand) Cmd() *cobra.Command { return c.cmd }

func (c *weeklyCommand) run(cmd *cobra.Command, _ []string) error {
	snap := c.ctx.snapshot()
	out := cmd.OutOrStdout()
	if len(snap.Weeks) == 0 {
		fmt.Fprintln(out, "No entries yet")
		return nil
	}
	if c.chart {
		fmt.Fprintln(out, render.WeeklyChart(snap.Weeks, chartWidth, chartHeight, render.DefaultChartColors))
	} else {
		fmt.Fprintln(out, render.WeeklyTable(snap.Weeks))
	}
	fmt.Fprintf(out, "\nTotal: %s h (initial %g h)\n", stats.FormatHours(snap.GrandTotal()), snap.InitialHours)
	return nil
}

// trendCommand implements `timetracker trend`.
type trendCommand struct {
	ctx *Context
	cmd *cobra.Command

	chart bool
}

func newTrendCommand(ctx *Context) *trendCommand {
	c := &trendCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "trend",
		Short: "Print entry values with their exponential moving average",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.chart, "chart", false, "Draw a line chart instead of a table")
	return c
}

func (c *trendCommand) Cmd() *cobra.Command { return c.cmd }

func (c *trendCommand) run(cmd *cobra.Command, _ []string) error {
	points := c.ctx.snapshot().Trend
	out := cmd.OutOrStdout()
	if len(points) == 0 {
		fmt.Fprintln(out, "No entries yet")
		return nil
	}
	if c.chart {
		fmt.Fprintln(out, render.TrendChart(points, chartWidth, chartHeight, render.DefaultChartColors))
		return nil
	}
	fmt.Fprintln(out, render.TrendTable(points))
	return nil
}
