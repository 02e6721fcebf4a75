package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracker/internal/render"
	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
)

const (
	monthWidth  = 24 // 7 cells of 3 columns plus gap
	monthHeight = 9  // title, weekday row, up to 6 weeks, blank
)

type calendarModel struct {
	repo       *store.Repository
	clock      stats.Clock
	thresholds stats.Thresholds
	width      int
	height     int

	months []stats.Month
	daily  map[string]float64
	cursor time.Time

	// Cell edit form
	formActive bool
	form       *huh.Form
	editDate   string
	input      *string
}

func newCalendarModel(repo *store.Repository, clock stats.Clock, th stats.Thresholds) calendarModel {
	input := ""
	now := clock.Now()
	return calendarModel{
		repo:       repo,
		clock:      clock,
		thresholds: th,
		cursor:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		input:      &input,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c *calendarModel) setData(snap stats.Snapshot) {
	c.months = snap.Months
	c.daily = snap.Daily
	c.cursor = c.clamp(c.cursor)
}

// bounds returns the first and last day covered by the rendered months.
func (c calendarModel) bounds() (time.Time, time.Time) {
	if len(c.months) == 0 {
		now := c.clock.Now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, -1)
	}
	newest := c.months[0]
	oldest := c.months[len(c.months)-1]
	first := time.Date(oldest.Year, oldest.Month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(newest.Year, newest.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}

func (c calendarModel) clamp(t time.Time) time.Time {
	first, last := c.bounds()
	if t.Before(first) {
		return first
	}
	if t.After(last) {
		return last
	}
	return t
}

// move shifts the cursor by days. Months without a heatmap are skipped.
func (c calendarModel) move(days int) calendarModel {
	next := c.clamp(c.cursor.AddDate(0, 0, days))
	if !c.rendered(next) {
		next = c.skipGap(next, days < 0)
	}
	c.cursor = next
	return c
}

func (c calendarModel) rendered(t time.Time) bool {
	if len(c.months) == 0 {
		return true
	}
	for _, m := range c.months {
		if m.Year == t.Year() && m.Month == t.Month() {
			return true
		}
	}
	return false
}

// skipGap lands on the nearest rendered month past t: its last day going
// back, its first day going forward.
func (c calendarModel) skipGap(t time.Time, back bool) time.Time {
	key := t.Year()*12 + int(t.Month())
	if back {
		for _, m := range c.months {
			if m.Year*12+int(m.Month) < key {
				return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC)
			}
		}
	} else {
		for i := len(c.months) - 1; i >= 0; i-- {
			m := c.months[i]
			if m.Year*12+int(m.Month) > key {
				return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
			}
		}
	}
	return t
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			return c.move(-1), nil
		case key.Matches(msg, keys.Right):
			return c.move(1), nil
		case key.Matches(msg, keys.Up):
			return c.move(-7), nil
		case key.Matches(msg, keys.Down):
			return c.move(7), nil
		case key.Matches(msg, keys.Today):
			now := c.clock.Now()
			c.cursor = c.clamp(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
			return c, nil
		case key.Matches(msg, keys.Enter):
			return c.showForm()
		}
	}
	return c, nil
}

func (c calendarModel) showForm() (calendarModel, tea.Cmd) {
	c.editDate = store.FormatDate(c.cursor)
	*c.input = ""
	if v := c.daily[c.editDate]; v > 0 {
		*c.input = strconv.FormatFloat(v, 'f', -1, 64)
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minutes on " + c.editDate).
				Description("Replaces the day's entries. Blank or 0 removes them.").
				Validate(func(s string) error {
					_, err := store.ParseCellInput(s)
					return err
				}).
				Value(c.input),
		),
	).WithShowHelp(true).WithShowErrors(true)
	c.formActive = true
	return c, c.form.Init()
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		c.formActive = false
		c.form = nil
		return c, nil
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		c.form = nil
		return c, c.commit(c.editDate, *c.input)
	}
	return c, cmd
}

// commit applies a cell edit. Unparseable input changes nothing.
func (c calendarModel) commit(date, input string) tea.Cmd {
	minutes, err := store.ParseCellInput(input)
	if err != nil {
		return errorStatus(err)
	}
	status := fmt.Sprintf("Set %s to %g min", date, minutes)
	if minutes <= 0 {
		status = "Cleared " + date
	}
	return mutate(status, func() error {
		return c.repo.SetDay(date, minutes)
	})
}

// visibleMonths returns the page of months holding the cursor.
func (c calendarModel) visibleMonths() []stats.Month {
	if len(c.months) == 0 {
		return nil
	}
	cols := max(1, (c.width-4)/monthWidth)
	rows := max(1, (c.height-4)/monthHeight)
	perPage := cols * rows

	idx := 0
	for i, m := range c.months {
		if m.Year == c.cursor.Year() && m.Month == c.cursor.Month() {
			idx = i
			break
		}
	}
	start := (idx / perPage) * perPage
	end := min(start+perPage, len(c.months))
	return c.months[start:end]
}

func (c calendarModel) view() string {
	w := c.width - 4
	selected := store.FormatDate(c.cursor)

	if c.formActive && c.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit day"), "", c.form.View()),
		)
	}

	months := c.visibleMonths()
	cols := max(1, (c.width-4)/monthWidth)

	var gridRows []string
	for i := 0; i < len(months); i += cols {
		var blocks []string
		for _, m := range months[i:min(i+cols, len(months))] {
			block := render.Month(m, c.thresholds, selected)
			blocks = append(blocks, lipgloss.NewStyle().Width(monthWidth).Render(block))
		}
		gridRows = append(gridRows, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	}

	info := fmt.Sprintf("%s  %s", selectedDayStyle.Render(selected),
		dayMinutesStyle.Render(fmt.Sprintf("%g min", c.daily[selected])))
	legend := render.Legend(c.thresholds)

	grid := lipgloss.JoinVertical(lipgloss.Left, gridRows...)
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, grid, "", info, legend),
	)
}
