package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracker/internal/render"
	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
)

type entriesModel struct {
	repo   *store.Repository
	clock  stats.Clock
	width  int
	height int

	rows   []stats.IndexedEntry
	cursor int
	offset int

	// New entry form values as pointers (survive value copies)
	formActive bool
	form       *huh.Form
	date       *string
	minutes    *string
	note       *string
}

func newEntriesModel(repo *store.Repository, clock stats.Clock) entriesModel {
	d, m, n := "", "", ""
	return entriesModel{
		repo:    repo,
		clock:   clock,
		date:    &d,
		minutes: &m,
		note:    &n,
	}
}

func (e *entriesModel) setSize(w, h int) {
	e.width = w
	e.height = h
}

func (e *entriesModel) setData(entries []store.Entry) {
	e.rows = stats.ReverseChronological(entries)
	if e.cursor >= len(e.rows) {
		e.cursor = max(0, len(e.rows)-1)
	}
	e.fixOffset()
}

func (e entriesModel) pageSize() int {
	return max(1, e.height-8)
}

func (e *entriesModel) fixOffset() {
	page := e.pageSize()
	if e.cursor < e.offset {
		e.offset = e.cursor
	}
	if e.cursor >= e.offset+page {
		e.offset = e.cursor - page + 1
	}
	if e.offset < 0 {
		e.offset = 0
	}
}

func (e entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	if e.formActive && e.form != nil {
		return e.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if e.cursor > 0 {
				e.cursor--
			}
			e.fixOffset()
		case key.Matches(msg, keys.Down):
			if e.cursor < len(e.rows)-1 {
				e.cursor++
			}
			e.fixOffset()
		case key.Matches(msg, keys.New):
			return e.showForm()
		case key.Matches(msg, keys.Delete):
			return e, e.deleteSelected()
		}
	}
	return e, nil
}

func (e entriesModel) deleteSelected() tea.Cmd {
	if len(e.rows) == 0 {
		return nil
	}
	row := e.rows[e.cursor]
	return mutate(fmt.Sprintf("Deleted %g min on %s", row.Value, row.Date), func() error {
		return e.repo.RemoveAt(row.Index, row.Entry)
	})
}

func (e entriesModel) showForm() (entriesModel, tea.Cmd) {
	*e.date = store.FormatDate(e.clock.Now())
	*e.minutes = ""
	*e.note = ""

	e.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").
				Validate(func(s string) error {
					_, err := store.ParseDate(s)
					return err
				}).
				Value(e.date),
			huh.NewInput().Title("Minutes").
				Validate(func(s string) error {
					_, err := store.ParseMinutes(s)
					return err
				}).
				Value(e.minutes),
			huh.NewInput().Title("Note").Placeholder("optional").Value(e.note),
		).Title("New Entry"),
	).WithShowHelp(true).WithShowErrors(true)

	e.formActive = true
	return e, e.form.Init()
}

func (e entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		e.formActive = false
		e.form = nil
		return e, nil
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		e.formActive = false
		e.form = nil
		return e, e.addEntry(*e.date, *e.minutes, *e.note)
	}
	return e, cmd
}

func (e entriesModel) addEntry(date, minutes, note string) tea.Cmd {
	v, err := store.ParseMinutes(minutes)
	if err != nil {
		return errorStatus(err)
	}
	entry := store.Entry{Date: date, Value: v, Note: note}
	return mutate(fmt.Sprintf("Added %g min on %s", v, date), func() error {
		return e.repo.Add(entry)
	})
}

func (e entriesModel) view() string {
	w := e.width - 4

	if e.formActive && e.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Entries"), "", e.form.View()),
		)
	}

	title := titleStyle.Render("Entries") + "  " + mutedStyle.Render(strconv.Itoa(len(e.rows))+" total")
	if len(e.rows) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No entries yet. Press n to add one.")))
	}

	rows := []string{title, ""}
	now := e.clock.Now()
	end := min(e.offset+e.pageSize(), len(e.rows))
	for i := e.offset; i < end; i++ {
		r := e.rows[i]
		cursor := "  "
		style := normalItemStyle
		if i == e.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%-10s %7g min  %-10s %s", cursor, r.Date, r.Value,
			render.Since(r.Date, now), r.Note)
		rows = append(rows, style.Render(line))
	}
	rows = append(rows, "", mutedStyle.Render("n: new  d: delete"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
