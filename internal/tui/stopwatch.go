package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
)

type stopwatchModel struct {
	repo   *store.Repository
	clock  stats.Clock
	timer  timerModel
	width  int
	height int

	todayMinutes float64

	// Note form shown after stopping
	formActive bool
	form       *huh.Form
	note       *string
	pending    store.Entry
}

func newStopwatchModel(repo *store.Repository, clock stats.Clock) stopwatchModel {
	note := ""
	return stopwatchModel{
		repo:  repo,
		clock: clock,
		timer: newTimerModel(clock),
		note:  &note,
	}
}

func (s *stopwatchModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *stopwatchModel) setData(snap stats.Snapshot) {
	s.todayMinutes = snap.Daily[store.FormatDate(s.clock.Now())]
}

func (s stopwatchModel) isRunning() bool { return s.timer.running() }
func (s stopwatchModel) isPaused() bool  { return s.timer.paused() }

func (s stopwatchModel) update(msg tea.Msg) (stopwatchModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		s.timer.tick()
		return s, nil

	case tea.KeyMsg:
		s.timer.recordActivity()

		switch {
		case key.Matches(msg, keys.Start):
			if s.timer.running() {
				return s, nil
			}
			s.timer.start()
			return s, func() tea.Msg { return statusMsg{text: "Timer started"} }

		case key.Matches(msg, keys.Stop):
			return s.stopTimer()

		case key.Matches(msg, keys.Pause):
			s.timer.toggle()
			return s, nil
		}
	}
	return s, nil
}

// stopTimer halts the stopwatch. At least one whole minute opens the note
// form; anything shorter is dropped.
func (s stopwatchModel) stopTimer() (stopwatchModel, tea.Cmd) {
	if !s.timer.running() {
		return s, nil
	}
	minutes := loggedMinutes(s.timer.stop())
	if minutes < 1 {
		return s, func() tea.Msg { return statusMsg{text: "Timer stopped, under a minute not logged"} }
	}

	s.pending = store.Entry{Date: store.FormatDate(s.clock.Now()), Value: minutes}
	*s.note = ""
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Log %g min on %s", minutes, s.pending.Date)).
				Placeholder("note (optional)").
				Value(s.note),
		),
	).WithShowHelp(true)
	s.formActive = true
	return s, s.form.Init()
}

func (s stopwatchModel) updateForm(msg tea.Msg) (stopwatchModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		discarded := s.pending.Value
		return s, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Discarded %g min", discarded)}
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.logEntry(*s.note)
	}
	return s, cmd
}

func (s stopwatchModel) logEntry(note string) tea.Cmd {
	e := s.pending
	e.Note = note
	return mutate(fmt.Sprintf("Logged %g min", e.Value), func() error {
		return s.repo.Add(e)
	})
}

func (s stopwatchModel) view() string {
	if s.width < 20 {
		return "Terminal too small"
	}
	w := s.width - 4

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Stop timer"), "", s.form.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.renderTimerPanel(w), s.renderTodayPanel(w))
}

func (s stopwatchModel) renderTimerPanel(w int) string {
	if s.timer.running() {
		timeStr := formatDuration(s.timer.currentElapsed())

		var timeDisplay, indicator string
		if s.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if s.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  RUNNING")
		}
		hint := mutedStyle.Render("space: pause/resume  x: stop and log")

		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint),
		)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press s to start tracking")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint),
	)
}

func (s stopwatchModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(fmt.Sprintf("%g min", s.todayMinutes))
	return panelStyle.Width(w).Render(fmt.Sprintf("%s  %s", title, total))
}
