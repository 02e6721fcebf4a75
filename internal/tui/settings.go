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

type settingsModel struct {
	repo       *store.Repository
	thresholds stats.Thresholds
	exportDir  string
	width      int
	height     int

	initialHours float64
	entryCount   int

	formActive bool
	form       *huh.Form
	hours      *string
}

func newSettingsModel(repo *store.Repository, th stats.Thresholds, exportDir string) settingsModel {
	h := ""
	return settingsModel{
		repo:       repo,
		thresholds: th,
		exportDir:  exportDir,
		hours:      &h,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) setData(snap stats.Snapshot, count int) {
	s.initialHours = snap.InitialHours
	s.entryCount = count
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.hours = ""
	if s.initialHours > 0 {
		*s.hours = strconv.FormatFloat(s.initialHours, 'f', -1, 64)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Initial hours").
				Description("Hours tracked before the first entry. Blank or 0 clears it.").
				Validate(func(v string) error {
					_, err := store.ParseHours(v)
					return err
				}).
				Value(s.hours),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.saveHours(*s.hours)
	}
	return s, cmd
}

func (s settingsModel) saveHours(input string) tea.Cmd {
	h, err := store.ParseHours(input)
	if err != nil {
		return errorStatus(err)
	}
	return mutate(fmt.Sprintf("Initial hours set to %g", h), func() error {
		return s.repo.SetInitialHours(h)
	})
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(18).Render(label), highlightStyle.Render(value))
	}

	rows := []string{
		title,
		"",
		row("Initial hours", strconv.FormatFloat(s.initialHours, 'f', -1, 64)),
		row("Entries", strconv.Itoa(s.entryCount)),
		row("Export directory", s.exportDir),
		"",
		subtitleStyle.Render("  Heatmap colors"),
		"  " + render.Legend(s.thresholds),
		"",
		mutedStyle.Render("Press enter to edit initial hours"),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
