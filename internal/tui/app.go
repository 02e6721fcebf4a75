package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/timetracker/internal/export"
	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
)

// Options configures the app.
type Options struct {
	Clock      stats.Clock
	Thresholds stats.Thresholds
	ExportDir  string
	ImportDir  string
}

// overlay is an app-level form drawn over the active view.
type overlay int

const (
	overlayNone overlay = iota
	overlayExport
	overlayImport
	overlayClear
)

// App is the root Bubble Tea model.
type App struct {
	repo   *store.Repository
	opts   Options
	width  int
	height int

	snap stats.Snapshot

	activeView viewState
	showHelp   bool

	overlay      overlay
	exportCursor int
	form         *huh.Form
	importPath   *string
	confirmClear *bool

	calendar  calendarModel
	entries   entriesModel
	charts    chartsModel
	stopwatch stopwatchModel
	settings  settingsModel

	help     help.Model
	status   string
	statusOK bool
}

func NewApp(repo *store.Repository, opts Options) App {
	if opts.Clock == nil {
		opts.Clock = stats.SystemClock{}
	}
	if len(opts.Thresholds) == 0 {
		opts.Thresholds = stats.DefaultThresholds()
	}
	if opts.ImportDir == "" {
		opts.ImportDir = opts.ExportDir
	}

	h := help.New()
	h.ShowAll = false

	path, confirm := "", false
	a := App{
		repo:         repo,
		opts:         opts,
		activeView:   viewCalendar,
		importPath:   &path,
		confirmClear: &confirm,
		calendar:     newCalendarModel(repo, opts.Clock, opts.Thresholds),
		entries:      newEntriesModel(repo, opts.Clock),
		charts:       newChartsModel(),
		stopwatch:    newStopwatchModel(repo, opts.Clock),
		settings:     newSettingsModel(repo, opts.Thresholds, opts.ExportDir),
		help:         h,
		statusOK:     true,
	}
	a.recompute()
	return a
}

// recompute derives every view's data from the repository.
func (a *App) recompute() {
	entries := a.repo.Entries()
	a.snap = stats.Compute(entries, a.repo.InitialHours(), a.opts.Clock.Now())
	a.calendar.setData(a.snap)
	a.entries.setData(entries)
	a.charts.setData(a.snap)
	a.stopwatch.setData(a.snap)
	a.settings.setData(a.snap, len(entries))
	log.Debugf("recomputed snapshot: %d entries, %d months, %d weeks", len(entries), len(a.snap.Months), len(a.snap.Weeks))
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.calendar.setSize(a.width, contentHeight)
		a.entries.setSize(a.width, contentHeight)
		a.charts.setSize(a.width, contentHeight)
		a.stopwatch.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.overlay != overlayNone {
			return a.updateOverlay(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.overlay = overlayExport
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Import):
			return a.showImport()
		case key.Matches(msg, keys.Clear):
			return a.showClear()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewCalendar
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewEntries
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCharts
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case tickMsg:
		// Ticks always reach the stopwatch, whichever view is active.
		var cmd tea.Cmd
		a.stopwatch, cmd = a.stopwatch.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.setStatus(msg.text, !msg.isError)
		return a, nil

	case dataChangedMsg:
		a.recompute()
		a.setStatus(msg.status, true)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, true)
		return a, nil

	case importDoneMsg:
		a.recompute()
		text := fmt.Sprintf("Imported %d entries from %s", len(msg.result.Entries), msg.path)
		if msg.result.Skipped > 0 {
			text += fmt.Sprintf(" (%d rows skipped)", msg.result.Skipped)
		}
		a.setStatus(text, true)
		return a, nil
	}

	if a.overlay != overlayNone && a.form != nil {
		return a.updateOverlay(msg)
	}
	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, ok bool) {
	a.status = text
	a.statusOK = ok
	if !ok {
		log.Warn(text)
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewEntries:
		a.entries, cmd = a.entries.update(msg)
	case viewTimer:
		a.stopwatch, cmd = a.stopwatch.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewCalendar:
		return a.calendar.formActive
	case viewEntries:
		return a.entries.formActive
	case viewTimer:
		return a.stopwatch.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

// --- Overlays ---

func (a App) showImport() (tea.Model, tea.Cmd) {
	*a.importPath = ""
	picker := huh.NewFilePicker().
		Title("Import entries").
		Description("Replaces every entry. JSON or CSV.").
		AllowedTypes([]string{".json", ".csv"}).
		Picking(true).
		Value(a.importPath)
	if a.opts.ImportDir != "" {
		picker = picker.CurrentDirectory(a.opts.ImportDir)
	}
	a.form = huh.NewForm(huh.NewGroup(picker)).WithShowHelp(true)
	a.overlay = overlayImport
	return a, a.form.Init()
}

func (a App) showClear() (tea.Model, tea.Cmd) {
	*a.confirmClear = false
	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear all data?").
				Description("Removes every entry and the initial hours. This cannot be undone.").
				Affirmative("Clear").
				Negative("Cancel").
				Value(a.confirmClear),
		),
	)
	a.overlay = overlayClear
	return a, a.form.Init()
}

func (a App) closeOverlay() App {
	a.overlay = overlayNone
	a.form = nil
	return a
}

func (a App) updateOverlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.overlay == overlayExport {
		if msg, ok := msg.(tea.KeyMsg); ok {
			return a.updateExportPicker(msg)
		}
		return a, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return a.closeOverlay(), nil
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.overlay
		a = a.closeOverlay()
		if kind == overlayImport {
			return a, a.doImport(*a.importPath)
		}
		return a, a.doClear(*a.confirmClear)
	case huh.StateAborted:
		return a.closeOverlay(), nil
	}
	return a, cmd
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.overlay = overlayNone
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.overlay = overlayNone
	}
	return a, nil
}

var exportFormats = []export.Format{export.FormatJSON, export.FormatCSV}

func (a App) doExport(format export.Format) tea.Cmd {
	entries := a.repo.Entries()
	dir := a.opts.ExportDir
	return func() tea.Msg {
		path, err := export.ToFile(entries, dir, format)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

// doImport reads the file to completion before replacing the collection, so
// a bad file leaves the store untouched.
func (a App) doImport(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		res, err := export.ImportFile(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}
		if err := a.repo.Replace(res.Entries); err != nil {
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}
		return importDoneMsg{path: path, result: res}
	}
}

func (a App) doClear(confirmed bool) tea.Cmd {
	if !confirmed {
		return func() tea.Msg { return statusMsg{text: "Clear cancelled"} }
	}
	return mutate("Cleared all data", a.repo.ClearAll)
}

// --- View ---

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewCalendar:
		content = a.calendar.view()
	case viewEntries:
		content = a.entries.view()
	case viewCharts:
		content = a.charts.view()
	case viewTimer:
		content = a.stopwatch.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	switch a.overlay {
	case overlayExport:
		content = a.renderExportPicker()
	case overlayImport, overlayClear:
		if a.form != nil {
			content = activePanelStyle.Width(a.width - 4).Render(a.form.View())
		}
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timetracker")
	total := mutedStyle.Render(" " + formatHours(a.snap.GrandTotal()))
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(total)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, total, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusOK {
			status = mutedStyle.Render(" " + a.status)
		} else {
			status = errorStyle.Render(" " + a.status)
		}
	}

	timerInfo := ""
	if a.stopwatch.isRunning() {
		elapsed := a.stopwatch.timer.currentElapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.stopwatch.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "", mutedStyle.Render("  to "+a.opts.ExportDir))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
