package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timetracker/internal/export"
)

// viewState represents the currently active view.
type viewState int

const (
	viewCalendar viewState = iota
	viewEntries
	viewCharts
	viewTimer
	viewSettings
)

var viewNames = []string{"Calendar", "Entries", "Charts", "Timer", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// dataChangedMsg reports a committed mutation; the app recomputes its
// snapshot on receipt.
type dataChangedMsg struct {
	status string
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	path   string
	result export.Result
}

// --- Helpers ---

// mutate runs fn as a command and reports the outcome.
func mutate(status string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return dataChangedMsg{status: status}
	}
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatHours renders minutes as e.g. "12.5h".
func formatHours(minutes float64) string {
	return fmt.Sprintf("%.1fh", minutes/60)
}
