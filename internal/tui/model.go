// Package tui is the interactive terminal renderer. It draws the browse
// session's view model and forwards key presses to the session as intents.
package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/state"
)

// Controller is the part of state.Browser the renderer uses.
type Controller interface {
	View() state.ViewModel
	Dispatch(intent state.Intent) error
}

// changedMsg tells the model the session has a newer view model.
type changedMsg struct{}

// logMsg carries a warning or error log line for the status bar.
type logMsg struct{ text string }

// Model is the bubbletea model for the browser.
type Model struct {
	ctrl    Controller
	changes <-chan struct{}
	logs    <-chan events.Event

	view   state.ViewModel
	cursor int
	status string

	width  int
	height int

	keyMap  KeyMap
	help    help.Model
	spinner spinner.Model
}

// NewModel creates a Model. changes receives a value whenever the session
// changes; it may be nil when the caller refreshes the model itself.
func NewModel(ctrl Controller, changes <-chan struct{}) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.ShowAll = false

	return Model{
		ctrl:    ctrl,
		changes: changes,
		view:    ctrl.View(),
		width:   100,
		height:  24,
		keyMap:  DefaultKeyMap(),
		help:    h,
		spinner: s,
	}
}

// WithLogs makes the model show warnings and errors received on logs in
// its status line.
func (m Model) WithLogs(logs <-chan events.Event) Model {
	m.logs = logs
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForChange(), m.waitForLog())
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) waitForLog() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	logs := m.logs
	return func() tea.Msg {
		for e := range logs {
			if le, ok := e.(*events.LogEvent); ok && le.Level >= events.WarnLevel {
				return logMsg{text: le.Message}
			}
		}
		return nil
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case logMsg:
		m.status = msg.text
		return m, m.waitForLog()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(m.view.Folders)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keyMap.Select):
		if m.cursor < len(m.view.Folders) {
			m.dispatch(state.SelectFolderIntent{ID: m.view.Folders[m.cursor].ID})
		}

	case key.Matches(msg, m.keyMap.Mode):
		m.dispatch(state.ToggleModeIntent{})
		m.cursor = 0

	case key.Matches(msg, m.keyMap.Refresh):
		m.dispatch(state.RefreshIntent{})

	case key.Matches(msg, m.keyMap.Filter):
		m.dispatch(state.SetFilterIntent{Type: nextFilter(m.view.Projection.FilterType)})

	case key.Matches(msg, m.keyMap.Sort):
		m.dispatch(state.SetSortKeyIntent{Key: nextSortKey(m.view.Projection.SortKey)})

	case key.Matches(msg, m.keyMap.Direction):
		m.dispatch(state.SetSortDirectionIntent{Direction: m.view.Projection.Direction.Flip()})

	case key.Matches(msg, m.keyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// dispatch forwards an intent and pulls the resulting view model.
func (m *Model) dispatch(intent state.Intent) {
	if err := m.ctrl.Dispatch(intent); err != nil {
		m.status = err.Error()
	} else {
		m.status = ""
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.view = m.ctrl.View()
	if m.cursor >= len(m.view.Folders) {
		m.cursor = max(len(m.view.Folders)-1, 0)
	}
}

// nextFilter cycles all → each known type → all.
func nextFilter(current string) string {
	i := slices.Index(models.KnownFileTypes, current)
	if i+1 < len(models.KnownFileTypes) {
		return models.KnownFileTypes[i+1]
	}
	return state.FilterAll
}

// nextSortKey cycles through state.SortKeys, wrapping back to none.
func nextSortKey(current state.SortKey) state.SortKey {
	i := slices.Index(state.SortKeys, current)
	return state.SortKeys[(i+1)%len(state.SortKeys)]
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF80"))
	privateStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8800"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4A90E2")).Bold(true)
	openStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true)
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	selectedPanel = panelStyle.BorderForeground(lipgloss.Color("#4A90E2"))
)
