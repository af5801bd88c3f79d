// Package trend provides the tab that charts average waits over the session.
package trend

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/erwait-dashboard-tui/internal/app"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

// Window limits how many of the newest trend points are charted.
type Window int

const (
	// WindowAll charts every point kept for the session.
	WindowAll Window = iota
	// WindowLast30 charts the 30 newest points.
	WindowLast30
	// WindowLast10 charts the 10 newest points.
	WindowLast10
)

// String returns the label shown in the header.
func (w Window) String() string {
	switch w {
	case WindowLast30:
		return "Last 30 refreshes"
	case WindowLast10:
		return "Last 10 refreshes"
	default:
		return "Whole session"
	}
}

// Next cycles to the following window.
func (w Window) Next() Window {
	return (w + 1) % 3
}

// Size returns the number of points in the window, 0 meaning all.
func (w Window) Size() int {
	switch w {
	case WindowLast30:
		return 30
	case WindowLast10:
		return 10
	default:
		return 0
	}
}

// Apply returns the newest points that fit in the window.
func (w Window) Apply(points []models.TrendPoint) []models.TrendPoint {
	if n := w.Size(); n > 0 && len(points) > n {
		return points[len(points)-n:]
	}
	return points
}

// keyMap defines the key bindings specific to the trend tab.
type keyMap struct {
	ToggleWindow key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the trend tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleWindow: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle window"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the trend tab state.
type Model struct {
	state    *app.State
	names    []string
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	window   Window
}

// New creates a new trend model. names are the category display names in
// the order their averages appear in each trend point.
func New(state *app.State, names []string) *Model {
	return &Model{
		state:    state,
		names:    names,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		window:   WindowAll,
	}
}

// Init initializes the trend tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the trend tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleWindow):
		m.window = m.window.Next()
		return m, nil
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
}

// SetSize sets the available size for the trend tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleWindow,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleWindow},
		{m.keys.Up, m.keys.Down},
	}
}
