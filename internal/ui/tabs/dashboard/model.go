// Package dashboard provides the main dashboard tab with the two wait-time charts.
package dashboard

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/erwait-dashboard-tui/internal/app"
	"github.com/j-veylop/erwait-dashboard-tui/internal/config"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/components"
)

const animationDuration = 1500 * time.Millisecond

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Refresh    key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// AnimationState tracks a bar growing from its previous value to a new one.
type AnimationState struct {
	StartTime   time.Time
	Current     float64
	Target      float64
	StartValue  float64
	initialized bool
}

// Model represents the dashboard tab state.
type Model struct {
	state      *app.State
	title      string
	source     string
	animations map[string]*AnimationState
	spinner    components.LoadingSpinner
	keys       keyMap
	viewport   viewport.Model
	width      int
	height     int
}

// New creates a new dashboard model. cfg may be nil.
func New(state *app.State, cfg *config.Config) *Model {
	m := &Model{
		state:      state,
		spinner:    components.NewSpinner("Loading wait times..."),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		animations: make(map[string]*AnimationState),
	}
	if cfg != nil {
		m.title = cfg.DashboardTitle
		m.source = cfg.SourceDescription()
	}
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.StartLoadingMsg:
		cmds = append(cmds, animationTickCmd())

	case app.SnapshotUpdatedMsg:
		m.syncAnimationTargets(time.Now())
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	now := time.Time(msg)

	animating := m.syncAnimationTargets(now)
	m.stepAnimations(now)

	if animating || m.state.AnyLoading() {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

func bucketKey(i int) string   { return "bucket:" + strconv.Itoa(i) }
func severityKey(i int) string { return "severity:" + strconv.Itoa(i) }

// syncAnimationTargets points every bar at the current snapshot value.
func (m *Model) syncAnimationTargets(now time.Time) (animating bool) {
	snap := m.state.GetSnapshot()
	if snap == nil {
		return false
	}

	for i, v := range snap.Permanence.Values {
		if m.updateAnimationState(bucketKey(i), v, now) {
			animating = true
		}
	}
	for i, v := range snap.Severity.Values {
		if m.updateAnimationState(severityKey(i), v, now) {
			animating = true
		}
	}
	return animating
}

func (m *Model) updateAnimationState(animKey string, target float64, now time.Time) bool {
	state, exists := m.animations[animKey]
	if !exists {
		state = &AnimationState{StartTime: now}
		m.animations[animKey] = state
	}

	if !state.initialized || target != state.Target {
		state.StartValue = state.Current
		state.Target = target
		state.StartTime = now
		state.initialized = true
	}

	return state.Current != state.Target
}

func (m *Model) stepAnimations(now time.Time) {
	for _, state := range m.animations {
		if state.Current == state.Target {
			continue
		}
		elapsed := now.Sub(state.StartTime)
		if elapsed >= animationDuration {
			state.Current = state.Target
			continue
		}
		progress := elapsed.Seconds() / animationDuration.Seconds()
		ease := 1.0 - (1.0-progress)*(1.0-progress)
		state.Current = state.StartValue + (state.Target-state.StartValue)*ease
	}
}

// animatedValues returns the on-screen bar values for n points, or nil
// when no animation state exists yet.
func (m *Model) animatedValues(keyFn func(int) string, n int) []float64 {
	out := make([]float64, n)
	for i := range n {
		state, ok := m.animations[keyFn(i)]
		if !ok {
			return nil
		}
		out[i] = state.Current
	}
	return out
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ScrollDown,
		m.keys.ScrollUp,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ScrollDown, m.keys.ScrollUp},
		{m.keys.Top, m.keys.Bottom},
		{m.keys.Refresh},
	}
}
