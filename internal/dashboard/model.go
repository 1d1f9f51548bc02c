package dashboard

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/store"
	"github.com/abhisek/brightpath/internal/ui/layout"
	"github.com/abhisek/brightpath/internal/ui/theme"
)

const loadTimeout = 10 * time.Second

// Loader fetches a fresh snapshot.
type Loader func(ctx context.Context) (Snapshot, error)

// EventSource is the read side of the event log the dashboard needs.
type EventSource interface {
	Adaptations(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.AdaptationEvent, error)
	RewardTotals(ctx context.Context, learnerID string) (*store.RewardTotals, error)
}

// NewStoreLoader loads learnerID's record, rewards and recent decisions.
func NewStoreLoader(records store.RecordRepo, events EventSource, learnerID string, limit int) Loader {
	return func(ctx context.Context) (Snapshot, error) {
		snap := Snapshot{LearnerID: learnerID, History: performance.NewHistory(), LoadedAt: time.Now()}

		rec, err := records.Get(ctx, learnerID)
		if err != nil {
			return snap, fmt.Errorf("load performance record: %w", err)
		}
		if rec != nil {
			snap.Exists = true
			snap.Version = rec.Version
			snap.History = rec.History
			snap.Recovered = rec.Recovered
		}

		if events == nil {
			return snap, nil
		}
		totals, err := events.RewardTotals(ctx, learnerID)
		if err != nil {
			return snap, fmt.Errorf("load rewards: %w", err)
		}
		snap.Rewards = *totals

		snap.Adaptations, err = events.Adaptations(ctx, learnerID, store.QueryOpts{Limit: limit})
		if err != nil {
			return snap, fmt.Errorf("load decisions: %w", err)
		}
		return snap, nil
	}
}

type tab int

const (
	tabOverview tab = iota
	tabDecisions
)

type keyMap struct {
	Refresh key.Binding
	Switch  key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Switch:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "decisions")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "select")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type snapshotMsg struct {
	snap Snapshot
	err  error
}

type tickMsg time.Time

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	load     Loader
	keys     keyMap
	interval time.Duration

	snap     Snapshot
	err      error
	loaded   bool
	tab      tab
	selected int
	width    int
	height   int
}

// New creates a dashboard Model. A positive interval refreshes the snapshot
// periodically.
func New(load Loader, interval time.Duration) Model {
	return Model{load: load, keys: defaultKeys(), interval: interval}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m Model) refresh() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		snap, err := load(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case snapshotMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.selected = min(m.selected, max(len(m.snap.Adaptations)-1, 0))
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), m.tick())

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, m.keys.Switch):
			if m.tab == tabOverview {
				m.tab = tabDecisions
			} else {
				m.tab = tabOverview
			}
		case key.Matches(msg, m.keys.Up):
			if m.tab == tabDecisions && m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.tab == tabDecisions && m.selected < len(m.snap.Adaptations)-1 {
				m.selected++
			}
		}
	}
	return m, nil
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	title := "Performance"
	if m.tab == tabDecisions {
		title = "Decisions"
	}
	header := layout.RenderHeader(title, m.snap.Rewards.XP, m.snap.Rewards.Gems, m.width)
	footer := layout.RenderFooter(m.hints(), m.width)

	v.SetContent(layout.RenderFrame(header, m.content(), footer, m.width, m.height))
	return v
}

func (m Model) content() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(theme.Error).Render("Error: " + m.err.Error())
	case !m.loaded:
		return theme.Hint.Render("Loading...")
	case m.tab == tabDecisions:
		return RenderAdaptations(m.snap.Adaptations, m.selected, m.width)
	default:
		return RenderOverview(m.snap, m.width)
	}
}

func (m Model) hints() []layout.KeyHint {
	bindings := []key.Binding{m.keys.Refresh, m.keys.Switch}
	if m.tab == tabDecisions {
		bindings = append(bindings, m.keys.Up)
	}
	bindings = append(bindings, m.keys.Quit)

	hints := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		desc := h.Desc
		if h.Key == "tab" && m.tab == tabDecisions {
			desc = "overview"
		}
		hints = append(hints, layout.KeyHint{Key: h.Key, Description: desc})
	}
	return hints
}

// Run starts the dashboard and blocks until the user quits.
func Run(load Loader, interval time.Duration) error {
	_, err := tea.NewProgram(New(load, interval)).Run()
	return err
}
