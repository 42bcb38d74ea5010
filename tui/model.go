package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/solotrader/internal/ledger"
	"github.com/zappabad/solotrader/internal/session"
	"github.com/zappabad/solotrader/tui/panels"
	"github.com/zappabad/solotrader/tui/styles"
)

// Engine is the part of the session the terminal drives.
type Engine interface {
	Key(k string) error
	Snapshots() <-chan session.Snapshot
}

type keyMap struct {
	Toggle key.Binding
	Buy    key.Binding
	Sell   key.Binding
	Place  key.Binding
	Next   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Buy, k.Sell, k.Place, k.Next, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
	Buy:    key.NewBinding(key.WithKeys("b", "+"), key.WithHelp("b/+", "buy")),
	Sell:   key.NewBinding(key.WithKeys("s", "-"), key.WithHelp("s/-", "sell")),
	Place:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("0-9 enter", "place")),
	Next:   key.NewBinding(key.WithKeys("enter", "n"), key.WithHelp("enter/n", "next day")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

// Model is the main TUI application model.
type Model struct {
	engine Engine
	snap   session.Snapshot

	status  *panels.StatusPanel
	chart   *panels.PriceChartPanel
	broker  *panels.BrokerPanel
	orders  *panels.OrdersPanel
	summary *panels.SummaryDialog
	help    help.Model

	// Window dimensions
	width  int
	height int

	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model.
func NewModel(engine Engine) *Model {
	return &Model{
		engine:  engine,
		status:  panels.NewStatusPanel(),
		chart:   panels.NewPriceChartPanel(),
		broker:  panels.NewBrokerPanel(),
		orders:  panels.NewOrdersPanel(),
		summary: panels.NewSummaryDialog(),
		help:    help.New(),
	}
}

// snapshotMsg carries a state snapshot from the engine.
type snapshotMsg session.Snapshot

// engineClosedMsg is sent when the engine stops publishing.
type engineClosedMsg struct{}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.engine.Snapshots()
		if !ok {
			return engineClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.listen()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if err := m.engine.Key(msg.String()); err != nil {
			m.statusMsg = "engine stopped: " + err.Error()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case snapshotMsg:
		m.apply(session.Snapshot(msg))
		return m, m.listen()

	case engineClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(s session.Snapshot) {
	m.snap = s
	m.status.SetSnapshot(s)
	m.chart.SetDay(s.StockID, s.Day, s.Records, s.Bounds, s.StartPrice)
	m.broker.SetState(s.Broker, s.Running() && s.Phase == ledger.PhaseTrading)
	m.orders.SetOrders(s.Orders)
	m.summary.SetSummary(s.Summary, s.SummaryError)

	switch {
	case s.Rejection != nil:
		m.statusMsg = s.Rejection.Error()
	case s.Phase == ledger.PhaseAwaitContinue:
		m.statusMsg = "Day complete, press any key for the summary"
	case s.Phase == ledger.PhaseGate:
		m.statusMsg = "Day complete, fetching summary..."
	default:
		m.statusMsg = ""
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Layout:
	// ┌──────────────┬──────────────────────────────┐
	// │   Status     │          Chart               │
	// ├──────────────┼──────────────────────────────┤
	// │   Broker     │       Recent orders          │
	// └──────────────┴──────────────────────────────┘
	leftWidth := m.width / 3
	rightWidth := m.width - leftWidth

	topHeight := (m.height - 3) * 2 / 3
	bottomHeight := m.height - topHeight - 3

	m.status.SetSize(leftWidth, topHeight)
	m.chart.SetSize(rightWidth, topHeight)
	m.broker.SetSize(leftWidth, bottomHeight)
	m.orders.SetSize(rightWidth, bottomHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.status.View(), m.chart.View())
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, m.broker.View(), m.orders.View())
	screen := lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())

	if m.snap.Phase == ledger.PhaseSummary || m.snap.Phase == ledger.PhaseGameOver {
		m.summary.SetWidth(m.width / 2)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.summary.View())
	}
	return screen
}

func (m *Model) renderStatusBar() string {
	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}
	if m.snap.RemovedPending > 0 {
		status += fmt.Sprintf(" │ %d stale orders removed", m.snap.RemovedPending)
	}
	return styles.StatusBarStyle.Width(m.width).Render(m.help.View(keys) + status)
}
