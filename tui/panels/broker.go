package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/solotrader/internal/broker"
	"github.com/zappabad/solotrader/tui/styles"
)

// BrokerPanel shows the order-entry overlay. Keys are interpreted by the
// engine; the panel only mirrors its state.
type BrokerPanel struct {
	state  broker.State
	active bool
	input  textinput.Model

	width  int
	height int
}

// NewBrokerPanel creates a new broker panel.
func NewBrokerPanel() *BrokerPanel {
	input := textinput.New()
	input.Placeholder = "Quantity"
	input.Prompt = ""
	input.Width = 12
	input.CharLimit = broker.DefaultMaxDigits
	input.Focus()

	return &BrokerPanel{input: input}
}

// SetState mirrors the engine's broker state. active is false while keys
// are not routed to the broker.
func (p *BrokerPanel) SetState(s broker.State, active bool) {
	p.state = s
	p.active = active
	p.input.SetValue(s.Buffer)
	p.input.CursorEnd()
}

// SetSize sets the panel dimensions.
func (p *BrokerPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *BrokerPanel) View() string {
	var content strings.Builder

	mode := p.state.Mode.String()
	modeStyle := styles.BuyStyle
	if p.state.Mode == broker.ModeSell {
		modeStyle = styles.SellStyle
	}
	if p.state.Guard {
		modeStyle = styles.PulseStyle
	}
	content.WriteString(styles.LabelStyle.Render("Mode    "))
	content.WriteString(modeStyle.Render(" " + mode + " "))
	content.WriteString("\n")

	inputStyle := styles.InputStyle
	if p.active {
		inputStyle = styles.ActiveInputStyle
	}
	content.WriteString(styles.LabelStyle.Render("Qty     "))
	content.WriteString(inputStyle.Render(p.input.View()))
	content.WriteString("\n")

	if !p.active {
		content.WriteString(styles.MutedStyle.Render("Start the clock to trade"))
	} else {
		content.WriteString(styles.MutedStyle.Render("b/+ buy  s/- sell  enter place"))
	}

	panelStyle := styles.PanelStyle
	if p.active {
		panelStyle = styles.ActivePanelStyle
	}
	title := styles.RenderTitle("📝 Broker", p.active)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}
