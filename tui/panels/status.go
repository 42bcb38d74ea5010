package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/scheduler"
	"github.com/zappabad/solotrader/internal/session"
	"github.com/zappabad/solotrader/tui/styles"
)

// StatusPanel shows the day, the price against the day's start and the
// player's position.
type StatusPanel struct {
	snap   session.Snapshot
	width  int
	height int
}

// NewStatusPanel creates a new status panel.
func NewStatusPanel() *StatusPanel {
	return &StatusPanel{}
}

// SetSnapshot sets the state to render.
func (p *StatusPanel) SetSnapshot(s session.Snapshot) {
	p.snap = s
}

// SetSize sets the panel dimensions.
func (p *StatusPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *StatusPanel) View() string {
	s := p.snap
	var content strings.Builder

	row := func(label, value string) {
		content.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%-10s", label)))
		content.WriteString(value)
		content.WriteString("\n")
	}

	switch {
	case s.Invalid != nil:
		content.WriteString(styles.SellStyle.Render("Invalid game"))
		content.WriteString("\n")
		content.WriteString(styles.MutedStyle.Render(s.Invalid.Error()))
	case !s.Loaded:
		content.WriteString(styles.MutedStyle.Render("Loading game..."))
	default:
		row("Day", fmt.Sprintf("%d / %d", s.Day, s.Settings.TradingDays))
		row("Tick", fmt.Sprintf("%d / %d", s.Tick, s.Settings.TicksPerDay))
		row("Price", styles.PriceStyle.Render(styles.FormatMoney(s.Price)))
		row("Open", styles.FormatMoney(s.StartPrice))
		row("Change", statusStyle(s.Status).Render(formatChange(s.Change)+" "+s.Status.String()))
		row("Cash", styles.FormatMoney(s.Cash))
		row("Owned", fmt.Sprintf("%d", s.Owned))
		row("Worth", styles.FormatMoney(s.NetWorth()))
		row("Clock", clockLabel(s))
		if s.MissedTicks > 0 || s.FailedOrders > 0 {
			row("Errors", styles.WarningStyle.Render(fmt.Sprintf("%d missed ticks, %d failed orders", s.MissedTicks, s.FailedOrders)))
		}
	}

	title := styles.RenderTitle("📈 "+string(s.StockID), false)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return styles.PanelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func clockLabel(s session.Snapshot) string {
	switch s.Scheduler {
	case scheduler.StateRunning:
		return styles.BuyStyle.Render("RUNNING")
	case scheduler.StatePaused:
		return styles.WarningStyle.Render(fmt.Sprintf("PAUSED (%s left)", s.Remaining.Round(10*time.Millisecond)))
	case scheduler.StateResuming:
		return styles.WarningStyle.Render("RESUMING")
	default:
		return styles.MutedStyle.Render("STOPPED")
	}
}

func statusStyle(st market.StockStatus) lipgloss.Style {
	switch st {
	case market.StatusAbove:
		return styles.PriceUpStyle
	case market.StatusBelow:
		return styles.PriceDownStyle
	default:
		return styles.PriceStyle
	}
}

func formatChange(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
