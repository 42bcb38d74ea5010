package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/tui/styles"
)

// SummaryDialog is the end-of-day report.
type SummaryDialog struct {
	summary *game.DaySummary
	err     error
	width   int
}

// NewSummaryDialog creates an empty dialog.
func NewSummaryDialog() *SummaryDialog {
	return &SummaryDialog{}
}

// SetSummary sets the summary to show. err is set when part of it could not be fetched.
func (d *SummaryDialog) SetSummary(s *game.DaySummary, err error) {
	d.summary = s
	d.err = err
}

// SetWidth sets the dialog width.
func (d *SummaryDialog) SetWidth(width int) {
	d.width = width
}

// View renders the dialog.
func (d *SummaryDialog) View() string {
	s := d.summary
	if s == nil {
		return ""
	}
	var content strings.Builder

	heading := fmt.Sprintf("Day %d complete", s.Day)
	if s.Final {
		heading = fmt.Sprintf("Day %d complete · game over", s.Day)
	}
	content.WriteString(styles.DialogTitleStyle.Render(heading))
	content.WriteString("\n\n")

	content.WriteString(styles.HeaderStyle.Render("Orders"))
	content.WriteString("\n")
	if len(s.Orders) == 0 {
		content.WriteString(styles.MutedStyle.Render("No orders placed"))
		content.WriteString("\n")
	}
	net := decimal.Zero
	for _, o := range s.Orders {
		content.WriteString(renderOrder(o))
		content.WriteString("\n")
		net = net.Sub(o.Notional())
	}
	content.WriteString("\n")

	content.WriteString(styles.LabelStyle.Render("Net cash flow    "))
	content.WriteString(styles.SignedStyle(net).Render(styles.FormatMoney(net)))
	content.WriteString("\n")
	content.WriteString(styles.LabelStyle.Render("Interest earned  "))
	content.WriteString(styles.PriceUpStyle.Render(styles.FormatMoney(s.Interest.Earned)))
	content.WriteString("\n")
	content.WriteString(styles.LabelStyle.Render("Interest paid    "))
	content.WriteString(styles.PriceDownStyle.Render(styles.FormatMoney(s.Interest.Paid)))
	content.WriteString("\n")

	if d.err != nil {
		content.WriteString("\n")
		content.WriteString(styles.WarningStyle.Render("Summary incomplete: " + d.err.Error()))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	if s.Final {
		content.WriteString(styles.MutedStyle.Render("q to quit"))
	} else {
		content.WriteString(styles.MutedStyle.Render("enter or n to start the next day"))
	}

	w := d.width
	if w < 40 {
		w = 40
	}
	return styles.DialogStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, content.String()))
}
