package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/solotrader/internal/orders"
	"github.com/zappabad/solotrader/tui/styles"
)

// OrdersPanel lists recent orders, newest first.
type OrdersPanel struct {
	orders []orders.Order
	width  int
	height int
}

// NewOrdersPanel creates a new orders panel.
func NewOrdersPanel() *OrdersPanel {
	return &OrdersPanel{}
}

// SetOrders sets the orders to list.
func (p *OrdersPanel) SetOrders(list []orders.Order) {
	p.orders = list
}

// SetSize sets the panel dimensions.
func (p *OrdersPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *OrdersPanel) View() string {
	var content strings.Builder

	if len(p.orders) == 0 {
		content.WriteString(styles.MutedStyle.Render("No recent orders"))
	} else {
		visible := p.height - 4
		if visible < 1 {
			visible = 1
		}
		shown := p.orders
		if len(shown) > visible {
			shown = shown[:visible]
		}
		for i, o := range shown {
			content.WriteString(renderOrder(o))
			if i < len(shown)-1 {
				content.WriteString("\n")
			}
		}
	}

	title := styles.RenderTitle("🧾 Recent Orders", false)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return styles.PanelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func renderOrder(o orders.Order) string {
	sideStyle := styles.BuyStyle
	if o.Side() == orders.SideSell {
		sideStyle = styles.SellStyle
	}
	status := styles.MutedStyle.Render(fmt.Sprintf("%-9s", o.Status))
	if o.Status == orders.StatusPending {
		status = styles.WarningStyle.Render(fmt.Sprintf("%-9s", o.Status))
	}
	return status + " " + sideStyle.Render(o.Title())
}
