package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/tui/styles"
)

// PriceChartPanel plots the current trading day, seed points included.
type PriceChartPanel struct {
	stock   market.StockID
	day     int
	records []market.TickRecord
	bounds  market.Bounds
	start   decimal.Decimal

	width  int
	height int
}

// NewPriceChartPanel creates an empty chart.
func NewPriceChartPanel() *PriceChartPanel {
	return &PriceChartPanel{}
}

// SetDay replaces the plotted series.
func (p *PriceChartPanel) SetDay(stock market.StockID, day int, records []market.TickRecord, bounds market.Bounds, start decimal.Decimal) {
	p.stock = stock
	p.day = day
	p.records = records
	p.bounds = bounds
	p.start = start
}

// SetSize sets the panel dimensions.
func (p *PriceChartPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *PriceChartPanel) View() string {
	var content strings.Builder

	chartHeight := p.height - 6
	if chartHeight < 5 {
		chartHeight = 5
	}

	if len(p.records) == 0 {
		content.WriteString(styles.MutedStyle.Render("No prices yet..."))
	} else {
		content.WriteString(p.renderChart(p.width-4, chartHeight))
	}

	title := styles.RenderTitle(fmt.Sprintf("📉 %s · day %d", p.stock, p.day), false)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return styles.PanelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *PriceChartPanel) renderChart(width, height int) string {
	// 9 chars for the price axis, 1 for the separator, 2 per point
	points := (width - 10) / 2
	if points < 1 {
		points = 1
	}
	shown := p.records
	if len(shown) > points {
		shown = shown[len(shown)-points:]
	}

	lo, hi := p.bounds.Padded()
	if !hi.GreaterThan(lo) {
		hi = lo.Add(decimal.NewFromInt(1))
	}

	rows := make([]int, len(shown))
	for i, r := range shown {
		rows[i] = priceToRow(r.Price, lo, hi, height)
	}

	var out strings.Builder
	for row := 0; row < height; row++ {
		label := rowToPrice(row, lo, hi, height).StringFixed(2)
		out.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8s │", label)))

		for i, r := range shown {
			if rows[i] != row {
				out.WriteString("  ")
				continue
			}
			out.WriteString(p.pointStyle(r).Render("●"))
			out.WriteString(" ")
		}
		out.WriteString("\n")
	}

	out.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	for range shown {
		out.WriteString(styles.ChartAxisStyle.Render("──"))
	}
	out.WriteString("\n")

	// tick indices every 5 points
	out.WriteString("          ")
	for i, r := range shown {
		if r.Index%5 == 0 || i == len(shown)-1 {
			out.WriteString(styles.ChartLabelStyle.Render(fmt.Sprintf("%-2d", r.Index%100)))
		} else {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func (p *PriceChartPanel) pointStyle(r market.TickRecord) lipgloss.Style {
	if r.Index <= 0 {
		return styles.ChartSeedStyle
	}
	if r.Price.LessThan(p.start) {
		return styles.ChartDownStyle
	}
	return styles.ChartUpStyle
}

func priceToRow(price, lo, hi decimal.Decimal, height int) int {
	ratio, _ := hi.Sub(price).Div(hi.Sub(lo)).Float64()
	y := int(ratio*float64(height-1) + 0.5)
	if y < 0 {
		y = 0
	}
	if y >= height {
		y = height - 1
	}
	return y
}

func rowToPrice(row int, lo, hi decimal.Decimal, height int) decimal.Decimal {
	if height <= 1 {
		return lo
	}
	ratio := decimal.NewFromInt(int64(row)).Div(decimal.NewFromInt(int64(height - 1)))
	return hi.Sub(hi.Sub(lo).Mul(ratio))
}
