package market

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// SeedWindow is the number of prior-day points carried into a new trading day.
const SeedWindow = 10

// StockID identifies the single stock traded in a solo game.
type StockID string

// TickRecord is one price point, indexed relative to the start of its trading day.
// Indices -9..0 are seed points; 1..TicksPerDay are generated during the day.
type TickRecord struct {
	Index int
	Price decimal.Decimal
}

// PriceText returns the price formatted the way it is displayed (two decimals).
func (r TickRecord) PriceText() string {
	return r.Price.StringFixed(2)
}

func (r TickRecord) String() string {
	return strconv.Itoa(r.Index) + "@" + r.PriceText()
}

// StockStatus compares the newest price with the price at the start of the day.
type StockStatus uint8

const (
	StatusNeutral StockStatus = iota
	StatusAbove
	StatusBelow
)

func (s StockStatus) String() string {
	switch s {
	case StatusNeutral:
		return "NEUTRAL"
	case StatusAbove:
		return "ABOVE"
	case StatusBelow:
		return "BELOW"
	default:
		return "UNKNOWN"
	}
}

// CompareToStart derives the status of price relative to start.
func CompareToStart(price, start decimal.Decimal) StockStatus {
	switch price.Cmp(start) {
	case 1:
		return StatusAbove
	case -1:
		return StatusBelow
	default:
		return StatusNeutral
	}
}

// Bounds tracks the lowest and highest prices seen, for axis scaling.
type Bounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
	OK  bool
}

// Observe widens the bounds to include p.
func (b *Bounds) Observe(p decimal.Decimal) {
	if !b.OK {
		b.Min, b.Max, b.OK = p, p, true
		return
	}
	if p.LessThan(b.Min) {
		b.Min = p
	}
	if p.GreaterThan(b.Max) {
		b.Max = p
	}
}

// Padded returns the display range: 90% of the minimum to 110% of the maximum,
// rounded to cents.
func (b Bounds) Padded() (lo, hi decimal.Decimal) {
	if !b.OK {
		return decimal.Zero, decimal.Zero
	}
	lo = b.Min.Mul(decimal.NewFromFloat(0.9)).Round(2)
	hi = b.Max.Mul(decimal.NewFromFloat(1.1)).Round(2)
	return lo, hi
}
