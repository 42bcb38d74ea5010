package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order, carried on the wire as the sign of the quantity.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// SideOf returns the side implied by a signed quantity.
func SideOf(quantity int64) Side {
	if quantity < 0 {
		return SideSell
	}
	return SideBuy
}

// Status is the client-side lifecycle of an order: Pending -> Confirmed -> Hidden.
type Status uint8

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusHidden
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusHidden:
		return "HIDDEN"
	default:
		return "UNKNOWN"
	}
}

// Next returns the status one promotion step later. Hidden is terminal.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusConfirmed
	default:
		return StatusHidden
	}
}

// ID is the server-assigned order identifier.
type ID string

// Order is a placed order as seen by the client.
type Order struct {
	ID          ID
	ClientID    string // idempotency key generated at submit time
	Quantity    int64  // signed: positive buys, negative sells
	Price       decimal.Decimal
	Status      Status
	DayPlacedOn int
	Timestamp   time.Time
}

// Side returns the order side derived from the quantity sign.
func (o Order) Side() Side { return SideOf(o.Quantity) }

// Notional returns quantity * price (negative for sells).
func (o Order) Notional() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

// Title is the short human description used in order lists and summaries.
func (o Order) Title() string {
	qty := o.Quantity
	verb := "Buy "
	if qty < 0 {
		verb = "Sell "
		qty = -qty
	}
	return verb + decimal.NewFromInt(qty).String() + " @ $" + o.Price.StringFixed(2)
}
