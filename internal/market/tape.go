package market

import "github.com/shopspring/decimal"

// Tape is a ring buffer of the most recent prices across trading days.
type Tape struct {
	buf   []decimal.Decimal
	size  int
	start int
	count int
}

// NewTape creates a Tape holding at most capacity prices.
func NewTape(capacity int) *Tape {
	if capacity <= 0 {
		capacity = 1
	}
	return &Tape{
		buf:  make([]decimal.Decimal, capacity),
		size: capacity,
	}
}

// Append adds a price, overwriting the oldest when full.
func (t *Tape) Append(p decimal.Decimal) {
	if t.count < t.size {
		t.buf[(t.start+t.count)%t.size] = p
		t.count++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % t.size
}

// Last returns a copy of the last n prices, oldest first.
func (t *Tape) Last(n int) []decimal.Decimal {
	if n <= 0 || t.count == 0 {
		return nil
	}
	if n > t.count {
		n = t.count
	}
	out := make([]decimal.Decimal, n)
	first := (t.start + (t.count - n)) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(first+i)%t.size]
	}
	return out
}

// Count returns the number of prices held.
func (t *Tape) Count() int {
	return t.count
}
