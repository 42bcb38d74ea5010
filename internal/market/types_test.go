package market

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompareToStart(t *testing.T) {
	tests := []struct {
		price, start string
		want         StockStatus
	}{
		{"10.01", "10", StatusAbove},
		{"9.99", "10", StatusBelow},
		{"10.00", "10", StatusNeutral},
	}
	for _, tt := range tests {
		if got := CompareToStart(d(tt.price), d(tt.start)); got != tt.want {
			t.Errorf("CompareToStart(%s, %s) = %s, want %s", tt.price, tt.start, got, tt.want)
		}
	}
}

func TestBoundsPadded(t *testing.T) {
	var b Bounds
	if lo, hi := b.Padded(); !lo.IsZero() || !hi.IsZero() {
		t.Errorf("empty bounds padded to %s..%s", lo, hi)
	}
	for _, p := range []string{"50", "40", "60.5", "45"} {
		b.Observe(d(p))
	}
	lo, hi := b.Padded()
	if !lo.Equal(d("36")) || !hi.Equal(d("66.55")) {
		t.Errorf("padded = %s..%s, want 36..66.55", lo, hi)
	}
}

func TestTapeKeepsNewest(t *testing.T) {
	tape := NewTape(3)
	for _, p := range []string{"1", "2", "3", "4", "5"} {
		tape.Append(d(p))
	}
	if tape.Count() != 3 {
		t.Fatalf("count = %d, want 3", tape.Count())
	}
	got := tape.Last(10)
	want := []string{"3", "4", "5"}
	for i := range want {
		if !got[i].Equal(d(want[i])) {
			t.Fatalf("last = %v, want %v", got, want)
		}
	}
	if last := tape.Last(1); !last[0].Equal(d("5")) {
		t.Errorf("last(1) = %v", last)
	}
	if tape.Last(0) != nil {
		t.Error("last(0) should be nil")
	}
}

func TestTickRecordText(t *testing.T) {
	r := TickRecord{Index: -9, Price: d("101.5")}
	if r.PriceText() != "101.50" || r.String() != "-9@101.50" {
		t.Errorf("got %q / %q", r.PriceText(), r.String())
	}
}
