package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/market"
)

func settings(ticksPerDay, days int) game.Settings {
	return game.Settings{
		GameType:    game.TypeSolo,
		TicksPerDay: ticksPerDay,
		TradingDays: days,
		TickPeriod:  time.Second,
	}
}

// series returns n prices 100, 101, 102, ...
func series(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.NewFromInt(int64(100 + i))
	}
	return out
}

func TestColdStartLoad(t *testing.T) {
	l := New(settings(20, 3))
	complete, err := l.Load(series(10))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if complete {
		t.Error("cold start reported as a complete day")
	}
	if l.Day() != 1 || l.Generated() != 0 {
		t.Errorf("day=%d generated=%d, want 1 and 0", l.Day(), l.Generated())
	}
	recs := l.Records()
	if recs[0].Index != -9 || recs[9].Index != 0 {
		t.Errorf("seed indices %d..%d, want -9..0", recs[0].Index, recs[9].Index)
	}
	if !l.StartPrice().Equal(decimal.NewFromInt(109)) {
		t.Errorf("start price = %s, want 109", l.StartPrice())
	}
	if l.Status() != market.StatusNeutral {
		t.Errorf("status = %s, want NEUTRAL", l.Status())
	}
}

func TestLoadShortHistory(t *testing.T) {
	l := New(settings(20, 3))
	if _, err := l.Load(series(4)); !errors.Is(err, ErrShortHistory) {
		t.Fatalf("expected ErrShortHistory, got %v", err)
	}
}

func TestLoadMidGame(t *testing.T) {
	tests := []struct {
		name      string
		points    int
		day       int
		generated int
		complete  bool
	}{
		{"mid first day", 15, 1, 5, false},
		{"first day complete", 30, 1, 20, true},
		{"first tick of day two", 31, 2, 1, false},
		{"second day complete", 50, 2, 20, true},
		{"mid third day", 57, 3, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(settings(20, 3))
			complete, err := l.Load(series(tt.points))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if complete != tt.complete {
				t.Errorf("complete = %v, want %v", complete, tt.complete)
			}
			if l.Day() != tt.day {
				t.Errorf("day = %d, want %d", l.Day(), tt.day)
			}
			if l.Generated() != tt.generated {
				t.Errorf("generated = %d, want %d", l.Generated(), tt.generated)
			}
			recs := l.Records()
			if recs[0].Index != -9 {
				t.Errorf("first index = %d, want -9", recs[0].Index)
			}
			if got := recs[len(recs)-1].Index; got != tt.generated {
				t.Errorf("last index = %d, want %d", got, tt.generated)
			}
		})
	}
}

func TestLoadedCompleteDayDoesNotEndAgain(t *testing.T) {
	l := New(settings(20, 3))
	if complete, _ := l.Load(series(30)); !complete {
		t.Fatal("expected complete day")
	}
	if _, err := l.Append(decimal.NewFromInt(1)); !errors.Is(err, ErrDayComplete) {
		t.Errorf("expected ErrDayComplete, got %v", err)
	}
}

func TestDayEndFiresExactlyOnce(t *testing.T) {
	l := New(settings(20, 3))
	if _, err := l.Load(series(10)); err != nil {
		t.Fatal(err)
	}

	ends := 0
	for i := 1; i <= 25; i++ {
		ended, err := l.Append(decimal.NewFromInt(int64(200 + i)))
		if ended {
			ends++
			if i != 20 {
				t.Errorf("day ended on tick %d", i)
			}
		}
		if i > 20 && !errors.Is(err, ErrDayComplete) {
			t.Errorf("tick %d after completion: expected ErrDayComplete, got %v", i, err)
		}
	}
	if ends != 1 {
		t.Fatalf("day-end fired %d times, want 1", ends)
	}
	if l.Generated() != 20 {
		t.Errorf("generated = %d, want 20", l.Generated())
	}
}

func TestStatusAgainstStartPrice(t *testing.T) {
	l := New(settings(20, 3))
	_, _ = l.Load(series(10)) // start price 109

	steps := []struct {
		price  int64
		status market.StockStatus
		change int64
	}{
		{112, market.StatusAbove, 3},
		{105, market.StatusBelow, -4},
		{109, market.StatusNeutral, 0},
	}
	for _, st := range steps {
		_, _ = l.Append(decimal.NewFromInt(st.price))
		if l.Status() != st.status {
			t.Errorf("price %d: status = %s, want %s", st.price, l.Status(), st.status)
		}
		if !l.Change().Equal(decimal.NewFromInt(st.change)) {
			t.Errorf("price %d: change = %s, want %d", st.price, l.Change(), st.change)
		}
	}

	b := l.Bounds()
	if !b.Min.Equal(decimal.NewFromInt(100)) || !b.Max.Equal(decimal.NewFromInt(112)) {
		t.Errorf("bounds = [%s, %s], want [100, 112]", b.Min, b.Max)
	}
}

func runDay(t *testing.T, l *Ledger, base int64) {
	t.Helper()
	for i := 1; i <= l.TicksPerDay(); i++ {
		if _, err := l.Append(decimal.NewFromInt(base + int64(i))); err != nil {
			t.Fatalf("append tick %d: %v", i, err)
		}
	}
}

func TestDayRollCarriesLastTenRecords(t *testing.T) {
	l := New(settings(20, 3))
	_, _ = l.Load(series(10))
	runDay(t, l, 500) // prices 501..520

	before := l.Records()
	lastTen := before[len(before)-10:]

	if err := l.BeginGate(); err != nil {
		t.Fatal(err)
	}
	if p, err := l.SummaryReady(); err != nil || p != PhaseAwaitContinue {
		t.Fatalf("summary ready: phase=%s err=%v", p, err)
	}
	if err := l.Continue(); err != nil {
		t.Fatal(err)
	}
	if err := l.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	after := l.Records()
	if len(after) != 10 {
		t.Fatalf("seed length = %d, want 10", len(after))
	}
	for i, r := range after {
		if r.Index != i-9 {
			t.Errorf("seed %d index = %d, want %d", i, r.Index, i-9)
		}
		if !r.Price.Equal(lastTen[i].Price) {
			t.Errorf("seed %d price = %s, want %s", i, r.Price, lastTen[i].Price)
		}
	}
	if l.Day() != 2 || l.Generated() != 0 {
		t.Errorf("day=%d generated=%d after advance", l.Day(), l.Generated())
	}
	if !l.StartPrice().Equal(decimal.NewFromInt(520)) {
		t.Errorf("start price = %s, want 520", l.StartPrice())
	}
	if l.Status() != market.StatusNeutral || l.Phase() != PhaseTrading {
		t.Errorf("status=%s phase=%s after advance", l.Status(), l.Phase())
	}
}

func TestFinalDayEndsGame(t *testing.T) {
	l := New(settings(5, 1))
	_, _ = l.Load(series(10))
	runDay(t, l, 0)

	_ = l.BeginGate()
	p, err := l.SummaryReady()
	if err != nil {
		t.Fatal(err)
	}
	if p != PhaseGameOver {
		t.Fatalf("phase = %s, want GAME_OVER", p)
	}
	if err := l.Continue(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("continue after game over: %v", err)
	}
}

func TestPhaseOrderEnforced(t *testing.T) {
	l := New(settings(5, 2))
	_, _ = l.Load(series(10))

	if err := l.BeginGate(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("gate before day end: %v", err)
	}
	if err := l.Advance(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("advance while trading: %v", err)
	}
	if !PhaseGate.Gated() || PhaseTrading.Gated() {
		t.Error("gate flags are wrong")
	}
}
