package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/ledger"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
	"github.com/zappabad/solotrader/internal/scheduler"
	"github.com/zappabad/solotrader/internal/session"
)

type fakeEngine struct {
	keys  []string
	snaps chan session.Snapshot
}

func (f *fakeEngine) Key(k string) error {
	f.keys = append(f.keys, k)
	return nil
}

func (f *fakeEngine) Snapshots() <-chan session.Snapshot { return f.snaps }

func loadedSnapshot() session.Snapshot {
	price := decimal.RequireFromString("12.35")
	var bounds market.Bounds
	bounds.Observe(decimal.NewFromInt(12))
	bounds.Observe(price)
	return session.Snapshot{
		Loaded:     true,
		StockID:    "SOLO",
		Settings:   game.Settings{TicksPerDay: 20, TradingDays: 5},
		Scheduler:  scheduler.StateRunning,
		Phase:      ledger.PhaseTrading,
		Day:        1,
		Tick:       1,
		Price:      price,
		HasPrice:   true,
		StartPrice: decimal.NewFromInt(12),
		Change:     decimal.RequireFromString("0.35"),
		Status:     market.StatusAbove,
		Bounds:     bounds,
		Records: []market.TickRecord{
			{Index: 0, Price: decimal.NewFromInt(12)},
			{Index: 1, Price: price},
		},
		Cash:  decimal.NewFromInt(10000),
		Owned: 10,
		Orders: []orders.Order{
			{Quantity: -120, Price: price, Status: orders.StatusPending},
		},
	}
}

func TestKeysForwardedToEngine(t *testing.T) {
	eng := &fakeEngine{snaps: make(chan session.Snapshot, 1)}
	m := NewModel(eng)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'7'}})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	want := []string{" ", "7", "enter"}
	if strings.Join(eng.keys, "|") != strings.Join(want, "|") {
		t.Errorf("keys = %q, want %q", eng.keys, want)
	}
}

func TestQuitNotForwarded(t *testing.T) {
	eng := &fakeEngine{snaps: make(chan session.Snapshot, 1)}
	m := NewModel(eng)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if len(eng.keys) != 0 {
		t.Errorf("quit key forwarded: %q", eng.keys)
	}
}

func TestViewRendersSnapshot(t *testing.T) {
	eng := &fakeEngine{snaps: make(chan session.Snapshot, 1)}
	m := NewModel(eng)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(snapshotMsg(loadedSnapshot()))

	view := m.View()
	for _, want := range []string{"$12.35", "Sell 120 @ $12.35", "RUNNING", "$10123.50"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryDialogShown(t *testing.T) {
	eng := &fakeEngine{snaps: make(chan session.Snapshot, 1)}
	m := NewModel(eng)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	snap := loadedSnapshot()
	snap.Phase = ledger.PhaseSummary
	snap.Summary = &game.DaySummary{Day: 1, Orders: snap.Orders}
	m.Update(snapshotMsg(snap))

	if view := m.View(); !strings.Contains(view, "Day 1 complete") {
		t.Error("summary dialog not rendered")
	}
}
