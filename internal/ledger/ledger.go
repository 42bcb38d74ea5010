// Package ledger keeps the day-relative price series and decides when a
// trading day ends.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/market"
)

// Ledger is owned by the session loop and is not safe for concurrent use.
type Ledger struct {
	ticksPerDay int
	tradingDays int

	day       int
	generated int
	records   []market.TickRecord
	start     decimal.Decimal
	status    market.StockStatus
	change    decimal.Decimal
	bounds    market.Bounds

	phase Phase
	ended bool // day-end already reported for the current day
}

// New creates an empty ledger for settings. Call Load before appending.
func New(settings game.Settings) *Ledger {
	return &Ledger{
		ticksPerDay: settings.TicksPerDay,
		tradingDays: settings.TradingDays,
		day:         1,
	}
}

// Load rebuilds the current day from the full price history of a game: the
// cold-start seed window followed by every tick generated so far.
// It reports whether the loaded day is already complete, in which case the
// caller must run the end-of-day sequence straight away.
func (l *Ledger) Load(history []decimal.Decimal) (complete bool, err error) {
	if len(history) < market.SeedWindow {
		return false, fmt.Errorf("%w: %d points", ErrShortHistory, len(history))
	}
	n := l.ticksPerDay

	day := (len(history)-market.SeedWindow-1)/n + 1
	if day < 1 {
		day = 1
	}
	total := len(history) - market.SeedWindow
	kept := history[(day-1)*n:]

	l.day = day
	l.generated = len(kept) - market.SeedWindow
	l.records = make([]market.TickRecord, len(kept))
	l.bounds = market.Bounds{}
	for i, p := range kept {
		l.records[i] = market.TickRecord{Index: i - (market.SeedWindow - 1), Price: p}
		l.bounds.Observe(p)
	}
	l.start = kept[market.SeedWindow-1]
	l.refreshStatus()

	l.phase = PhaseTrading
	l.ended = false
	if total > 0 && total%n == 0 {
		l.ended = true
		return true, nil
	}
	return false, nil
}

// Append records the next generated price. It reports true exactly once per
// day, on the tick that completes it.
func (l *Ledger) Append(price decimal.Decimal) (dayEnded bool, err error) {
	if l.generated >= l.ticksPerDay {
		return false, fmt.Errorf("%w: day %d", ErrDayComplete, l.day)
	}
	l.generated++
	l.records = append(l.records, market.TickRecord{Index: l.generated, Price: price})
	l.bounds.Observe(price)
	l.refreshStatus()

	if l.generated == l.ticksPerDay && !l.ended {
		l.ended = true
		return true, nil
	}
	return false, nil
}

// BeginGate moves a completed day into the gate while its summary is fetched.
func (l *Ledger) BeginGate() error {
	if l.phase != PhaseTrading || !l.ended {
		return fmt.Errorf("%w: begin gate in %s", ErrWrongPhase, l.phase)
	}
	l.phase = PhaseGate
	return nil
}

// SummaryReady is called when the day summary has arrived. On the final day the
// game is over; otherwise the continue trigger is armed.
func (l *Ledger) SummaryReady() (Phase, error) {
	if l.phase != PhaseGate {
		return l.phase, fmt.Errorf("%w: summary ready in %s", ErrWrongPhase, l.phase)
	}
	if l.IsFinalDay() {
		l.phase = PhaseGameOver
	} else {
		l.phase = PhaseAwaitContinue
	}
	return l.phase, nil
}

// Continue consumes the continue trigger and opens the summary.
func (l *Ledger) Continue() error {
	if l.phase != PhaseAwaitContinue {
		return fmt.Errorf("%w: continue in %s", ErrWrongPhase, l.phase)
	}
	l.phase = PhaseSummary
	return nil
}

// Advance rolls to the next trading day. The last ten records of the finished
// day become the seed points of the new one, re-indexed to -9..0.
func (l *Ledger) Advance() error {
	if l.phase != PhaseSummary {
		return fmt.Errorf("%w: advance in %s", ErrWrongPhase, l.phase)
	}
	if l.IsFinalDay() {
		return fmt.Errorf("%w: day %d of %d", ErrFinalDay, l.day, l.tradingDays)
	}

	seed := make([]market.TickRecord, market.SeedWindow)
	copy(seed, l.records[len(l.records)-market.SeedWindow:])
	for i := range seed {
		seed[i].Index = i - (market.SeedWindow - 1)
	}

	l.records = seed
	l.day++
	l.generated = 0
	l.start = seed[market.SeedWindow-1].Price
	l.status = market.StatusNeutral
	l.change = decimal.Zero
	l.ended = false
	l.phase = PhaseTrading
	return nil
}

// IsFinalDay reports whether the current day is the last configured trading day.
func (l *Ledger) IsFinalDay() bool {
	return l.day >= l.tradingDays
}

func (l *Ledger) refreshStatus() {
	last := l.records[len(l.records)-1].Price
	l.status = market.CompareToStart(last, l.start)
	l.change = last.Sub(l.start)
}

func (l *Ledger) Day() int                    { return l.day }
func (l *Ledger) Generated() int              { return l.generated }
func (l *Ledger) TicksPerDay() int            { return l.ticksPerDay }
func (l *Ledger) TradingDays() int            { return l.tradingDays }
func (l *Ledger) StartPrice() decimal.Decimal { return l.start }
func (l *Ledger) Status() market.StockStatus  { return l.status }
func (l *Ledger) Change() decimal.Decimal     { return l.change }
func (l *Ledger) Bounds() market.Bounds       { return l.bounds }
func (l *Ledger) Phase() Phase                { return l.phase }
func (l *Ledger) Complete() bool              { return l.ended }

// Price returns the newest price, or false before Load.
func (l *Ledger) Price() (decimal.Decimal, bool) {
	if len(l.records) == 0 {
		return decimal.Zero, false
	}
	return l.records[len(l.records)-1].Price, true
}

// Records returns a copy of the current day's records, seed points first.
func (l *Ledger) Records() []market.TickRecord {
	out := make([]market.TickRecord, len(l.records))
	copy(out, l.records)
	return out
}
