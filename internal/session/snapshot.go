package session

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/broker"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/ledger"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
	"github.com/zappabad/solotrader/internal/scheduler"
)

// Snapshot is an immutable copy of everything the terminal renders.
type Snapshot struct {
	Seq uint64

	GameID  game.ID
	StockID market.StockID
	Loaded  bool
	// Invalid is set when the game failed to load; nothing will tick.
	Invalid error

	Settings  game.Settings
	Scheduler scheduler.State
	Remaining time.Duration
	Phase     ledger.Phase

	Day        int
	Tick       int
	Price      decimal.Decimal
	HasPrice   bool
	StartPrice decimal.Decimal
	Change     decimal.Decimal
	Status     market.StockStatus
	Bounds     market.Bounds
	Records    []market.TickRecord
	Tape       []decimal.Decimal

	Cash  decimal.Decimal
	Owned int64

	Broker broker.State
	Orders []orders.Order

	Summary      *game.DaySummary
	SummaryError error

	MissedTicks    int
	FailedOrders   int
	RemovedPending int
	// Rejection is the reason the last start/stop was refused, if it was.
	Rejection error
}

// GameOver reports whether the final day has been summarized.
func (s Snapshot) GameOver() bool { return s.Phase == ledger.PhaseGameOver }

// NetWorth is cash plus the holding valued at the current price.
func (s Snapshot) NetWorth() decimal.Decimal {
	if !s.HasPrice {
		return s.Cash
	}
	return s.Cash.Add(s.Price.Mul(decimal.NewFromInt(s.Owned)))
}

// Running reports whether ticks are being generated.
func (s Snapshot) Running() bool { return s.Scheduler == scheduler.StateRunning }

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Seq:            s.seq,
		GameID:         s.gameID,
		StockID:        s.stockID,
		Loaded:         s.loaded,
		Invalid:        s.invalid,
		Settings:       s.settings,
		Cash:           s.cash,
		Owned:          s.owned,
		Broker:         s.broker,
		Orders:         s.orders.Visible(),
		Tape:           s.tape.Last(s.cfg.TapeSize),
		SummaryError:   s.summaryErr,
		MissedTicks:    s.missedTicks,
		FailedOrders:   s.failedOrders,
		RemovedPending: s.removedPending,
		Rejection:      s.lastRejection,
	}
	if s.summary != nil {
		sum := *s.summary
		sum.Orders = append([]orders.Order(nil), s.summary.Orders...)
		snap.Summary = &sum
	}
	if s.sched != nil {
		snap.Scheduler = s.sched.State()
		snap.Remaining = s.sched.Remaining()
	}
	if s.ledger != nil {
		l := s.ledger
		snap.Phase = l.Phase()
		snap.Day = l.Day()
		snap.Tick = l.Generated()
		snap.Price, snap.HasPrice = l.Price()
		snap.StartPrice = l.StartPrice()
		snap.Change = l.Change()
		snap.Status = l.Status()
		snap.Bounds = l.Bounds()
		snap.Records = l.Records()
	}
	return snap
}
