package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/broker"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/ledger"
	"github.com/zappabad/solotrader/internal/orders"
	"github.com/zappabad/solotrader/internal/remote"
	"github.com/zappabad/solotrader/internal/scheduler"
)

// KeyToggle starts and stops the clock.
const KeyToggle = " "

// resyncResult carries a fresh copy of the game after the service reported
// that client and server disagree on the tick count.
type resyncResult struct {
	state game.State
	err   error
}

func (resyncResult) isEvent() {}

func (s *Session) handleLoad(ev loadCmd) {
	if s.gameID != "" {
		s.log.Warn("load ignored, game already bound", "game", s.gameID, "requested", ev.id)
		return
	}
	s.gameID = ev.id
	s.log.Info("loading game", "game", ev.id)

	s.spawn(func(ctx context.Context) {
		st, err := s.svc.FetchGameState(ctx, ev.id)
		_ = s.post(loadResult{id: ev.id, state: st, err: err})
	})
}

func (s *Session) handleLoaded(ev loadResult) {
	if ev.id != s.gameID || s.loaded || s.invalid != nil {
		return
	}
	if err := s.apply(ev); err != nil {
		s.invalidate(err)
		return
	}

	id := s.gameID
	s.spawn(func(ctx context.Context) {
		n, err := s.svc.RemovePendingOrders(ctx, id)
		_ = s.post(pendingRemoved{id: id, removed: n, err: err})
	})

	if s.ledger.Complete() {
		s.log.Info("loaded a completed day", "day", s.ledger.Day())
		s.beginDayEnd()
	}
}

// apply validates the load payload and seeds every component from it.
func (s *Session) apply(ev loadResult) error {
	if ev.err != nil {
		return ev.err
	}
	st := ev.state
	if st.Settings.GameType != game.TypeSolo {
		return fmt.Errorf("%w: got %q", game.ErrGameTypeMismatch, st.Settings.GameType)
	}
	if err := st.Settings.Validate(); err != nil {
		return err
	}
	player, ok := st.HumanPlayer()
	if !ok {
		return game.ErrNoPlayer
	}
	l := ledger.New(st.Settings)
	if _, err := l.Load(st.PriceHistory); err != nil {
		return err
	}

	s.settings = st.Settings
	s.stockID = st.StockID
	s.playerID = player.ID
	s.cash = player.Cash
	s.owned = player.Owned[st.StockID]
	s.ledger = l
	s.orders.Load(st.FulfilledOrders)
	for _, p := range st.PriceHistory {
		s.tape.Append(p)
	}

	s.sched = scheduler.New(scheduler.Config{
		Period:       st.Settings.TickPeriod,
		MinimumDelay: s.cfg.MinimumDelay,
	}, s.clk, schedPorts{s: s}, s.log)
	s.sched.Bind(string(s.gameID))
	s.loaded = true

	s.log.Info("game loaded",
		"game", s.gameID,
		"day", l.Day(),
		"tick", l.Generated(),
		"ticks_per_day", st.Settings.TicksPerDay,
		"trading_days", st.Settings.TradingDays,
		"period", st.Settings.TickPeriod)
	return nil
}

// invalidate marks the game unplayable. The engine stays disabled for good.
func (s *Session) invalidate(err error) {
	s.invalid = fmt.Errorf("%w: %w", game.ErrInvalidGame, err)
	if s.sched != nil {
		s.sched.Disable()
	}
	s.log.Error("game failed to load", "game", s.gameID, "err", err)
}

func (s *Session) handlePendingRemoved(ev pendingRemoved) {
	if ev.err != nil {
		s.log.Warn("removing pending orders failed", "game", ev.id, "err", ev.err)
		return
	}
	s.removedPending = ev.removed
	if ev.removed == 0 {
		return
	}
	s.log.Info("removed orders left pending by an earlier session", "count", ev.removed)

	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
	}
	s.bannerSeq++
	seq := s.bannerSeq
	s.bannerTimer = s.clk.AfterFunc(s.cfg.BannerDuration, func() {
		_ = s.post(bannerExpired{seq: seq})
	})
}

// handleKey routes a key by ledger phase and scheduler state.
func (s *Session) handleKey(k string) {
	if !s.loaded || s.invalid != nil {
		return
	}

	switch s.ledger.Phase() {
	case ledger.PhaseAwaitContinue:
		// the continue trigger consumes the key
		if err := s.ledger.Continue(); err != nil {
			s.log.Warn("continue", "err", err)
		}
		return
	case ledger.PhaseSummary:
		if k == "enter" || k == "n" {
			s.advanceDay()
		}
		return
	}

	if k == KeyToggle {
		s.toggle()
		return
	}
	if s.ledger.Phase() == ledger.PhaseTrading && s.sched.State() == scheduler.StateRunning {
		s.brokerKey(k)
	}
}

func (s *Session) toggle() {
	err := s.sched.Toggle(s.clk.Now())
	s.lastRejection = err
	if err != nil {
		s.log.Debug("toggle rejected", "state", s.sched.State(), "err", err)
	}
}

func (s *Session) handleResumeAck(ev resumeAck) {
	if ev.err != nil {
		s.log.Warn("resume notification failed", "game", s.gameID, "err", ev.err)
	}
	if s.sched != nil {
		s.sched.ResumeAcknowledged(ev.gen, s.clk.Now())
	}
}

func (s *Session) brokerKey(k string) {
	next, eff := s.machine.Reduce(s.broker, k)
	s.broker = next

	switch eff.Kind {
	case broker.EffectPulse:
		s.startPulse()
	case broker.EffectSubmit:
		s.startPulse()
		s.submitOrder(eff.Quantity)
	}
}

func (s *Session) startPulse() {
	if s.pulseTimer != nil {
		s.pulseTimer.Stop()
	}
	s.pulseSeq++
	seq := s.pulseSeq
	s.pulseTimer = s.clk.AfterFunc(s.cfg.PulseDuration, func() {
		_ = s.post(pulseEvent{seq: seq})
	})
}

// submitOrder places an order at the price on screen. The buffer has already
// been cleared; a failure is logged and nothing is rolled back.
func (s *Session) submitOrder(qty int64) {
	price, ok := s.ledger.Price()
	if !ok {
		return
	}
	req := remote.OrderRequest{
		ClientID: uuid.NewString(),
		PlayerID: s.playerID,
		Quantity: qty,
		Price:    price,
		Day:      s.ledger.Day(),
	}
	id := s.gameID
	s.log.Debug("submitting order", "client_id", req.ClientID, "quantity", qty, "price", price)

	s.spawn(func(ctx context.Context) {
		o, err := s.svc.SubmitOrder(ctx, id, req)
		_ = s.post(orderResult{req: req, order: o, err: err})
	})
}

func (s *Session) handleOrder(ev orderResult) {
	if ev.err != nil {
		s.failedOrders++
		s.log.Warn("order failed", "client_id", ev.req.ClientID, "quantity", ev.req.Quantity, "err", ev.err)
		return
	}

	o := ev.order
	o.Status = orders.StatusPending
	if o.ClientID == "" {
		o.ClientID = ev.req.ClientID
	}
	if o.Quantity == 0 {
		o.Quantity = ev.req.Quantity
	}
	if o.Price.IsZero() {
		o.Price = ev.req.Price
	}
	if o.DayPlacedOn == 0 {
		o.DayPlacedOn = ev.req.Day
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = s.clk.Now()
	}
	s.orders.Unshift(o)

	// quantity is signed: a sell adds its proceeds to cash, the same way the
	// service books it. The next price update carries the service's figure.
	s.cash = s.cash.Sub(ev.req.Price.Mul(decimal.NewFromInt(ev.req.Quantity)))
	s.owned += ev.req.Quantity
}

// fetchPrice requests tick seq of running segment epoch.
func (s *Session) fetchPrice(epoch, seq uint64) {
	id := s.gameID
	day := s.ledger.Day()
	policy := s.cfg.PriceRetry.Capped(s.settings.TickPeriod / 4)

	s.spawn(func(ctx context.Context) {
		var up remote.PriceUpdate
		attempts, err := remote.Retry(ctx, policy, func(ctx context.Context) error {
			var err error
			up, err = s.svc.FetchNextPrice(ctx, id, day)
			return err
		})
		_ = s.post(priceResult{epoch: epoch, seq: seq, day: day, update: up, attempts: attempts, err: err})
	})
}

func (s *Session) handlePrice(ev priceResult) {
	if s.ledger == nil || s.sched == nil {
		return
	}
	if ev.epoch != s.sched.Epoch() || ev.day != s.ledger.Day() || s.ledger.Phase() != ledger.PhaseTrading {
		s.log.Debug("discarding stale price", "epoch", ev.epoch, "current_epoch", s.sched.Epoch(), "day", ev.day, "phase", s.ledger.Phase())
		return
	}
	if ev.epoch == s.appliedEpoch && ev.seq <= s.appliedSeq {
		// a newer tick is already on screen
		s.log.Warn("price arrived out of order", "seq", ev.seq, "applied", s.appliedSeq, "err", ev.err)
		if ev.err == nil {
			s.resync()
		}
		return
	}
	if ev.err != nil {
		s.missedTicks++
		s.log.Warn("tick skipped", "day", ev.day, "attempts", ev.attempts, "missed", s.missedTicks, "err", ev.err)
		var se *remote.StatusError
		if errors.As(ev.err, &se) && se.Code == http.StatusConflict {
			s.resync()
		}
		return
	}

	ended, err := s.ledger.Append(ev.update.Price)
	if err != nil {
		s.log.Warn("price not appended", "err", err)
		return
	}
	s.appliedEpoch, s.appliedSeq = ev.epoch, ev.seq
	s.tape.Append(ev.update.Price)
	s.cash = ev.update.Cash
	s.orders.Promote()

	if ended {
		s.beginDayEnd()
	}
}

// resync reloads the price history after the service rejected a tick as out
// of sequence.
func (s *Session) resync() {
	id := s.gameID
	s.spawn(func(ctx context.Context) {
		st, err := s.svc.FetchGameState(ctx, id)
		_ = s.post(resyncResult{state: st, err: err})
	})
}

func (s *Session) handleResync(ev resyncResult) {
	if ev.err != nil {
		s.log.Warn("resync failed", "err", ev.err)
		return
	}
	if s.ledger.Phase() != ledger.PhaseTrading {
		return
	}
	l := ledger.New(s.settings)
	complete, err := l.Load(ev.state.PriceHistory)
	if err != nil {
		s.log.Warn("resync history rejected", "err", err)
		return
	}
	s.log.Info("resynced", "day", l.Day(), "tick", l.Generated(), "was_day", s.ledger.Day(), "was_tick", s.ledger.Generated())
	s.ledger = l
	if p, ok := ev.state.HumanPlayer(); ok {
		s.cash = p.Cash
		s.owned = p.Owned[s.stockID]
	}
	if complete {
		s.beginDayEnd()
	}
}

// beginDayEnd stops the clock, closes the gate and fetches the day summary.
func (s *Session) beginDayEnd() {
	if s.sched.State() == scheduler.StateRunning {
		_ = s.sched.Stop(s.clk.Now())
	}
	s.sched.SetGate(true)
	if err := s.ledger.BeginGate(); err != nil {
		s.log.Error("day end", "err", err)
		return
	}

	id, stock, player, day := s.gameID, s.stockID, s.playerID, s.ledger.Day()
	s.log.Info("trading day complete", "day", day)

	s.spawn(func(ctx context.Context) {
		dayOrders, oerr := s.svc.FetchDayOrders(ctx, id, stock, day)
		interest, ierr := s.svc.FetchInterest(ctx, id, player, day)
		_ = s.post(summaryResult{day: day, orders: dayOrders, interest: interest, err: errors.Join(oerr, ierr)})
	})
}

func (s *Session) handleSummary(ev summaryResult) {
	if ev.day != s.ledger.Day() || s.ledger.Phase() != ledger.PhaseGate {
		return
	}
	s.summaryErr = ev.err
	dayOrders := ev.orders
	if ev.err != nil {
		s.log.Warn("day summary incomplete", "day", ev.day, "err", ev.err)
		if dayOrders == nil {
			dayOrders = s.orders.Day(ev.day)
		}
	}

	s.summary = &game.DaySummary{
		Day:      ev.day,
		Orders:   dayOrders,
		Interest: ev.interest,
		Final:    s.ledger.IsFinalDay(),
	}
	phase, err := s.ledger.SummaryReady()
	if err != nil {
		s.log.Error("summary", "err", err)
		return
	}
	if phase == ledger.PhaseGameOver {
		s.log.Info("game over", "game", s.gameID, "days", s.ledger.TradingDays())
	}
}

// advanceDay rolls the ledger and resets per-day state.
func (s *Session) advanceDay() {
	if err := s.ledger.Advance(); err != nil {
		s.log.Warn("advance day", "err", err)
		return
	}
	s.broker = broker.Initial()
	s.orders.Promote()
	s.sched.SetGate(false)
	s.summary = nil
	s.summaryErr = nil
	s.log.Info("trading day started", "day", s.ledger.Day())
}
