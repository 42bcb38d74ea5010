// Package session runs the tick engine of one solo game on a single event
// loop. Timer fires, key presses and network completions are all events on
// one channel; the loop is the only goroutine that touches engine state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/broker"
	"github.com/zappabad/solotrader/internal/clock"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/ledger"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
	"github.com/zappabad/solotrader/internal/remote"
	"github.com/zappabad/solotrader/internal/scheduler"
)

// ErrClosed is returned when posting to a closed session.
var ErrClosed = errors.New("session closed")

// Deps are the collaborators a Session drives.
type Deps struct {
	Service remote.GameService
	// Clock defaults to the system clock.
	Clock clock.Clock
	// Spawner defaults to one goroutine per network call.
	Spawner Spawner
	Logger  *slog.Logger
}

// Session owns the scheduler, ledger, broker state and order store of one game.
type Session struct {
	cfg     Config
	svc     remote.GameService
	clk     clock.Clock
	spawner Spawner
	log     *slog.Logger

	// loop-owned state
	gameID   game.ID
	stockID  market.StockID
	playerID game.PlayerID
	settings game.Settings
	loaded   bool
	invalid  error

	sched   *scheduler.Scheduler
	ledger  *ledger.Ledger
	machine broker.Machine
	broker  broker.State
	orders  *orders.Store
	tape    *market.Tape

	cash  decimal.Decimal
	owned int64

	summary        *game.DaySummary
	summaryErr     error
	missedTicks    int
	failedOrders   int
	removedPending int
	lastRejection  error

	// newest tick applied, by running segment
	appliedEpoch uint64
	appliedSeq   uint64

	pulseSeq    uint64
	pulseTimer  clock.Timer
	bannerSeq   uint64
	bannerTimer clock.Timer
	seq         uint64

	// plumbing
	ctx    context.Context
	cancel context.CancelFunc

	events    chan event
	snapshots chan Snapshot

	droppedSnapshots atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	running   atomic.Bool
}

// New creates a Session. Nothing happens until Run is called and a game is loaded.
func New(cfg Config, deps Deps) *Session {
	cfg = cfg.withDefaults()
	if deps.Clock == nil {
		deps.Clock = clock.NewReal()
	}
	if deps.Spawner == nil {
		deps.Spawner = &goSpawner{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:       cfg,
		svc:       deps.Service,
		clk:       deps.Clock,
		spawner:   deps.Spawner,
		log:       deps.Logger.With("module", "session"),
		machine:   broker.NewMachine(cfg.MaxDigits),
		broker:    broker.Initial(),
		orders:    orders.NewStore(cfg.OrderHistory),
		tape:      market.NewTape(cfg.TapeSize),
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan event, cfg.EventBuffer),
		snapshots: make(chan Snapshot, cfg.SnapshotBuffer),
		closed:    make(chan struct{}),
	}
	return s
}

// Run processes events until ctx is cancelled or Close is called.
// The snapshot channel is closed when Run returns.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("session already running")
	}
	defer close(s.snapshots)
	defer s.shutdown()

	s.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return nil
		case ev := <-s.events:
			s.dispatch(ev)
			s.publish()
		}
	}
}

// Load asks the loop to load game id.
func (s *Session) Load(id game.ID) error {
	return s.post(loadCmd{id: id})
}

// Key delivers one key press.
func (s *Session) Key(k string) error {
	return s.post(keyEvent{key: k})
}

// Snapshots returns the channel of state snapshots published after every event.
func (s *Session) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// DroppedSnapshots returns the count of snapshots dropped for a slow reader.
func (s *Session) DroppedSnapshots() int64 {
	return s.droppedSnapshots.Load()
}

// Close stops the loop and waits for network calls in flight.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.cancel()
	})
	if g, ok := s.spawner.(*goSpawner); ok {
		g.wait()
	}
}

func (s *Session) shutdown() {
	s.cancel()
	if s.sched != nil {
		s.sched.Close()
	}
	if s.pulseTimer != nil {
		s.pulseTimer.Stop()
	}
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
	}
}

// post enqueues ev for the loop. Safe from any goroutine.
func (s *Session) post(ev event) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.closed:
		return ErrClosed
	}
}

// drain handles every queued event without blocking. Used when the caller
// drives the loop itself.
func (s *Session) drain() int {
	n := 0
	for {
		select {
		case ev := <-s.events:
			s.dispatch(ev)
			s.publish()
			n++
		default:
			return n
		}
	}
}

// dispatch routes ev to its handler. A start/stop rejection only describes
// the phase it happened in.
func (s *Session) dispatch(ev event) {
	before := s.position()
	s.route(ev)
	if s.position() != before {
		s.lastRejection = nil
	}
}

type position struct {
	day   int
	phase ledger.Phase
}

func (s *Session) position() position {
	if s.ledger == nil {
		return position{}
	}
	return position{day: s.ledger.Day(), phase: s.ledger.Phase()}
}

func (s *Session) route(ev event) {
	switch ev := ev.(type) {
	case loadCmd:
		s.handleLoad(ev)
	case loadResult:
		s.handleLoaded(ev)
	case pendingRemoved:
		s.handlePendingRemoved(ev)
	case keyEvent:
		s.handleKey(ev.key)
	case timerEvent:
		if s.sched != nil {
			s.sched.Fire(ev.gen, s.clk.Now())
		}
	case resumeAck:
		s.handleResumeAck(ev)
	case priceResult:
		s.handlePrice(ev)
	case orderResult:
		s.handleOrder(ev)
	case summaryResult:
		s.handleSummary(ev)
	case resyncResult:
		s.handleResync(ev)
	case pulseEvent:
		if ev.seq == s.pulseSeq {
			s.broker = broker.ClearGuard(s.broker)
		}
	case bannerExpired:
		if ev.seq == s.bannerSeq {
			s.removedPending = 0
		}
	default:
		s.log.Warn("unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

// spawn runs job off the loop with a request-scoped context.
func (s *Session) spawn(job func(ctx context.Context)) {
	s.spawner.Go(func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.RequestTimeout)
		defer cancel()
		job(ctx)
	})
}

// publish sends the current snapshot, replacing the oldest queued one when
// the reader has fallen behind.
func (s *Session) publish() {
	s.seq++
	snap := s.snapshot()
	select {
	case s.snapshots <- snap:
		return
	default:
	}
	select {
	case <-s.snapshots:
		s.droppedSnapshots.Add(1)
	default:
	}
	select {
	case s.snapshots <- snap:
	default:
		s.droppedSnapshots.Add(1)
	}
}

// schedPorts connects the scheduler to the loop.
type schedPorts struct {
	s *Session
}

func (p schedPorts) PostTimer(gen uint64) {
	_ = p.s.post(timerEvent{gen: gen})
}

func (p schedPorts) FireTick(epoch, seq uint64) {
	p.s.fetchPrice(epoch, seq)
}

func (p schedPorts) NotifyPause(remaining time.Duration) {
	s := p.s
	id := s.gameID
	s.spawn(func(ctx context.Context) {
		if err := s.svc.NotifyPause(ctx, id, remaining); err != nil {
			s.log.Warn("pause notification failed", "game", id, "remaining", remaining, "err", err)
		}
	})
}

func (p schedPorts) NotifyResume(gen uint64) {
	s := p.s
	id := s.gameID
	s.spawn(func(ctx context.Context) {
		err := s.svc.NotifyResume(ctx, id)
		_ = s.post(resumeAck{gen: gen, err: err})
	})
}
