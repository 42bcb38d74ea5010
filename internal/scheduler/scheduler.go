// Package scheduler drives periodic tick generation and owns the run state
// machine (Idle, Running, Paused, Resuming).
package scheduler

import (
	"log/slog"
	"time"

	"github.com/zappabad/solotrader/internal/clock"
	"github.com/zappabad/solotrader/internal/pause"
)

// Ports is how the scheduler reaches the rest of the engine.
type Ports interface {
	// PostTimer is called from the timer's own goroutine when timer gen fires.
	// It must only enqueue; the owner later calls Fire(gen, now) on its loop.
	PostTimer(gen uint64)
	// FireTick asks for the next price. seq numbers the ticks of running
	// segment epoch from 1 so late responses can be ordered.
	FireTick(epoch, seq uint64)
	// NotifyPause reports the time left in the interval. Best-effort.
	NotifyPause(remaining time.Duration)
	// NotifyResume starts the resume round trip. Its completion, success or
	// not, must be delivered back through ResumeAcknowledged(gen, now).
	NotifyResume(gen uint64)
}

// Scheduler is not safe for concurrent use; it belongs to a single event loop.
type Scheduler struct {
	cfg   Config
	clk   clock.Clock
	ports Ports
	log   *slog.Logger
	acct  *pause.Accountant

	state    State
	gameID   string
	gated    bool
	disabled bool

	timer    clock.Timer
	deadline time.Time // when the armed timer is due
	gen      uint64    // bumped whenever the armed timer changes; stale fires are dropped
	epoch    uint64    // bumped on every start; tags price requests
	tick     uint64    // ticks fired in the current epoch

	resumeDelay time.Duration
}

// New creates a Scheduler in the Idle state.
func New(cfg Config, clk clock.Clock, ports Ports, log *slog.Logger) *Scheduler {
	if cfg.Period <= 0 {
		cfg.Period = DefaultConfig().Period
	}
	if cfg.MinimumDelay <= 0 {
		cfg.MinimumDelay = DefaultConfig().MinimumDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cfg:   cfg,
		clk:   clk,
		ports: ports,
		log:   log.With("module", "scheduler"),
		acct:  pause.NewAccountant(cfg.Period, cfg.MinimumDelay),
	}
}

// Bind records the game the scheduler ticks for. Start is rejected until then.
func (s *Scheduler) Bind(gameID string) {
	s.gameID = gameID
}

// SetGate opens or closes the end-of-day gate. Toggles are rejected while it is open.
func (s *Scheduler) SetGate(open bool) {
	s.gated = open
}

// Disable permanently stops the scheduler (invalid game).
func (s *Scheduler) Disable() {
	s.cancelTimer()
	s.disabled = true
	s.state = StateIdle
}

// Toggle is the user's start/stop action.
func (s *Scheduler) Toggle(now time.Time) error {
	switch {
	case s.disabled:
		return ErrDisabled
	case s.gameID == "":
		return ErrUnbound
	case s.state == StateResuming:
		return ErrResuming
	case s.gated:
		return ErrGated
	}
	if s.state == StateRunning {
		return s.Stop(now)
	}
	return s.Start(now)
}

// Start moves Idle or Paused to Running. Coming out of a genuine pause it
// goes through Resuming and the delayed tick instead.
func (s *Scheduler) Start(now time.Time) error {
	switch {
	case s.disabled:
		return ErrDisabled
	case s.gameID == "":
		return ErrUnbound
	case s.state == StateRunning:
		return ErrRunning
	case s.state == StateResuming:
		return ErrResuming
	}

	s.epoch++
	s.tick = 0

	if s.state == StatePaused && s.acct.Paused() {
		s.cancelTimer()
		s.state = StateResuming
		s.resumeDelay = s.acct.Resume(now)
		s.log.Debug("resuming", "delay", s.resumeDelay, "epoch", s.epoch)
		s.ports.NotifyResume(s.gen)
		return nil
	}

	s.acct.Begin(now)
	s.state = StateRunning
	s.arm(now, now.Add(s.cfg.Period))
	s.log.Debug("started", "period", s.cfg.Period, "epoch", s.epoch)
	return nil
}

// Stop moves Running to Paused, banking the elapsed part of the interval.
func (s *Scheduler) Stop(now time.Time) error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	remaining := s.acct.Pause(now)
	s.cancelTimer()
	s.state = StatePaused
	s.log.Debug("paused", "remaining", remaining)
	s.ports.NotifyPause(remaining)
	return nil
}

// ResumeAcknowledged arms the delayed tick once the resume round trip is over.
// It reports false when the acknowledgement no longer applies.
func (s *Scheduler) ResumeAcknowledged(gen uint64, now time.Time) bool {
	if s.state != StateResuming || gen != s.gen {
		s.log.Debug("stale resume acknowledgement", "gen", gen, "current", s.gen, "state", s.state)
		return false
	}
	s.arm(now, now.Add(s.resumeDelay))
	return true
}

// Fire handles timer gen firing at now. It reports whether a tick was generated.
func (s *Scheduler) Fire(gen uint64, now time.Time) bool {
	if gen != s.gen {
		return false
	}
	switch s.state {
	case StateRunning:
	case StateResuming:
		s.state = StateRunning
	default:
		return false
	}

	// the next interval runs from when this tick was due, not from when the
	// loop got to it
	due := s.deadline
	if due.After(now) {
		due = now
	}
	s.acct.Tick(due)
	next := due.Add(s.cfg.Period)
	if !next.After(now) {
		next = now
	}
	s.arm(now, next)
	s.tick++
	s.ports.FireTick(s.epoch, s.tick)
	return true
}

// Close cancels any pending timer.
func (s *Scheduler) Close() {
	s.cancelTimer()
}

// State returns the current run state.
func (s *Scheduler) State() State { return s.state }

// Epoch identifies the current running segment.
func (s *Scheduler) Epoch() uint64 { return s.epoch }

// Gated reports whether the end-of-day gate is open.
func (s *Scheduler) Gated() bool { return s.gated }

// Disabled reports whether the scheduler was permanently disabled.
func (s *Scheduler) Disabled() bool { return s.disabled }

// Bound reports whether a game id has been bound.
func (s *Scheduler) Bound() bool { return s.gameID != "" }

// Remaining returns the time owed in the current interval as of the last pause.
func (s *Scheduler) Remaining() time.Duration { return s.acct.Remaining() }

// Period returns the tick period.
func (s *Scheduler) Period() time.Duration { return s.cfg.Period }

func (s *Scheduler) arm(now, at time.Time) {
	s.cancelTimer()
	gen := s.gen
	s.deadline = at
	s.timer = s.clk.AfterFunc(at.Sub(now), func() { s.ports.PostTimer(gen) })
}

func (s *Scheduler) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}
