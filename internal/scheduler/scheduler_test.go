package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/zappabad/solotrader/internal/clock"
)

// loopPorts plays the event loop: timer posts are handled on the timer's
// goroutine while advance waits for it, resume acknowledgements are held until
// the test releases them.
type loopPorts struct {
	clk     *clock.Fake
	s       *Scheduler
	ticks   []time.Time
	epochs  []uint64
	seqs    []uint64
	pauses  []time.Duration
	resumes []uint64
}

func (p *loopPorts) PostTimer(gen uint64) { p.s.Fire(gen, p.clk.Now()) }
func (p *loopPorts) FireTick(epoch, seq uint64) {
	p.ticks = append(p.ticks, p.clk.Now())
	p.epochs = append(p.epochs, epoch)
	p.seqs = append(p.seqs, seq)
}
func (p *loopPorts) NotifyPause(remaining time.Duration) { p.pauses = append(p.pauses, remaining) }
func (p *loopPorts) NotifyResume(gen uint64) { p.resumes = append(p.resumes, gen) }
func (p *loopPorts) ackResume() { p.s.ResumeAcknowledged(p.resumes[len(p.resumes)-1], p.clk.Now()) }
func (p *loopPorts) sinceStart(start time.Time, i int) time.Duration { return p.ticks[i].Sub(start) }

var start = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestScheduler(period time.Duration) (*Scheduler, *loopPorts, *clock.Fake) {
	clk := clock.NewFake(start)
	ports := &loopPorts{clk: clk}
	s := New(Config{Period: period, MinimumDelay: 25 * time.Millisecond}, clk, ports, nil)
	ports.s = s
	return s, ports, clk
}

// advance moves the clock a millisecond at a time so each rearmed timer fires
// at its own deadline.
func advance(clk *clock.Fake, d time.Duration) {
	for d > 0 {
		step := min(d, time.Millisecond)
		clk.Advance(step)
		d -= step
	}
}

func TestStartRequiresBoundGame(t *testing.T) {
	s, _, clk := newTestScheduler(time.Second)

	if err := s.Toggle(clk.Now()); !errors.Is(err, ErrUnbound) {
		t.Fatalf("expected ErrUnbound, got %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("expected Idle, got %s", s.State())
	}
}

func TestPeriodicTicking(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")

	if err := s.Toggle(clk.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State() != StateRunning {
		t.Fatalf("expected Running, got %s", s.State())
	}

	advance(clk, 3500*time.Millisecond)
	if len(ports.ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ports.ticks))
	}
	for i := range ports.ticks {
		want := time.Duration(i+1) * time.Second
		if got := ports.sinceStart(start, i); got != want {
			t.Errorf("tick %d at %s, want %s", i, got, want)
		}
	}
}

func TestPauseResumeExampleScenario(t *testing.T) {
	s, ports, clk := newTestScheduler(1500 * time.Millisecond)
	s.Bind("g1")
	_ = s.Start(clk.Now())

	advance(clk, 1500*time.Millisecond) // first tick
	if len(ports.ticks) != 1 {
		t.Fatalf("expected 1 tick, got %d", len(ports.ticks))
	}

	advance(clk, 400*time.Millisecond)
	if err := s.Toggle(clk.Now()); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if s.State() != StatePaused {
		t.Fatalf("expected Paused, got %s", s.State())
	}
	if len(ports.pauses) != 1 || ports.pauses[0] != 1100*time.Millisecond {
		t.Fatalf("expected pause notification of 1100ms, got %v", ports.pauses)
	}

	advance(clk, 5000*time.Millisecond)
	if len(ports.ticks) != 1 {
		t.Fatalf("ticked while paused: %d ticks", len(ports.ticks))
	}

	resumedAt := clk.Now()
	if err := s.Toggle(resumedAt); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s.State() != StateResuming {
		t.Fatalf("expected Resuming, got %s", s.State())
	}
	ports.ackResume()

	advance(clk, 1099*time.Millisecond)
	if len(ports.ticks) != 1 {
		t.Fatal("delayed tick fired early")
	}
	advance(clk, time.Millisecond)
	if len(ports.ticks) != 2 {
		t.Fatal("delayed tick did not fire at 1100ms")
	}
	if got := ports.ticks[1].Sub(resumedAt); got != 1100*time.Millisecond {
		t.Errorf("delayed tick after %s, want 1100ms", got)
	}
	if s.State() != StateRunning {
		t.Errorf("expected Running after delayed tick, got %s", s.State())
	}

	// periodic ticking resumes at the full period
	advance(clk, 1500*time.Millisecond)
	if len(ports.ticks) != 3 {
		t.Fatalf("expected periodic tick after resume, got %d ticks", len(ports.ticks))
	}
}

func TestTogglesRejectedWhileResuming(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())
	advance(clk, 300*time.Millisecond)
	_ = s.Toggle(clk.Now())
	advance(clk, time.Second)
	_ = s.Toggle(clk.Now())

	if err := s.Toggle(clk.Now()); !errors.Is(err, ErrResuming) {
		t.Fatalf("expected ErrResuming, got %v", err)
	}
	if len(ports.pauses) != 1 {
		t.Errorf("rejected toggle produced a pause notification")
	}

	ports.ackResume()
	advance(clk, 700*time.Millisecond)
	if s.State() != StateRunning {
		t.Fatalf("expected Running, got %s", s.State())
	}
	if err := s.Toggle(clk.Now()); err != nil {
		t.Errorf("toggle after resume completed: %v", err)
	}
}

func TestNoTickUntilResumeAcknowledged(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())
	advance(clk, 200*time.Millisecond)
	_ = s.Stop(clk.Now())
	_ = s.Start(clk.Now())

	advance(clk, 5*time.Second)
	if len(ports.ticks) != 0 {
		t.Fatalf("ticked before resume acknowledgement: %d", len(ports.ticks))
	}

	ports.ackResume()
	advance(clk, 800*time.Millisecond)
	if len(ports.ticks) != 1 {
		t.Fatalf("expected delayed tick 800ms after ack, got %d ticks", len(ports.ticks))
	}
}

func TestStaleResumeAcknowledgementIgnored(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())
	advance(clk, 200*time.Millisecond)
	_ = s.Stop(clk.Now())
	_ = s.Start(clk.Now())
	gen := ports.resumes[0]

	s.Disable()
	if s.ResumeAcknowledged(gen, clk.Now()) {
		t.Fatal("acknowledgement applied after disable")
	}
	advance(clk, 5*time.Second)
	if len(ports.ticks) != 0 {
		t.Errorf("disabled scheduler ticked")
	}
}

func TestGateRejectsToggle(t *testing.T) {
	s, _, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	s.SetGate(true)

	if err := s.Toggle(clk.Now()); !errors.Is(err, ErrGated) {
		t.Fatalf("expected ErrGated, got %v", err)
	}

	s.SetGate(false)
	if err := s.Toggle(clk.Now()); err != nil {
		t.Fatalf("unexpected error after gate closed: %v", err)
	}
}

func TestStopCancelsPendingTimer(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())
	advance(clk, 900*time.Millisecond)
	_ = s.Stop(clk.Now())

	advance(clk, 10*time.Second)
	if len(ports.ticks) != 0 {
		t.Errorf("expected no ticks after stop, got %d", len(ports.ticks))
	}
	if clk.Pending() != 0 {
		t.Errorf("expected no armed timers, got %d", clk.Pending())
	}
}

func TestEpochAdvancesPerStart(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())
	advance(clk, time.Second)
	_ = s.Stop(clk.Now())
	_ = s.Start(clk.Now())
	ports.ackResume()
	advance(clk, time.Second)

	if len(ports.epochs) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ports.epochs))
	}
	if ports.epochs[0] == ports.epochs[1] {
		t.Errorf("expected distinct epochs across a restart, got %v", ports.epochs)
	}
}

func TestStaleFireIgnored(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())

	if s.Fire(12345, clk.Now()) {
		t.Fatal("fire with an unknown generation generated a tick")
	}
	if len(ports.ticks) != 0 {
		t.Errorf("unexpected ticks: %d", len(ports.ticks))
	}
}

func TestTickSequenceRestartsPerEpoch(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())
	advance(clk, 2*time.Second)
	_ = s.Stop(clk.Now())
	_ = s.Start(clk.Now())
	ports.ackResume()
	advance(clk, 2*time.Second)

	want := []uint64{1, 2, 1, 2}
	if len(ports.seqs) != len(want) {
		t.Fatalf("expected %d ticks, got %v", len(want), ports.seqs)
	}
	for i := range want {
		if ports.seqs[i] != want[i] {
			t.Errorf("tick %d seq = %d, want %d", i, ports.seqs[i], want[i])
		}
	}
}

func TestLateFireKeepsCadence(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())

	// the loop gets to the first fire 300ms late
	clk.Advance(1300 * time.Millisecond)
	if len(ports.ticks) != 1 {
		t.Fatalf("expected 1 tick, got %d", len(ports.ticks))
	}

	advance(clk, 699*time.Millisecond)
	if len(ports.ticks) != 1 {
		t.Fatal("second tick fired early")
	}
	advance(clk, time.Millisecond)
	if len(ports.ticks) != 2 {
		t.Fatal("second tick did not fire two periods after start")
	}
	if got := ports.sinceStart(start, 1); got != 2*time.Second {
		t.Errorf("second tick at %s, want 2s", got)
	}
}

func TestLongStallFiresOneCatchUpTick(t *testing.T) {
	s, ports, clk := newTestScheduler(time.Second)
	s.Bind("g1")
	_ = s.Start(clk.Now())

	clk.Advance(3500 * time.Millisecond)
	if len(ports.ticks) != 2 {
		t.Fatalf("expected the due tick plus one catch-up, got %d", len(ports.ticks))
	}
	advance(clk, 999*time.Millisecond)
	if len(ports.ticks) != 2 {
		t.Fatal("ticked before a full period after catching up")
	}
	advance(clk, time.Millisecond)
	if len(ports.ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ports.ticks))
	}
}
