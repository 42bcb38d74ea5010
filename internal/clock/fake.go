package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Fake is a Clock that only moves when Advance is called. Callbacks run on
// their own goroutines, as with the system clock; Advance returns once every
// callback it made due has returned.
type Fake struct {
	fc *clockwork.FakeClock

	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	f       *Fake
	at      time.Time
	t       clockwork.Timer
	done    chan struct{}
	stopped bool
}

// NewFake creates a Fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{fc: clockwork.NewFakeClockAt(start)}
}

func (f *Fake) Now() time.Time { return f.fc.Now() }

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	ft := &fakeTimer{f: f, done: make(chan struct{})}
	f.mu.Lock()
	ft.at = f.fc.Now().Add(d)
	f.pending = append(f.pending, ft)
	f.mu.Unlock()

	ft.t = f.fc.AfterFunc(d, func() {
		defer close(ft.done)
		fn()
	})
	return ft
}

// Pending returns how many timers are armed and not yet fired or stopped.
func (f *Fake) Pending() int {
	now := f.fc.Now()
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.pending {
		if !t.stopped && t.at.After(now) {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and waits for the callbacks that fell due,
// including ones armed by those callbacks that are already due themselves.
func (f *Fake) Advance(d time.Duration) {
	f.fc.Advance(d)
	for {
		due := f.takeDue()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			<-t.done
		}
		// fire timers the callbacks armed with no delay
		f.fc.Advance(0)
	}
}

func (f *Fake) takeDue() []*fakeTimer {
	now := f.fc.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	var due, keep []*fakeTimer
	for _, t := range f.pending {
		switch {
		case t.stopped:
		case !t.at.After(now):
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	f.pending = keep
	return due
}

func (t *fakeTimer) Stop() bool {
	if !t.t.Stop() {
		return false
	}
	t.f.mu.Lock()
	t.stopped = true
	t.f.mu.Unlock()
	return true
}
