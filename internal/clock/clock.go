// Package clock abstracts wall-clock time and one-shot timers so the tick
// engine can be driven deterministically in tests.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the timer
	// was still pending.
	Stop() bool
}

// Clock supplies the current time and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the system clock.
type Real struct {
	c clockwork.Clock
}

// NewReal returns the system clock.
func NewReal() Real {
	return Real{c: clockwork.NewRealClock()}
}

func (r Real) Now() time.Time { return r.c.Now() }

func (r Real) AfterFunc(d time.Duration, f func()) Timer {
	return r.c.AfterFunc(d, f)
}
