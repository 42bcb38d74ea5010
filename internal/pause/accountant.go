// Package pause keeps the books for one repeating tick interval across any
// number of pause/resume cycles, so pausing never shortens the interval and
// never discards progress already made toward it.
package pause

import "time"

// DefaultMinimumDelay is the floor applied to the delay before a resumed tick.
const DefaultMinimumDelay = 25 * time.Millisecond

// Accountant tracks elapsed and remaining time in the current tick interval.
type Accountant struct {
	period       time.Duration
	minimumDelay time.Duration

	lastResumedAt time.Time
	lastTickAt    time.Time
	accumulated   time.Duration
	remaining     time.Duration

	// pausedThisInterval is set by the first Pause after a tick and cleared by the next tick.
	pausedThisInterval bool
}

// NewAccountant creates an Accountant for the given tick period.
// A non-positive minimumDelay selects DefaultMinimumDelay.
func NewAccountant(period, minimumDelay time.Duration) *Accountant {
	if minimumDelay <= 0 {
		minimumDelay = DefaultMinimumDelay
	}
	return &Accountant{
		period:       period,
		minimumDelay: minimumDelay,
		remaining:    period,
	}
}

// Begin starts a fresh interval at now without counting it as a tick.
func (a *Accountant) Begin(now time.Time) {
	a.Tick(now)
}

// Tick marks the end of an interval: the next one starts at now with nothing accumulated.
func (a *Accountant) Tick(now time.Time) {
	a.lastTickAt = now
	a.accumulated = 0
	a.remaining = a.period
	a.pausedThisInterval = false
}

// Pause stops the clock for the current interval and returns the time still owed
// before the next tick. The result is not floored and may be zero or negative.
func (a *Accountant) Pause(now time.Time) time.Duration {
	baseline := a.lastTickAt
	if a.pausedThisInterval {
		baseline = a.lastResumedAt
	}
	if elapsed := now.Sub(baseline); elapsed > 0 {
		a.accumulated += elapsed
	}
	a.pausedThisInterval = true
	a.remaining = a.period - a.accumulated
	return a.remaining
}

// Resume restarts the clock at now and returns the one-shot delay before the next tick.
func (a *Accountant) Resume(now time.Time) time.Duration {
	a.lastResumedAt = now
	return a.Delay()
}

// Delay is the remaining time floored at the minimum delay.
func (a *Accountant) Delay() time.Duration {
	if a.remaining < a.minimumDelay {
		return a.minimumDelay
	}
	return a.remaining
}

// Paused reports whether the current interval has been paused at least once.
func (a *Accountant) Paused() bool { return a.pausedThisInterval }

// Accumulated returns the running time counted toward the current interval.
func (a *Accountant) Accumulated() time.Duration { return a.accumulated }

// Remaining returns the time owed as of the last Pause (the full period after a tick).
func (a *Accountant) Remaining() time.Duration { return a.remaining }

// Period returns the configured tick period.
func (a *Accountant) Period() time.Duration { return a.period }
