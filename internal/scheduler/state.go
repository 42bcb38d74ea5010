package scheduler

import "errors"

// State is the scheduler's run state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	// StateResuming covers the Paused->Running edge while the resume
	// acknowledgement and the delayed tick are outstanding.
	StateResuming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateResuming:
		return "RESUMING"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrUnbound    = errors.New("scheduler: game id not bound")
	ErrResuming   = errors.New("scheduler: resume in progress")
	ErrGated      = errors.New("scheduler: end-of-day gate open")
	ErrDisabled   = errors.New("scheduler: disabled")
	ErrNotRunning = errors.New("scheduler: not running")
	ErrRunning    = errors.New("scheduler: already running")
)
