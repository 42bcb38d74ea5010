package scheduler

import (
	"time"

	"github.com/zappabad/solotrader/internal/pause"
)

// Config holds configuration for the tick scheduler.
type Config struct {
	// Period is the time between ticks while running.
	Period time.Duration
	// MinimumDelay is the floor on the one-shot delay before a resumed tick.
	MinimumDelay time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Period:       time.Second,
		MinimumDelay: pause.DefaultMinimumDelay,
	}
}
