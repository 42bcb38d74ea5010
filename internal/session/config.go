package session

import (
	"time"

	"github.com/zappabad/solotrader/internal/broker"
	"github.com/zappabad/solotrader/internal/pause"
	"github.com/zappabad/solotrader/internal/remote"
)

// Config holds configuration for the session loop.
type Config struct {
	// EventBuffer is the size of the inbound event channel.
	EventBuffer int
	// SnapshotBuffer is the size of the outbound snapshot channel.
	SnapshotBuffer int
	// MinimumDelay is the shortest delayed tick after a resume.
	MinimumDelay time.Duration
	// PriceRetry bounds retries of a failed price fetch. Max is further
	// capped at a quarter of the tick period.
	PriceRetry remote.RetryPolicy
	// RequestTimeout bounds every call to the game service.
	RequestTimeout time.Duration
	// MaxDigits caps the broker's quantity buffer.
	MaxDigits int
	// OrderHistory is the number of orders retained.
	OrderHistory int
	// PulseDuration is how long the broker's feedback pulse lasts.
	PulseDuration time.Duration
	// TapeSize is the number of recent prices kept across days.
	TapeSize int
	// BannerDuration is how long the removed-pending notice stays up.
	BannerDuration time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		EventBuffer:    256,
		SnapshotBuffer: 16,
		MinimumDelay:   pause.DefaultMinimumDelay,
		PriceRetry:     remote.DefaultRetryPolicy(),
		RequestTimeout: 10 * time.Second,
		MaxDigits:      broker.DefaultMaxDigits,
		OrderHistory:   1000,
		PulseDuration:  150 * time.Millisecond,
		TapeSize:       120,
		BannerDuration: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.EventBuffer <= 0 {
		c.EventBuffer = d.EventBuffer
	}
	if c.SnapshotBuffer <= 0 {
		c.SnapshotBuffer = d.SnapshotBuffer
	}
	if c.MinimumDelay <= 0 {
		c.MinimumDelay = d.MinimumDelay
	}
	if c.PriceRetry.Base <= 0 {
		c.PriceRetry = d.PriceRetry
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.MaxDigits <= 0 {
		c.MaxDigits = d.MaxDigits
	}
	if c.OrderHistory <= 0 {
		c.OrderHistory = d.OrderHistory
	}
	if c.PulseDuration <= 0 {
		c.PulseDuration = d.PulseDuration
	}
	if c.TapeSize <= 0 {
		c.TapeSize = d.TapeSize
	}
	if c.BannerDuration <= 0 {
		c.BannerDuration = d.BannerDuration
	}
	return c
}
