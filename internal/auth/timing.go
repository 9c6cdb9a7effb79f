package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig controls how long failed sign-ins are held before responding.
type TimingConfig struct {
	BaseDelay time.Duration
	Jitter    time.Duration
}

// TimingDelay pads failed authentication responses to a common floor so
// "no such account" and "wrong password" are not distinguishable by latency.
type TimingDelay struct {
	config TimingConfig
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// target returns BaseDelay plus a random share of Jitter.
func (td *TimingDelay) target() time.Duration {
	delay := td.config.BaseDelay
	if td.config.Jitter > 0 {
		var b [8]byte
		if _, err := rand.Read(b[:]); err == nil {
			delay += time.Duration(binary.BigEndian.Uint64(b[:]) % uint64(td.config.Jitter))
		}
	}
	return delay
}

// Pad blocks until at least the target delay has passed since start, or ctx is done.
func (td *TimingDelay) Pad(ctx context.Context, start time.Time) {
	if td == nil {
		return
	}

	remaining := td.target() - time.Since(start)
	if remaining <= 0 {
		return
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
