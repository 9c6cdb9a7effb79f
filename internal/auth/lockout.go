package auth

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultMaxFailedAttempts = 5
	DefaultLockoutWindow     = 15 * time.Minute
)

// LockoutTracker counts failed sign-in attempts per key over a sliding window.
// State lives in process memory only. Expired attempts are pruned whenever a
// key is touched; Sweep drops keys that are never touched again.
type LockoutTracker struct {
	mu          sync.Mutex
	attempts    map[string][]time.Time
	maxAttempts int
	window      time.Duration
	clock       clockwork.Clock
}

func NewLockoutTracker(maxAttempts int, window time.Duration, clock clockwork.Clock) *LockoutTracker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxFailedAttempts
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LockoutTracker{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		clock:       clock,
	}
}

// IsLocked reports whether key has reached the attempt limit within the window.
func (lt *LockoutTracker) IsLocked(key string) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	return len(lt.prune(key, lt.clock.Now())) >= lt.maxAttempts
}

// RecordFailedAttempt appends the current time to key's window.
func (lt *LockoutTracker) RecordFailedAttempt(key string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.clock.Now()
	lt.attempts[key] = append(lt.prune(key, now), now)
}

// Clear forgets every attempt recorded for key.
func (lt *LockoutTracker) Clear(key string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	delete(lt.attempts, key)
}

func (lt *LockoutTracker) RemainingAttempts(key string) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	return max(0, lt.maxAttempts-len(lt.prune(key, lt.clock.Now())))
}

// LockoutExpiry returns when a locked key unlocks on its own: the oldest
// attempt in the window plus the window length. ok is false if key is not locked.
func (lt *LockoutTracker) LockoutExpiry(key string) (expiry time.Time, ok bool) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	window := lt.prune(key, lt.clock.Now())
	if len(window) < lt.maxAttempts {
		return time.Time{}, false
	}
	return window[0].Add(lt.window), true
}

// Sweep prunes every key and returns how many keys were dropped.
func (lt *LockoutTracker) Sweep() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.clock.Now()
	dropped := 0
	for key := range lt.attempts {
		if lt.prune(key, now) == nil {
			dropped++
		}
	}
	return dropped
}

// prune drops attempts older than the window and returns what is left.
// Callers must hold lt.mu.
func (lt *LockoutTracker) prune(key string, now time.Time) []time.Time {
	window, exists := lt.attempts[key]
	if !exists {
		return nil
	}

	// attempts are appended in clock order, so the survivors are a suffix
	cut := 0
	for cut < len(window) && now.Sub(window[cut]) >= lt.window {
		cut++
	}
	if cut == len(window) {
		delete(lt.attempts, key)
		return nil
	}
	if cut > 0 {
		window = append(window[:0:0], window[cut:]...)
		lt.attempts[key] = window
	}
	return window
}
