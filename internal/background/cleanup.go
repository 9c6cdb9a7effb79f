package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Sweeper discards expired in-memory state and reports how many entries went.
type Sweeper interface {
	Sweep() int
}

// CleanupManager periodically sweeps the in-memory lockout tracker so keys
// that are never retried do not accumulate.
type CleanupManager struct {
	sweeper  Sweeper
	logger   *slog.Logger
	interval time.Duration
	clock    clockwork.Clock
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewCleanupManager(sweeper Sweeper, logger *slog.Logger, interval time.Duration, clock clockwork.Clock) *CleanupManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CleanupManager{
		sweeper:  sweeper,
		logger:   logger,
		interval: interval,
		clock:    clock,
		stopCh:   make(chan struct{}),
	}
}

// Start blocks, sweeping every interval until Stop is called or ctx is done.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := cm.clock.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			cm.runCleanup()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup() {
	if dropped := cm.sweeper.Sweep(); dropped > 0 {
		cm.logger.Debug("lockout tracker swept", slog.Int("keys_dropped", dropped))
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
