// ABOUTME: Periodic background sweep of expired sessions
// ABOUTME: Explicit Start/Stop lifecycle instead of a fire-and-forget timer

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically deletes expired sessions. It must be constructed with
// NewSweeper and started explicitly; Stop (or cancelling the Start context)
// shuts it down cleanly.
type Sweeper struct {
	sessions *Service
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewSweeper creates a session sweeper with the given interval.
func NewSweeper(sessions *Service, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		logger:   logger.With("component", "session-sweeper"),
	}
}

// Start launches the background sweep loop. It is a no-op if already started.
func (sw *Sweeper) Start(ctx context.Context) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.started {
		return
	}
	sw.started = true

	ctx, sw.cancel = context.WithCancel(ctx)
	sw.done = make(chan struct{})

	go sw.run(ctx)
	sw.logger.Info("session sweeper started", "interval", sw.interval)
}

func (sw *Sweeper) run(ctx context.Context) {
	defer close(sw.done)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := sw.sessions.SweepExpired(ctx); err != nil {
				sw.logger.Error("session sweep failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the sweep loop and waits for it to exit.
// Safe to call multiple times and before Start.
func (sw *Sweeper) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.started {
		return
	}
	sw.started = false

	sw.cancel()
	<-sw.done
	sw.logger.Info("session sweeper stopped")
}
