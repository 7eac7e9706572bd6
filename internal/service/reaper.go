package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often the reaper sweeps when no interval is given.
const DefaultCleanupInterval = time.Minute

// SessionCleaner deletes idle sessions.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// Reaper periodically removes sessions that have been idle for too long.
type Reaper struct {
	cleaner  SessionCleaner
	interval time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	started    bool
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewReaper creates a reaper that calls cleaner every interval.
func NewReaper(cleaner SessionCleaner, interval time.Duration, logger *slog.Logger) *Reaper {
	if cleaner == nil {
		panic("cleaner cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{
		cleaner:    cleaner,
		interval:   interval,
		logger:     logger.With(slog.String("component", "session_reaper")),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the sweep loop. Calling Start more than once has no effect.
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	r.wg.Add(1)
	go r.run()

	r.logger.Info("session reaper started", slog.Duration("interval", r.interval))
}

// Stop cancels the sweep loop and waits for an in-flight sweep to finish.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.logger.Info("session reaper stopped")
	})
}

// Sweep runs a single cleanup pass.
func (r *Reaper) Sweep(ctx context.Context) {
	removed, err := r.cleaner.CleanupExpired(ctx)
	if err != nil {
		r.logger.Error("failed to clean up expired sessions", slog.String("error", err.Error()))
		return
	}
	if removed > 0 {
		r.logger.Info("removed expired sessions", slog.Int("count", removed))
	}
}

func (r *Reaper) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			r.Sweep(r.ctx)
		}
	}
}
