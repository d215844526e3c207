package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/leaderboard"
	"github.com/whosthatpokemon/internal/pokedex"
)

// SyncWorker periodically rebuilds the realtime leaderboards from Postgres
// and prunes expired catalog cache rows.
type SyncWorker struct {
	leaderboard *leaderboard.Service
	pokedex     *pokedex.Service
	config      *config.SyncConfig
	logger      *slog.Logger
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
}

// NewSyncWorker creates a new sync worker.
func NewSyncWorker(
	lb *leaderboard.Service,
	dex *pokedex.Service,
	cfg *config.SyncConfig,
	logger *slog.Logger,
) *SyncWorker {
	return &SyncWorker{
		leaderboard: lb,
		pokedex:     dex,
		config:      cfg,
		logger:      logger,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background sync process.
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background sync process.
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

// run is the main worker loop
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle runs one sync pass.
func (w *SyncWorker) cycle(ctx context.Context) {
	w.logger.Info("starting sync cycle")
	startTime := time.Now()

	if err := w.leaderboard.Sync(ctx); err != nil {
		w.logger.Error("failed to sync leaderboards", "error", err)
	}

	pruned, err := w.pokedex.Prune(ctx)
	if err != nil {
		w.logger.Error("failed to prune pokemon cache", "error", err)
	} else if pruned > 0 {
		w.logger.Info("pruned expired pokemon cache rows", "count", pruned)
	}

	w.logger.Info("sync cycle completed", "duration", time.Since(startTime))
}

// IsRunning returns whether the worker is currently running.
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single sync cycle (useful for manual triggers).
func (w *SyncWorker) RunOnce(ctx context.Context) {
	w.cycle(ctx)
}
