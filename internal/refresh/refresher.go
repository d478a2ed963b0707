// Package refresh keeps the message cache warm so search requests rarely
// block on the upstream API.
package refresh

import (
	"context"
	"time"

	"github.com/asoma0710/message-search-engine/internal/cache"
	"github.com/asoma0710/message-search-engine/pkg/logger"
)

// Refresher preloads the cache at startup and refetches on a fixed interval.
// Failures are logged and retried on the next tick; they never replace a
// valid snapshot.
type Refresher struct {
	cache    *cache.SnapshotCache
	interval time.Duration
	preload  bool
	log      *logger.Logger
}

// New creates a refresher. A non-positive interval disables the periodic
// loop; preload controls the one-shot fetch at startup.
func New(snapshots *cache.SnapshotCache, interval time.Duration, preload bool, log *logger.Logger) *Refresher {
	return &Refresher{
		cache:    snapshots,
		interval: interval,
		preload:  preload,
		log:      log,
	}
}

// Run blocks until ctx is cancelled. Call it in its own goroutine.
func (r *Refresher) Run(ctx context.Context) {
	if r.preload {
		r.log.Info("Preloading message cache")
		if err := r.cache.Refresh(ctx); err != nil {
			r.log.LogError(err, "Initial cache preload failed")
		}
	}

	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.log.Debug("Background refresh: updating message cache")
			if err := r.cache.Refresh(ctx); err != nil {
				r.log.LogError(err, "Background refresh failed")
			}
		}
	}
}
