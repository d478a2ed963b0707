// Package cache holds the in-memory snapshot of the upstream message dataset.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/asoma0710/message-search-engine/internal/models"
	"github.com/asoma0710/message-search-engine/internal/upstream"
	"github.com/asoma0710/message-search-engine/pkg/logger"
	"github.com/asoma0710/message-search-engine/pkg/metrics"
)

// Snapshot is an immutable capture of the upstream dataset. It is replaced
// wholesale on refresh and never mutated in place, so readers can scan it
// without locking.
type Snapshot struct {
	Messages   []models.Message
	CapturedAt time.Time
}

// SnapshotCache guarantees readers a snapshot no older than the TTL while
// allowing at most one upstream fetch in flight. Hits take only a read lock;
// misses serialize behind refreshMu and re-check validity after acquiring it,
// so callers queued behind an in-flight fetch reuse its result.
type SnapshotCache struct {
	fetcher upstream.Fetcher
	ttl     time.Duration
	maxSize int
	log     *logger.Logger

	mu        sync.RWMutex
	snapshot  *Snapshot
	expiresAt time.Time

	// refreshMu guards the check-fetch-publish sequence.
	refreshMu sync.Mutex

	// now is swapped out by tests to control expiry.
	now func() time.Time
}

// Options configures a SnapshotCache.
type Options struct {
	TTL     time.Duration
	MaxSize int
}

// New creates an empty cache. The first Snapshot call populates it.
func New(fetcher upstream.Fetcher, opts Options, log *logger.Logger) *SnapshotCache {
	return &SnapshotCache{
		fetcher: fetcher,
		ttl:     opts.TTL,
		maxSize: opts.MaxSize,
		log:     log,
		now:     time.Now,
	}
}

// Snapshot returns the current snapshot, fetching from upstream if the cache
// is empty or expired. A fetch error leaves any existing state untouched.
func (c *SnapshotCache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := c.current(); snap != nil {
		metrics.CacheHits.Inc()
		return snap, nil
	}

	metrics.CacheMisses.Inc()

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	if snap := c.current(); snap != nil {
		return snap, nil
	}

	return c.refresh(ctx)
}

// Refresh fetches unconditionally and publishes a new snapshot. Used by the
// startup preload and the background refresher.
func (c *SnapshotCache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	_, err := c.refresh(ctx)
	return err
}

// Expired reports whether a reader would currently miss.
func (c *SnapshotCache) Expired() bool {
	return c.current() == nil
}

// current returns the published snapshot if it is still fresh.
func (c *SnapshotCache) current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil || !c.now().Before(c.expiresAt) {
		return nil
	}
	return c.snapshot
}

// refresh performs the fetch-and-publish step. Callers hold refreshMu.
func (c *SnapshotCache) refresh(ctx context.Context) (*Snapshot, error) {
	messages, err := c.fetcher.ListMessages(ctx)
	if err != nil {
		metrics.CacheRefreshFailures.Inc()
		return nil, err
	}

	// Keep size under control
	if c.maxSize > 0 && len(messages) > c.maxSize {
		messages = messages[:c.maxSize]
	}

	now := c.now()
	snap := &Snapshot{Messages: messages, CapturedAt: now}

	c.mu.Lock()
	c.snapshot = snap
	c.expiresAt = now.Add(c.ttl)
	expiresAt := c.expiresAt
	c.mu.Unlock()

	metrics.SnapshotSize.Set(float64(len(messages)))
	c.log.Info("Cache updated",
		"messages", len(messages),
		"valid_until", expiresAt.Format(time.RFC3339),
	)
	return snap, nil
}
