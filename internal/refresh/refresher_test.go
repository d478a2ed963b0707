package refresh

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asoma0710/message-search-engine/internal/cache"
	"github.com/asoma0710/message-search-engine/internal/models"
	apperrors "github.com/asoma0710/message-search-engine/pkg/errors"
	"github.com/asoma0710/message-search-engine/pkg/logger"
)

type fakeFetcher struct {
	calls atomic.Int64
	fail  atomic.Bool
}

func (f *fakeFetcher) ListMessages(ctx context.Context) ([]models.Message, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, apperrors.NewServiceUnavailableError(apperrors.CodeUpstreamUnavailable, "down")
	}
	return []models.Message{{ID: "1", Content: "hello"}}, nil
}

func testLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = io.Discard
	return logger.New(cfg)
}

func waitForCalls(t *testing.T, fetcher *fakeFetcher, n int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for fetcher.calls.Load() < n {
		select {
		case <-deadline:
			t.Fatalf("expected at least %d fetches, got %d", n, fetcher.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunPreloadsAndRefreshesPeriodically(t *testing.T) {
	fetcher := &fakeFetcher{}
	snapshots := cache.New(fetcher, cache.Options{TTL: time.Minute, MaxSize: 100}, testLogger())

	r := New(snapshots, 20*time.Millisecond, true, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	// Preload plus at least one periodic tick.
	waitForCalls(t, fetcher, 2)
	assert.False(t, snapshots.Expired())
}

func TestRunSurvivesRefreshFailures(t *testing.T) {
	fetcher := &fakeFetcher{}
	snapshots := cache.New(fetcher, cache.Options{TTL: time.Minute, MaxSize: 100}, testLogger())

	r := New(snapshots, 20*time.Millisecond, true, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher.fail.Store(true)
	go r.Run(ctx)

	// Failing preload and ticks keep retrying instead of crashing.
	waitForCalls(t, fetcher, 2)
	assert.True(t, snapshots.Expired())

	// Once upstream recovers, a later tick repopulates the cache.
	fetcher.fail.Store(false)
	deadline := time.After(2 * time.Second)
	for snapshots.Expired() {
		select {
		case <-deadline:
			t.Fatal("cache never recovered after upstream came back")
		case <-time.After(5 * time.Millisecond):
		}
	}

	require.False(t, snapshots.Expired())
}

func TestRunWithoutPreloadOrIntervalReturns(t *testing.T) {
	fetcher := &fakeFetcher{}
	snapshots := cache.New(fetcher, cache.Options{TTL: time.Minute, MaxSize: 100}, testLogger())

	r := New(snapshots, 0, false, testLogger())

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately with no preload and no interval")
	}

	assert.EqualValues(t, 0, fetcher.calls.Load())
}
