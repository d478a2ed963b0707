package service

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
	"github.com/asoma0710/message-search-engine/internal/search"
	apperrors "github.com/asoma0710/message-search-engine/pkg/errors"
	"github.com/asoma0710/message-search-engine/pkg/logger"
)

type fakeFetcher struct {
	calls    atomic.Int64
	messages []models.Message
	err      error
}

func (f *fakeFetcher) ListMessages(ctx context.Context) ([]models.Message, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func newTestService(fetcher *fakeFetcher) *MessageService {
	logCfg := logger.DefaultConfig()
	logCfg.Output = io.Discard
	log := logger.New(logCfg)

	snapshots := cache.New(fetcher, cache.Options{TTL: time.Minute, MaxSize: 10000}, log)
	executor := search.NewExecutor(20, 100)
	return NewMessageService(snapshots, executor)
}

func parisMessages() []models.Message {
	return []models.Message{
		{ID: "1", UserID: "u1", UserName: "Alice", Content: "Book a flight to Paris"},
		{ID: "2", UserID: "u2", UserName: "Bob", Content: "Dinner in paris tonight"},
		{ID: "3", UserID: "u3", UserName: "Carol", Content: "Opera tickets"},
	}
}

func TestSearchReturnsPagedMatches(t *testing.T) {
	fetcher := &fakeFetcher{messages: parisMessages()}
	svc := newTestService(fetcher)

	resp, err := svc.Search(context.Background(), search.Params{Query: "paris", Page: 1, PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "1", resp.Items[0].ID)
	assert.Equal(t, "2", resp.Items[1].ID)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.PageSize)
	assert.Equal(t, "paris", resp.Query)
	assert.GreaterOrEqual(t, resp.ResponseTimeMs, 0.0)
}

func TestSearchEchoesTrimmedQuery(t *testing.T) {
	fetcher := &fakeFetcher{messages: parisMessages()}
	svc := newTestService(fetcher)

	resp, err := svc.Search(context.Background(), search.Params{Query: "  Opera  ", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, "Opera", resp.Query)
	assert.Equal(t, 1, resp.Total)
}

func TestSearchInvalidInputSkipsCache(t *testing.T) {
	fetcher := &fakeFetcher{messages: parisMessages()}
	svc := newTestService(fetcher)

	cases := []struct {
		params search.Params
		code   string
	}{
		{search.Params{Query: "   ", Page: 1, PageSize: 20}, apperrors.CodeInvalidQuery},
		{search.Params{Query: "q", Page: 0, PageSize: 20}, apperrors.CodeInvalidPage},
		{search.Params{Query: "q", Page: -1, PageSize: 20}, apperrors.CodeInvalidPage},
		{search.Params{Query: "q", Page: 1, PageSize: 0}, apperrors.CodeInvalidPageSize},
		{search.Params{Query: "q", Page: 1, PageSize: -5}, apperrors.CodeInvalidPageSize},
		{search.Params{Query: "q", Page: 1, PageSize: 101}, apperrors.CodeInvalidPageSize},
	}

	for _, tc := range cases {
		_, err := svc.Search(context.Background(), tc.params)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, tc.code))
	}

	assert.EqualValues(t, 0, fetcher.calls.Load(), "invalid input must not touch the cache")
}

func TestSearchPropagatesUpstreamError(t *testing.T) {
	fetcher := &fakeFetcher{err: apperrors.NewServiceUnavailableError(apperrors.CodeUpstreamUnavailable, "down")}
	svc := newTestService(fetcher)

	_, err := svc.Search(context.Background(), search.Params{Query: "paris", Page: 1, PageSize: 20})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable))
}

func TestSearchReusesSnapshotAcrossRequests(t *testing.T) {
	fetcher := &fakeFetcher{messages: parisMessages()}
	svc := newTestService(fetcher)

	for i := 0; i < 5; i++ {
		_, err := svc.Search(context.Background(), search.Params{Query: "paris", Page: 1, PageSize: 20})
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestListSlicesCachedMessages(t *testing.T) {
	fetcher := &fakeFetcher{messages: parisMessages()}
	svc := newTestService(fetcher)

	resp, err := svc.List(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "2", resp.Items[0].ID)
}

func TestListSkipPastEndReturnsEmpty(t *testing.T) {
	fetcher := &fakeFetcher{messages: parisMessages()}
	svc := newTestService(fetcher)

	resp, err := svc.List(context.Background(), 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestListValidatesBounds(t *testing.T) {
	fetcher := &fakeFetcher{messages: parisMessages()}
	svc := newTestService(fetcher)

	_, err := svc.List(context.Background(), -1, 100)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidSkip))

	for _, limit := range []int{0, 501} {
		_, err := svc.List(context.Background(), 0, limit)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidLimit))
	}

	assert.EqualValues(t, 0, fetcher.calls.Load())
}
