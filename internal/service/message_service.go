package service

import (
	"context"
	"time"

	"github.com/asoma0710/message-search-engine/internal/cache"
	"github.com/asoma0710/message-search-engine/internal/models"
	"github.com/asoma0710/message-search-engine/internal/search"
	apperrors "github.com/asoma0710/message-search-engine/pkg/errors"
	"github.com/asoma0710/message-search-engine/pkg/metrics"
)

// MessageService answers search and listing requests from the cached
// snapshot. It owns the request timing reported in search responses.
type MessageService struct {
	cache    *cache.SnapshotCache
	executor *search.Executor
}

// NewMessageService creates a new message service.
func NewMessageService(snapshots *cache.SnapshotCache, executor *search.Executor) *MessageService {
	return &MessageService{
		cache:    snapshots,
		executor: executor,
	}
}

// DefaultPageSize reports the page size applied when a request leaves it
// unspecified.
func (s *MessageService) DefaultPageSize() int {
	return s.executor.DefaultPageSize()
}

// Search validates params, obtains a current snapshot, and runs the
// substring scan. Validation happens before the snapshot call so bad input
// never touches the cache. The reported time covers the snapshot call too,
// which means a cache miss includes the upstream fetch.
func (s *MessageService) Search(ctx context.Context, params search.Params) (*models.SearchResponse, error) {
	params, err := s.executor.Normalize(params)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := s.executor.Search(snap.Messages, params)

	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	return &models.SearchResponse{
		Total:          result.Total,
		Items:          result.Items,
		Page:           params.Page,
		PageSize:       params.PageSize,
		Query:          params.Query,
		ResponseTimeMs: float64(elapsed.Microseconds()) / 1000.0,
	}, nil
}

// List returns a skip/limit window over the cached messages, mirroring the
// upstream listing endpoint.
func (s *MessageService) List(ctx context.Context, skip, limit int) (*models.PaginatedMessages, error) {
	if skip < 0 {
		return nil, apperrors.NewBadRequestError(apperrors.CodeInvalidSkip, "Skip must be >= 0")
	}
	if limit < 1 || limit > 500 {
		return nil, apperrors.NewBadRequestError(apperrors.CodeInvalidLimit, "Limit must be between 1 and 500")
	}

	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	total := len(snap.Messages)
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	items := snap.Messages[skip:end]
	if items == nil {
		items = []models.Message{}
	}

	return &models.PaginatedMessages{Total: total, Items: items}, nil
}
