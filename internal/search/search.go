// Package search filters and paginates message snapshots.
package search

import (
	"fmt"
	"strings"

	"github.com/asoma0710/message-search-engine/internal/models"
	apperrors "github.com/asoma0710/message-search-engine/pkg/errors"
)

// Params carries a search request. Defaults for absent parameters are
// applied at the request boundary; by the time Params reach Normalize,
// Page and PageSize must hold the values the caller asked for.
type Params struct {
	Query    string
	Page     int
	PageSize int
}

// Result is the outcome of one search over a snapshot.
type Result struct {
	Total int
	Items []models.Message
}

// Executor validates parameters and runs the linear substring scan.
type Executor struct {
	defaultPageSize int
	maxPageSize     int
}

// NewExecutor creates an executor with the given pagination bounds.
func NewExecutor(defaultPageSize, maxPageSize int) *Executor {
	return &Executor{
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// DefaultPageSize returns the page size used when a request leaves it
// unspecified.
func (e *Executor) DefaultPageSize() int {
	return e.defaultPageSize
}

// Normalize trims the query and validates bounds. An explicit zero is as
// invalid as a negative value; "absent" never reaches this far.
// It must run before any cache access so invalid input never triggers a fetch.
func (e *Executor) Normalize(p Params) (Params, error) {
	p.Query = strings.TrimSpace(p.Query)
	if p.Query == "" {
		return p, apperrors.NewBadRequestError(apperrors.CodeInvalidQuery, "Query must not be empty")
	}

	if p.Page < 1 {
		return p, apperrors.NewBadRequestError(apperrors.CodeInvalidPage, "Page must be >= 1")
	}

	if p.PageSize < 1 || p.PageSize > e.maxPageSize {
		return p, apperrors.NewBadRequestError(
			apperrors.CodeInvalidPageSize,
			fmt.Sprintf("Page size must be between 1 and %d", e.maxPageSize),
		)
	}

	return p, nil
}

// Search scans the messages for case-insensitive substring matches of the
// query and returns the requested page. Matches keep the snapshot's relative
// order; a page past the last match yields empty items with the true total.
// Params must already be normalized.
func (e *Executor) Search(messages []models.Message, p Params) Result {
	needle := strings.ToLower(p.Query)

	var matches []models.Message
	for _, msg := range messages {
		if strings.Contains(strings.ToLower(msg.Content), needle) {
			matches = append(matches, msg)
		}
	}

	total := len(matches)

	// Compare before multiplying so a huge page number cannot overflow.
	start := total
	if p.Page-1 <= total/p.PageSize {
		start = (p.Page - 1) * p.PageSize
		if start > total {
			start = total
		}
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	// Slice into the match list; never nil so the JSON stays an array.
	items := matches[start:end]
	if items == nil {
		items = []models.Message{}
	}

	return Result{Total: total, Items: items}
}
