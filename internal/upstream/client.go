// Package upstream talks to the external messages API that owns the dataset.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/asoma0710/message-search-engine/internal/models"
	"github.com/asoma0710/message-search-engine/pkg/config"
	apperrors "github.com/asoma0710/message-search-engine/pkg/errors"
	"github.com/asoma0710/message-search-engine/pkg/logger"
	"github.com/asoma0710/message-search-engine/pkg/metrics"
)

// Fetcher is the interface the cache depends on. It returns the full message
// listing the service searches over.
type Fetcher interface {
	ListMessages(ctx context.Context) ([]models.Message, error)
}

// Client is an HTTP client for the upstream /messages/ endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	skip    int
	limit   int
	log     *logger.Logger
}

// listing matches the upstream envelope {"total": ..., "items": [...]}.
type listing struct {
	Total int              `json:"total"`
	Items []models.Message `json:"items"`
}

// NewClient creates a client from config. The client follows redirects,
// which the upstream relies on for its /messages -> /messages/ redirect.
func NewClient(log *logger.Logger) *Client {
	cfg := config.Get()
	return &Client{
		client:  &http.Client{Timeout: cfg.Upstream.Timeout},
		baseURL: cfg.Upstream.BaseURL,
		skip:    cfg.Upstream.FetchSkip,
		limit:   cfg.Upstream.PageLimit,
		log:     log,
	}
}

// NewClientWith creates a client with explicit settings, used by tests.
func NewClientWith(baseURL string, timeout time.Duration, skip, limit int, log *logger.Logger) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		skip:    skip,
		limit:   limit,
		log:     log,
	}
}

// ListMessages fetches one page of messages from the upstream API.
// Network errors and timeouts surface as UPSTREAM_UNAVAILABLE (503),
// non-2xx responses as UPSTREAM_UNAVAILABLE (502), and undecodable payloads
// as UPSTREAM_MALFORMED (502).
func (c *Client) ListMessages(ctx context.Context) ([]models.Message, error) {
	endpoint := c.baseURL + "/messages/"
	q := url.Values{}
	q.Set("skip", strconv.Itoa(c.skip))
	q.Set("limit", strconv.Itoa(c.limit))

	c.log.Info("Fetching messages from upstream",
		"endpoint", endpoint,
		"skip", c.skip,
		"limit", c.limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewInternalServerError("INTERNAL_ERROR", fmt.Sprintf("building upstream request: %s", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		c.log.LogError(err, "Upstream request failed", "endpoint", endpoint)
		return nil, apperrors.NewServiceUnavailableError(
			apperrors.CodeUpstreamUnavailable,
			fmt.Sprintf("Error reaching external messages API: %s", err),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		c.log.Error("Unexpected status from upstream", "status", resp.StatusCode)
		return nil, apperrors.NewBadGatewayError(
			apperrors.CodeUpstreamUnavailable,
			fmt.Sprintf("Unexpected status from external messages API: %d", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return nil, apperrors.NewServiceUnavailableError(
			apperrors.CodeUpstreamUnavailable,
			fmt.Sprintf("Error reading upstream response: %s", err),
		)
	}

	messages, err := decodeListing(body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeMalformed).Inc()
		c.log.LogError(err, "Failed to decode upstream response")
		return nil, apperrors.NewBadGatewayError(
			apperrors.CodeUpstreamMalformed,
			fmt.Sprintf("Upstream response does not parse into messages: %s", err),
		)
	}

	metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	c.log.Info("Upstream returned messages", "count", len(messages))
	return messages, nil
}

// decodeListing accepts both the {"total", "items"} envelope and a bare
// JSON array of messages.
func decodeListing(body []byte) ([]models.Message, error) {
	var envelope listing
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Items != nil {
		return envelope.Items, nil
	}

	var items []models.Message
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, err
	}
	return items, nil
}
