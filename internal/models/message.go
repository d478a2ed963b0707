package models

import (
	"time"
)

// Message is a single chat message as served by the upstream dataset.
// Messages are immutable once fetched; snapshots hold them in upstream order.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"message"`
}

// SearchResponse is the payload returned by GET /search.
type SearchResponse struct {
	Total          int       `json:"total"`
	Items          []Message `json:"items"`
	Page           int       `json:"page"`
	PageSize       int       `json:"page_size"`
	Query          string    `json:"query"`
	ResponseTimeMs float64   `json:"response_time_ms"`
}

// PaginatedMessages is the payload returned by GET /messages/. It mirrors the
// shape of the upstream listing endpoint so clients can switch between the
// two without changes.
type PaginatedMessages struct {
	Total int       `json:"total"`
	Items []Message `json:"items"`
}
