package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/asoma0710/message-search-engine/pkg/errors"
	"github.com/asoma0710/message-search-engine/pkg/logger"
)

func testLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = io.Discard
	return logger.New(cfg)
}

func testClient(baseURL string) *Client {
	return NewClientWith(baseURL, 2*time.Second, 0, 100, testLogger())
}

func TestListMessagesDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"total": 2,
			"items": [
				{"id": "a", "user_id": "u1", "user_name": "Alice", "timestamp": "2024-01-01T10:00:00Z", "message": "Book a flight to Paris"},
				{"id": "b", "user_id": "u2", "user_name": "Bob", "timestamp": "2024-01-01T11:00:00Z", "message": "Opera tickets"}
			]
		}`)
	}))
	defer server.Close()

	messages, err := testClient(server.URL).ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "a", messages[0].ID)
	assert.Equal(t, "Alice", messages[0].UserName)
	assert.Equal(t, "Book a flight to Paris", messages[0].Content)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), messages[0].Timestamp.UTC())
}

func TestListMessagesDecodesBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": "a", "user_id": "u1", "user_name": "Alice", "timestamp": "2024-01-01T10:00:00Z", "message": "hello"}]`)
	}))
	defer server.Close()

	messages, err := testClient(server.URL).ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestListMessagesFollowsRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirected/" {
			io.WriteString(w, `{"total": 0, "items": []}`)
			return
		}
		http.Redirect(w, r, "/redirected/", http.StatusTemporaryRedirect)
	}))
	defer server.Close()

	messages, err := testClient(server.URL).ListMessages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestListMessagesNon200IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListMessages(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable))
	assert.Equal(t, http.StatusBadGateway, apperrors.GetStatusCode(err))
}

func TestListMessagesNetworkErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // shut it down so the request fails to connect

	_, err := testClient(server.URL).ListMessages(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.GetStatusCode(err))
}

func TestListMessagesBadJSONIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"total": "not a listing"`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListMessages(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamMalformed))
}

func TestListMessagesWrongShapeIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"unexpected": true}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListMessages(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamMalformed))
}
