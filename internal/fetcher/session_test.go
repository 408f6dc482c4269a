package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/wpscraper/internal/fetcher"
	"github.com/jonesrussell/wpscraper/internal/logger"
	"github.com/jonesrussell/wpscraper/internal/metrics"
	"github.com/jonesrussell/wpscraper/internal/retry"
)

// fastConfig keeps retry backoff in the millisecond range for tests.
func fastConfig() fetcher.Config {
	return fetcher.Config{
		RequestTimeout: 2 * time.Second,
		MaxRetries:     3,
		BackoffBase:    5 * time.Millisecond,
	}
}

func newTestSession(cfg fetcher.Config) *fetcher.Session {
	return fetcher.NewSession(cfg, logger.NewNoOp(), nil)
}

func TestFetch_ReturnsBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	session := newTestSession(fastConfig())
	defer session.Close()

	body, err := session.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)
}

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer server.Close()

	session := newTestSession(fastConfig())
	defer session.Close()

	_, err := session.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "text/html")
}

func TestFetch_NotFoundIsTerminal(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	session := newTestSession(fastConfig())
	defer session.Close()

	_, err := session.Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, fetcher.ErrNotFound)
	// 404 is the end-of-pagination signal: never retried.
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetch_ServerErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	session := newTestSession(fastConfig())
	defer session.Close()

	_, err := session.Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, fetcher.ErrHTTPStatus)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	// The first two requests die mid-connection; the third succeeds.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, hijackErr := hj.Hijack()
			require.NoError(t, hijackErr)
			conn.Close()
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	session := newTestSession(fastConfig())
	defer session.Close()

	body, err := session.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", body)
	assert.Equal(t, int32(3), requests.Load())
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, hijackErr := hj.Hijack()
		require.NoError(t, hijackErr)
		conn.Close()
	}))
	defer server.Close()

	stats := metrics.New()
	session := fetcher.NewSession(fastConfig(), logger.NewNoOp(), stats)
	defer session.Close()

	_, err := session.Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)

	// Three attempts mean two retries: the first attempt is not a retry.
	assert.Equal(t, int64(2), stats.GetRetriedRequests())
	assert.Equal(t, int64(1), stats.GetFailedRequests())
	assert.Zero(t, stats.GetSuccessfulRequests())
}

func TestFetch_RecordsRequestCounters(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, hijackErr := hj.Hijack()
			require.NoError(t, hijackErr)
			conn.Close()
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	stats := metrics.New()
	session := fetcher.NewSession(fastConfig(), logger.NewNoOp(), stats)
	defer session.Close()

	_, err := session.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.GetSuccessfulRequests())
	assert.Equal(t, int64(1), stats.GetRetriedRequests())
	assert.Zero(t, stats.GetFailedRequests())
}

func TestFetch_ConnectionRefusedExhaustsRetries(t *testing.T) {
	t.Parallel()

	// Bind a port, then close it so connections are refused.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	session := newTestSession(fastConfig())
	defer session.Close()

	_, err := session.Fetch(context.Background(), url)
	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
}
