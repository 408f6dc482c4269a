// Package fetcher performs the HTTP page fetching for the scraper, with
// bounded timeouts, retry on transient network failures, and status-code
// classification.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonesrussell/wpscraper/internal/logger"
	"github.com/jonesrussell/wpscraper/internal/metrics"
	"github.com/jonesrussell/wpscraper/internal/retry"
)

// Status codes handled explicitly when classifying responses.
const (
	statusOK       = 200
	statusNotFound = 404
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

var (
	// ErrNotFound is returned for HTTP 404 responses. The orchestrator treats
	// it as the end-of-pagination signal, not an error.
	ErrNotFound = errors.New("page not found")
	// ErrHTTPStatus is returned for any non-2xx status besides 404.
	// These are reported but never retried.
	ErrHTTPStatus = errors.New("unexpected http status")
)

// Session fetches pages over a persistent connection pool. One Session is
// scoped to a single crawl invocation and must not be shared across
// concurrent crawls.
type Session struct {
	client   *http.Client
	headers  http.Header
	retryCfg retry.Config
	log      logger.Interface
	stats    *metrics.Metrics
}

// NewSession creates a session with the fixed browser-like header set and a
// keep-alive connection pool. A nil stats is replaced with a fresh counter
// set so callers that do not report metrics need no special handling.
func NewSession(cfg Config, log logger.Interface, stats *metrics.Metrics) *Session {
	cfg = cfg.WithDefaults()
	if stats == nil {
		stats = metrics.New()
	}

	headers := http.Header{}
	headers.Set("User-Agent", cfg.UserAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	headers.Set("Accept-Language", "en-US,en;q=0.9,id;q=0.8")
	headers.Set("Connection", "keep-alive")

	return &Session{
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: &http.Transport{MaxIdleConnsPerHost: 4},
		},
		headers: headers,
		retryCfg: retry.Config{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.BackoffBase,
			IsRetryable: isTransient,
		},
		log:   log,
		stats: stats,
	}
}

// Fetch performs an HTTP GET and returns the page body.
// Transient network failures are retried with exponential backoff; HTTP-level
// failures are returned immediately as ErrNotFound or ErrHTTPStatus.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	var (
		body     string
		attempts int
	)

	err := retry.Do(ctx, s.retryCfg, func() error {
		attempts++
		// Only re-invocations count as retries, not the failed attempts
		// themselves.
		if attempts > 1 {
			s.stats.IncrementRetriedRequests()
		}

		b, fetchErr := s.fetchOnce(ctx, url)
		if fetchErr != nil {
			if isTransient(fetchErr) {
				s.log.Warn("connection error, will retry", "url", url, "error", fetchErr.Error())
			}
			return fetchErr
		}
		body = b
		return nil
	})
	if err != nil {
		// A 404 ends pagination normally and is not counted as a failure.
		if !errors.Is(err, ErrNotFound) {
			s.stats.IncrementFailedRequests()
		}
		return "", err
	}

	s.stats.IncrementSuccessfulRequests()

	return body, nil
}

// Close releases idle connections held by the session's pool.
func (s *Session) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// fetchOnce issues a single GET request and classifies the response.
func (s *Session) fetchOnce(ctx context.Context, url string) (string, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if reqErr != nil {
		return "", fmt.Errorf("create request: %w", reqErr)
	}

	for key, vals := range s.headers {
		for _, val := range vals {
			req.Header.Set(key, val)
		}
	}

	resp, doErr := s.client.Do(req)
	if doErr != nil {
		return "", fmt.Errorf("http fetch: %w", doErr)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == statusNotFound:
		return "", ErrNotFound
	case resp.StatusCode < statusOK || resp.StatusCode >= 300:
		return "", fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes)

	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return "", fmt.Errorf("read response body: %w", readErr)
	}

	return string(body), nil
}

// isTransient reports whether an error is a transient network failure worth
// retrying. HTTP-level classifications are always terminal.
func isTransient(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrHTTPStatus) {
		return false
	}
	// A cancelled context means the run is being interrupted, not a flaky
	// network. Timeouts (context.DeadlineExceeded from the client timeout)
	// stay retryable.
	if errors.Is(err, context.Canceled) {
		return false
	}
	return retry.DefaultIsRetryable(err)
}
