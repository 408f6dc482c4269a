// Package metrics tracks per-run request counters for the scraper.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the request counters for a single scrape run. All methods
// are safe for concurrent use.
type Metrics struct {
	// StartTime is when the run began.
	StartTime time.Time
	// SuccessfulRequests is the number of HTTP requests that returned a page.
	SuccessfulRequests int64
	// FailedRequests is the number of fetches that failed after all retries.
	FailedRequests int64
	// RetriedRequests is the number of attempts that hit a transient error
	// and were retried.
	RetriedRequests int64
	// mu protects concurrent access to the counters.
	mu sync.Mutex
}

// New creates a Metrics instance with the start time set to now.
func New() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// IncrementSuccessfulRequests increments the successful requests counter.
func (m *Metrics) IncrementSuccessfulRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulRequests++
}

// GetSuccessfulRequests returns the number of successful requests.
func (m *Metrics) GetSuccessfulRequests() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SuccessfulRequests
}

// IncrementFailedRequests increments the failed requests counter.
func (m *Metrics) IncrementFailedRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedRequests++
}

// GetFailedRequests returns the number of failed requests.
func (m *Metrics) GetFailedRequests() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailedRequests
}

// IncrementRetriedRequests increments the retried attempts counter.
func (m *Metrics) IncrementRetriedRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetriedRequests++
}

// GetRetriedRequests returns the number of retried attempts.
func (m *Metrics) GetRetriedRequests() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RetriedRequests
}

// Elapsed returns the time since the run began.
func (m *Metrics) Elapsed() time.Duration {
	return time.Since(m.StartTime)
}
