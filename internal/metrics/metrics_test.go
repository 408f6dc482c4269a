package metrics_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/wpscraper/internal/metrics"
)

func TestCountersStartAtZero(t *testing.T) {
	t.Parallel()

	m := metrics.New()

	assert.Zero(t, m.GetSuccessfulRequests())
	assert.Zero(t, m.GetFailedRequests())
	assert.Zero(t, m.GetRetriedRequests())
	assert.False(t, m.StartTime.IsZero())
}

func TestConcurrentIncrements(t *testing.T) {
	t.Parallel()

	m := metrics.New()

	const goroutines = 20

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementSuccessfulRequests()
			m.IncrementFailedRequests()
			m.IncrementRetriedRequests()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines), m.GetSuccessfulRequests())
	assert.Equal(t, int64(goroutines), m.GetFailedRequests())
	assert.Equal(t, int64(goroutines), m.GetRetriedRequests())
}
