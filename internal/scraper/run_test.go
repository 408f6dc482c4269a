package scraper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/wpscraper/internal/logger"
	"github.com/jonesrussell/wpscraper/internal/scraper"
)

// closeTrackingFetcher wraps stubFetcher and records whether the runner
// closed the session after the seed finished.
type closeTrackingFetcher struct {
	stubFetcher
	closed bool
}

func (f *closeTrackingFetcher) Close() error {
	f.closed = true
	return nil
}

func TestRun_IsolatesFailingSeeds(t *testing.T) {
	t.Parallel()

	stub := &stubFetcher{pages: map[string]string{
		pageURL(1): listingHTML("a1", "a2", "a3"),
	}}
	runner := scraper.NewRunner(func() scraper.Fetcher { return stub }, 0, logger.NewNoOp())

	// The first seed fails outside the normal termination taxonomy; the
	// second one still runs to completion.
	summary := runner.Run(context.Background(), []string{"not a url", testSeed})

	assert.True(t, summary.Failed)
	assert.False(t, summary.Interrupted)
	require.Len(t, summary.Results, 2)
	require.ErrorIs(t, summary.Results[0].Err, scraper.ErrInvalidSeed)
	require.NoError(t, summary.Results[1].Err)

	// The good seed's articles are still collected for export.
	assert.Len(t, summary.Articles, 3)
}

func TestRun_AggregatesAcrossSeeds(t *testing.T) {
	t.Parallel()

	sessions := 0
	newSession := func() scraper.Fetcher {
		sessions++
		return &stubFetcher{pages: map[string]string{
			pageURL(1): listingHTML("a1", "a2"),
		}}
	}

	runner := scraper.NewRunner(newSession, 0, logger.NewNoOp())
	summary := runner.Run(context.Background(), []string{testSeed, testSeed})

	assert.False(t, summary.Failed)
	// Each seed gets its own session (connection pool).
	assert.Equal(t, 2, sessions)
	// Cross-seed duplicates are passed through; the export sink dedupes.
	assert.Len(t, summary.Articles, 4)
}

func TestRun_ClosesSessions(t *testing.T) {
	t.Parallel()

	fetcherStub := &closeTrackingFetcher{}
	runner := scraper.NewRunner(func() scraper.Fetcher { return fetcherStub }, 0, logger.NewNoOp())

	runner.Run(context.Background(), []string{testSeed})

	assert.True(t, fetcherStub.closed)
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	runner := scraper.NewRunner(func() scraper.Fetcher {
		calls++
		return &stubFetcher{}
	}, 0, logger.NewNoOp())

	summary := runner.Run(ctx, []string{testSeed, testSeed})

	assert.True(t, summary.Interrupted)
	assert.Zero(t, calls)
	assert.Empty(t, summary.Results)
}
