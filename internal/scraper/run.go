package scraper

import (
	"context"
	"io"
	"time"

	"github.com/jonesrussell/wpscraper/internal/domain"
	"github.com/jonesrussell/wpscraper/internal/logger"
)

// SessionFactory creates a fresh fetcher per seed so each crawl gets its own
// connection pool. The returned fetcher is closed after the crawl when it
// implements io.Closer.
type SessionFactory func() Fetcher

// Result captures the outcome of crawling one seed URL.
type Result struct {
	Seed        string
	Articles    []domain.Article
	Termination Termination
	Err         error
}

// Summary aggregates the results of a multi-seed run.
type Summary struct {
	Results  []Result
	Articles []domain.Article
	// Failed is true when at least one seed ended in an unexpected error.
	Failed bool
	// Interrupted is true when the run was cut short by context cancellation.
	Interrupted bool
}

// Runner processes seed URLs sequentially, isolating failures so one broken
// seed never aborts the rest of the run.
type Runner struct {
	newSession SessionFactory
	delay      time.Duration
	log        logger.Interface
}

// NewRunner creates a runner that crawls each seed with a session from the
// given factory.
func NewRunner(newSession SessionFactory, delay time.Duration, log logger.Interface) *Runner {
	return &Runner{
		newSession: newSession,
		delay:      delay,
		log:        log,
	}
}

// Run crawls each seed in order and aggregates the collected articles.
// Articles keep first-seen order across seeds; per-URL deduplication across
// seeds is left to the export sink.
func (r *Runner) Run(ctx context.Context, seeds []string) Summary {
	var summary Summary

	for _, seed := range seeds {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		r.log.Info("scraping category target", "url", seed)

		result := r.runSeed(ctx, seed)
		summary.Results = append(summary.Results, result)
		summary.Articles = append(summary.Articles, result.Articles...)

		if result.Err != nil {
			summary.Failed = true
			r.log.Error("error scraping seed, continuing with next", "url", seed, "error", result.Err.Error())
			continue
		}

		if result.Termination == TerminationCancelled {
			summary.Interrupted = true
		}

		r.log.Info("seed finished",
			"url", seed,
			"articles", len(result.Articles),
			"termination", string(result.Termination),
		)
	}

	if ctx.Err() != nil {
		summary.Interrupted = true
	}

	return summary
}

// runSeed crawls a single seed with its own session.
func (r *Runner) runSeed(ctx context.Context, seed string) Result {
	session := r.newSession()
	if closer, ok := session.(io.Closer); ok {
		defer closer.Close()
	}

	articles, termination, err := New(session, r.delay, r.log).Crawl(ctx, seed)

	return Result{
		Seed:        seed,
		Articles:    articles,
		Termination: termination,
		Err:         err,
	}
}
