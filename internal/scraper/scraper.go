// Package scraper drives the pagination crawl: it walks /page/N/ URLs from a
// seed category page, accumulates deduplicated articles, and stops on a fetch
// failure, an empty page, or a pagination loop.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonesrussell/wpscraper/internal/domain"
	"github.com/jonesrussell/wpscraper/internal/extractor"
	"github.com/jonesrussell/wpscraper/internal/fetcher"
	"github.com/jonesrussell/wpscraper/internal/logger"
)

// Fetcher fetches a single page. *fetcher.Session satisfies this; tests
// substitute stubs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Termination identifies why a crawl stopped. All terminations are ordinary:
// the crawl returns whatever was collected up to that point.
type Termination string

const (
	// TerminationFetch means a page could not be fetched (end of content,
	// exhausted retries, or a non-404 HTTP error; no distinction is made).
	TerminationFetch Termination = "fetch_failed"
	// TerminationEmpty means the last page contained no article links.
	TerminationEmpty Termination = "no_articles"
	// TerminationLoop means the last page contributed no unseen URLs,
	// e.g. WordPress redirecting an out-of-range page back to page 1.
	TerminationLoop Termination = "pagination_loop"
	// TerminationCancelled means the run was interrupted.
	TerminationCancelled Termination = "cancelled"
)

// ErrInvalidSeed is returned when a seed URL cannot be parsed into an
// absolute http(s) URL.
var ErrInvalidSeed = errors.New("invalid seed url")

// Scraper crawls one category listing at a time. It owns no shared state;
// each Crawl call builds its own seen-set and result list.
type Scraper struct {
	fetcher Fetcher
	delay   time.Duration
	log     logger.Interface
}

// New creates a scraper that fetches through the given fetcher and sleeps
// delay between page requests.
func New(f Fetcher, delay time.Duration, log logger.Interface) *Scraper {
	return &Scraper{
		fetcher: f,
		delay:   delay,
		log:     log,
	}
}

// NormalizeBase ensures the seed URL ends with exactly one trailing slash so
// that "page/N/" segments append cleanly.
func NormalizeBase(seedURL string) string {
	return strings.TrimRight(seedURL, "/") + "/"
}

// Crawl walks the pagination of seedURL and returns the deduplicated articles
// in first-seen order together with the termination reason. The error is
// non-nil only for failures outside the normal termination taxonomy (an
// unparseable seed, broken HTML parsing); fetch failures terminate normally.
func (s *Scraper) Crawl(ctx context.Context, seedURL string) ([]domain.Article, Termination, error) {
	parsed, err := url.Parse(seedURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, TerminationFetch, fmt.Errorf("%w: %q", ErrInvalidSeed, seedURL)
	}

	base := NormalizeBase(seedURL)
	seen := make(map[string]struct{})

	var collected []domain.Article

	s.log.Info("starting crawl", "base_url", base)

	for page := 1; ; page++ {
		target := base
		if page > 1 {
			target = fmt.Sprintf("%spage/%d/", base, page)
		}

		s.log.Info("fetching page", "page", page, "url", target)

		html, fetchErr := s.fetcher.Fetch(ctx, target)
		if fetchErr != nil {
			if ctx.Err() != nil {
				s.log.Info("crawl interrupted", "page", page)
				return collected, TerminationCancelled, nil
			}
			if errors.Is(fetchErr, fetcher.ErrNotFound) {
				s.log.Info("stopping: end of content", "page", page)
			} else {
				s.log.Warn("stopping: fetch failed", "page", page, "error", fetchErr.Error())
			}
			return collected, TerminationFetch, nil
		}

		pageArticles, extractErr := extractor.Extract(html, base)
		if extractErr != nil {
			return collected, TerminationFetch, fmt.Errorf("extract page %d: %w", page, extractErr)
		}

		if len(pageArticles) == 0 {
			s.log.Info("stopping: no articles on page", "page", page)
			return collected, TerminationEmpty, nil
		}

		// Loop check before merging: if every URL on this page has been seen
		// already, the site is cycling and nothing new will ever appear.
		if allSeen(pageArticles, seen) {
			s.log.Info("stopping: pagination loop detected", "page", page)
			return collected, TerminationLoop, nil
		}

		newCount := 0
		for _, article := range pageArticles {
			if _, ok := seen[article.URL]; ok {
				continue
			}
			seen[article.URL] = struct{}{}
			collected = append(collected, article)
			newCount++
		}

		s.log.Info("page scraped", "page", page, "new_articles", newCount, "total", len(collected))

		// Politeness delay before the next page, interruptible.
		select {
		case <-ctx.Done():
			s.log.Info("crawl interrupted", "page", page)
			return collected, TerminationCancelled, nil
		case <-time.After(s.delay):
		}
	}
}

// allSeen reports whether every article URL on the page is already in seen.
func allSeen(articles []domain.Article, seen map[string]struct{}) bool {
	for _, article := range articles {
		if _, ok := seen[article.URL]; !ok {
			return false
		}
	}
	return true
}
