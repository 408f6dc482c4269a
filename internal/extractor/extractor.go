// Package extractor parses category listing HTML and extracts article links.
// It is a pure function layer: no I/O, no shared state, and no deduplication
// (duplicate anchors on one page yield duplicate entries).
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/wpscraper/internal/domain"
)

// excludedPathSubstrings are URL path substrings that indicate
// non-article WordPress pages or assets.
var excludedPathSubstrings = []string{
	"/category/",
	"/tag/",
	"/page/",
	"/author/",
	"/wp-content/",
	"/wp-json/",
	"/wp-includes/",
	"/feed/",
	"/comments/",
}

// Extract parses the given HTML and returns article links found in anchor
// tags. Anchors without visible text or an href are skipped; hrefs are
// resolved against baseURL and filtered to same-host article-like URLs.
func Extract(html, baseURL string) ([]domain.Article, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var articles []domain.Article

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if title == "" || href == "" {
			return
		}

		ref, parseErr := url.Parse(strings.TrimSpace(href))
		if parseErr != nil {
			return
		}

		resolved := base.ResolveReference(ref)
		if !isArticleURL(resolved, base.Host) {
			return
		}

		articles = append(articles, domain.Article{
			Title: title,
			URL:   resolved.String(),
		})
	})

	return articles, nil
}

// isArticleURL reports whether a resolved URL is an article candidate:
// same host as the seed, a non-root path, no fragment, and no excluded
// WordPress path segment.
func isArticleURL(u *url.URL, baseHost string) bool {
	if u.Host != baseHost {
		return false
	}

	if u.Path == "" || u.Path == "/" {
		return false
	}

	// Fragment-only and anchored links (e.g. "#respond", "/post/#comments")
	// never identify a distinct article.
	if u.Fragment != "" {
		return false
	}

	for _, segment := range excludedPathSubstrings {
		if strings.Contains(u.Path, segment) {
			return false
		}
	}

	return true
}
