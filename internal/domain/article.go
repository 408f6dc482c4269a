// Package domain provides domain models used across the application.
package domain

// Article represents an article link extracted from a category listing page.
// Identity is the URL: two articles with the same URL are the same article,
// regardless of title.
type Article struct {
	// Title is the anchor text of the article link
	Title string `json:"title" mapstructure:"title"`
	// URL is the absolute, resolved article URL
	URL string `json:"url" mapstructure:"url"`
}
