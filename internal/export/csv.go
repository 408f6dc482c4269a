// Package export writes collected articles to disk and renders run summaries.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonesrussell/wpscraper/internal/domain"
	"github.com/jonesrussell/wpscraper/internal/logger"
)

// FileName is the name of the exported CSV file inside the session directory.
const FileName = "articles.csv"

// utf8BOM is prepended so spreadsheet tools (Excel in particular) detect the
// encoding and render non-ASCII titles correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSink writes articles as a CSV file into a session directory.
type CSVSink struct {
	dir string
	log logger.Interface
}

// NewCSVSink creates a sink that writes into dir.
func NewCSVSink(dir string, log logger.Interface) *CSVSink {
	return &CSVSink{
		dir: dir,
		log: log,
	}
}

// Write deduplicates articles by URL (keeping the first occurrence) and
// writes them as title,url rows. It returns the written file path. Errors
// here surface to the caller: a failed export loses the whole run's work.
// Writing an empty list is skipped with a warning.
func (s *CSVSink) Write(articles []domain.Article) (string, error) {
	if len(articles) == 0 {
		s.log.Warn("no articles collected to save")
		return "", nil
	}

	unique := dedupeByURL(articles)
	if dropped := len(articles) - len(unique); dropped > 0 {
		s.log.Info("removed duplicate articles", "count", dropped)
	}

	path := filepath.Join(s.dir, FileName)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	if _, err = file.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("write bom: %w", err)
	}

	writer := csv.NewWriter(file)

	if err = writer.Write([]string{"title", "url"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, article := range unique {
		if err = writer.Write([]string{article.Title, article.URL}); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	s.log.Info("saved unique articles", "count", len(unique), "path", path)

	return path, nil
}

// dedupeByURL removes later occurrences of already-seen URLs, preserving
// order. The first-encountered title wins.
func dedupeByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]domain.Article, 0, len(articles))

	for _, article := range articles {
		if _, ok := seen[article.URL]; ok {
			continue
		}
		seen[article.URL] = struct{}{}
		unique = append(unique, article)
	}

	return unique
}
