package export

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jonesrussell/wpscraper/internal/logger"
)

// fallbackDirName is used when a session directory cannot be derived from
// the seed URL.
const fallbackDirName = "default_session"

// sessionTimeFormat timestamps session directories, e.g. 20260830_142501.
const sessionTimeFormat = "20060102_150405"

// nonSlugChars matches characters replaced with underscores when turning a
// domain into a directory-safe label.
var nonSlugChars = regexp.MustCompile(`[^\w\s-]`)

// SlugifyDomain turns a URL's domain into a filesystem-safe label,
// e.g. "https://blog.example.com/food" -> "blog_example_com".
func SlugifyDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	domain := parsed.Host
	if domain == "" {
		// Fall back to the path for URLs missing a scheme.
		domain = parsed.Path
	}

	return strings.ToLower(strings.TrimSpace(nonSlugChars.ReplaceAllString(domain, "_")))
}

// SessionDir creates and returns a per-run output directory under rootDir,
// named from the seed's domain and a creation timestamp. Creation is
// idempotent. When the name cannot be derived or created, it falls back to a
// fixed default subdirectory.
func SessionDir(seedURL, rootDir string, log logger.Interface) (string, error) {
	slug := SlugifyDomain(seedURL)

	if slug != "" {
		path := filepath.Join(rootDir, slug+"_"+time.Now().Format(sessionTimeFormat))

		err := os.MkdirAll(path, 0o755)
		if err == nil {
			return path, nil
		}

		log.Error("failed to create session directory, falling back", "path", path, "error", err.Error())
	}

	fallback := filepath.Join(rootDir, fallbackDirName)
	if err := os.MkdirAll(fallback, 0o755); err != nil {
		return "", fmt.Errorf("create fallback output directory: %w", err)
	}

	return fallback, nil
}
