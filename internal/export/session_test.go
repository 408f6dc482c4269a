package export_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/wpscraper/internal/export"
	"github.com/jonesrussell/wpscraper/internal/logger"
)

func TestSlugifyDomain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		url  string
		want string
	}{
		{"subdomain", "https://blog.example.com/food", "blog_example_com"},
		{"bare domain", "https://example.com", "example_com"},
		{"port", "https://example.com:8080/cat/", "example_com_8080"},
		{"no scheme", "example.com/cat", "example_com_cat"},
		{"uppercase", "https://News.Example.COM/", "news_example_com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, export.SlugifyDomain(tc.url))
		})
	}
}

func TestSessionDir_CreatesTimestampedDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	dir, err := export.SessionDir("https://blog.example.com/food", root, logger.NewNoOp())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	name := filepath.Base(dir)
	assert.True(t, strings.HasPrefix(name, "blog_example_com_"), "got %s", name)
}

func TestSessionDir_Idempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	seed := "https://blog.example.com/food"

	first, err := export.SessionDir(seed, root, logger.NewNoOp())
	require.NoError(t, err)

	// Same second, same name: creation must not fail.
	second, err := export.SessionDir(seed, root, logger.NewNoOp())
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(first), filepath.Dir(second))
}

func TestSessionDir_FallsBackOnUnusableSlug(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	dir, err := export.SessionDir("", root, logger.NewNoOp())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "default_session"), dir)
}
