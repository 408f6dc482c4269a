package export

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonesrussell/wpscraper/internal/scraper"
)

// RenderSummary formats the per-seed run results as a table.
func RenderSummary(w io.Writer, results []scraper.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Seed", "Articles", "Stopped"})

	for _, result := range results {
		stopped := string(result.Termination)
		if result.Err != nil {
			stopped = "error: " + result.Err.Error()
		}

		t.AppendRow(table.Row{result.Seed, len(result.Articles), stopped})
	}

	t.Render()
}
