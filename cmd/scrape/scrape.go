// Package scrape implements the scrape command: it crawls one or more seed
// category URLs sequentially, exports the aggregated articles to CSV, and
// maps run outcomes to exit codes.
package scrape

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/wpscraper/internal/config"
	"github.com/jonesrussell/wpscraper/internal/export"
	"github.com/jonesrussell/wpscraper/internal/fetcher"
	"github.com/jonesrussell/wpscraper/internal/logger"
	"github.com/jonesrussell/wpscraper/internal/metrics"
	"github.com/jonesrussell/wpscraper/internal/scraper"
)

var (
	// ErrRunFailed indicates at least one seed ended in an error, so the run
	// is reported as a partial or total failure.
	ErrRunFailed = errors.New("scrape finished with errors")
	// ErrInterrupted indicates the run was cut short by the user. Collected
	// articles are still exported before this is returned.
	ErrInterrupted = errors.New("scrape interrupted")
)

// Command returns the scrape command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape URL [URL...]",
		Short: "Scrape article links from WordPress category pages",
		Long: `Crawls each category URL, following /page/N/ pagination until the site runs
out of content, and writes the deduplicated title/url pairs to a CSV file in
a per-run session directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd); err != nil {
				return err
			}
			return run(cmd, args)
		},
	}

	cmd.Flags().Duration("delay", config.DefaultDelay, "politeness delay between page requests")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "per-request timeout")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "root directory for session output")

	return cmd
}

// bindFlags binds the scrape flags into viper so they merge with env and file config.
func bindFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"scraper.delay":                   "delay",
		"scraper.fetcher.request_timeout": "timeout",
		"scraper.output_dir":              "output-dir",
	}

	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	return nil
}

// run executes the full scrape: crawl all seeds, export, render the summary.
func run(cmd *cobra.Command, seeds []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	log = log.With("run_id", uuid.NewString())

	log.Info("scraper initialized",
		"seeds", len(seeds),
		"delay", cfg.Delay.String(),
		"timeout", cfg.Fetcher.RequestTimeout.String(),
	)

	// Session directory is derived from the first seed, created up front so
	// export cannot fail on a missing directory after a long crawl.
	sessionDir, err := export.SessionDir(seeds[0], cfg.OutputDir, log)
	if err != nil {
		return err
	}
	log.Info("output directory ready", "path", sessionDir)

	stats := metrics.New()

	runner := scraper.NewRunner(func() scraper.Fetcher {
		return fetcher.NewSession(cfg.Fetcher, log, stats)
	}, cfg.Delay, log)

	summary := runner.Run(ctx, seeds)

	// Export runs even after an interrupt: partial results are worth saving.
	if _, exportErr := export.NewCSVSink(sessionDir, log).Write(summary.Articles); exportErr != nil {
		log.Error("failed to save results", "error", exportErr.Error())
		return exportErr
	}

	export.RenderSummary(cmd.OutOrStdout(), summary.Results)

	switch {
	case summary.Interrupted:
		log.Warn("run interrupted by user")
		return ErrInterrupted
	case summary.Failed:
		return ErrRunFailed
	}

	log.Info("scraper finished",
		"articles", len(summary.Articles),
		"requests_ok", stats.GetSuccessfulRequests(),
		"requests_failed", stats.GetFailedRequests(),
		"retries", stats.GetRetriedRequests(),
		"elapsed", stats.Elapsed().String(),
	)

	return nil
}

// newLogger builds the run logger from config.
func newLogger(cfg *config.Config) (logger.Interface, error) {
	logCfg := &logger.Config{
		Level: logger.Level(cfg.LogLevel),
	}
	if cfg.Debug {
		logCfg.Level = logger.DebugLevel
		logCfg.Development = true
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}

	return log, nil
}
