// Package cmd implements the command-line interface for the WordPress
// article scraper. It provides the root command and the scrape subcommand.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/wpscraper/cmd/scrape"
)

// Exit codes returned to the shell.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the scraper CLI.
	rootCmd = &cobra.Command{
		Use:           "wpscraper",
		Short:         "Extract article links from WordPress category pages",
		Long:          `A scraper that follows /page/N/ pagination on WordPress category listings, extracts article title/URL pairs, and exports them to CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	// Parse flags early to get debug flag before creating logger
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

// ExitCode maps an error returned by Execute to a process exit code.
// Interruption is reported distinctly so callers can tell a clean Ctrl+C
// from a failed run.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, scrape.ErrInterrupted):
		return exitInterrupted
	default:
		return exitFailure
	}
}

// init initializes the root command and its subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wpscraper version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// Enable automatic environment variable reading BEFORE setting defaults
	// so environment variables take precedence over defaults.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// Config file is optional: defaults and environment variables suffice.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	if err := bindFlagsAndEnv(); err != nil {
		return err
	}

	// Synchronize the debug flag with viper before loggers are built.
	if Debug || viper.GetBool("scraper.debug") {
		viper.Set("scraper.debug", true)
		viper.Set("scraper.log_level", "debug")
	}

	return nil
}

// bindFlagsAndEnv binds command-line flags and environment variables to config keys.
func bindFlagsAndEnv() error {
	if err := viper.BindPFlag("scraper.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}

	envBindings := map[string]string{
		"scraper.delay":                   "SCRAPER_DELAY",
		"scraper.output_dir":              "SCRAPER_OUTPUT_DIR",
		"scraper.log_level":               "SCRAPER_LOG_LEVEL",
		"scraper.fetcher.user_agent":      "SCRAPER_USER_AGENT",
		"scraper.fetcher.request_timeout": "SCRAPER_TIMEOUT",
		"scraper.fetcher.max_retries":     "SCRAPER_MAX_RETRIES",
	}

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("scraper", map[string]any{
		"delay":      "1s",
		"output_dir": "outputs",
		"log_level":  "info",
		"debug":      false,
		"fetcher": map[string]any{
			"request_timeout": "15s",
			"max_retries":     3,
			"backoff_base":    "2s",
		},
	})
}
