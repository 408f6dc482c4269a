// Package config provides configuration management for the scraper.
// Values come from (in order of precedence) command-line flags, environment
// variables, an optional config.yaml, and built-in defaults, all merged
// through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonesrussell/wpscraper/internal/fetcher"
)

// Default configuration values.
const (
	DefaultDelay     = 1 * time.Second
	DefaultTimeout   = 15 * time.Second
	DefaultOutputDir = "outputs"
)

// ErrInvalidConfig indicates the merged configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the scraper configuration.
type Config struct {
	// Delay is the politeness delay between page requests
	Delay time.Duration `env:"SCRAPER_DELAY" yaml:"delay" mapstructure:"delay"`
	// OutputDir is the root directory session directories are created under
	OutputDir string `env:"SCRAPER_OUTPUT_DIR" yaml:"output_dir" mapstructure:"output_dir"`
	// Fetcher configures the HTTP session (timeout, retries, user agent)
	Fetcher fetcher.Config `yaml:"fetcher" mapstructure:"fetcher"`
	// LogLevel is the minimum logging level
	LogLevel string `env:"SCRAPER_LOG_LEVEL" yaml:"log_level" mapstructure:"log_level"`
	// Debug enables debug logging and development output
	Debug bool `env:"APP_DEBUG" yaml:"debug" mapstructure:"debug"`
}

// Load decodes the "scraper" section of the merged viper settings.
func Load() (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create config decoder: %w", err)
	}

	// AllSettings resolves each leaf key through the full precedence chain
	// (flag, env, config file, default). Reading the parent "scraper" key
	// directly would stop at the first source holding it and miss flag- and
	// env-bound children.
	settings, _ := viper.AllSettings()["scraper"].(map[string]any)

	if err = decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decode scraper config: %w", err)
	}

	// Validate the raw values before defaults paper over them: zero means
	// unset, negative means a broken config.
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()

	return &cfg, nil
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Delay == 0 {
		c.Delay = DefaultDelay
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Fetcher.RequestTimeout == 0 {
		c.Fetcher.RequestTimeout = DefaultTimeout
	}
	c.Fetcher = c.Fetcher.WithDefaults()
	return c
}

// Validate checks raw configuration values before defaults are applied.
// Zero means unset and is filled in later; negative values are rejected.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative", ErrInvalidConfig)
	}
	if c.Fetcher.RequestTimeout < 0 {
		return fmt.Errorf("%w: request timeout must not be negative", ErrInvalidConfig)
	}
	if c.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidConfig)
	}
	return nil
}
