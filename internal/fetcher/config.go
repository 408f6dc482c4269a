package fetcher

import "time"

// Default configuration values.
const (
	defaultRequestTimeout = 15 * time.Second
	defaultMaxRetries     = 3
	defaultBackoffBase    = 2 * time.Second
)

// defaultUserAgent is a realistic browser User-Agent. Category pages on
// WordPress sites frequently return 403 to obvious bot agents.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Config holds fetcher configuration.
type Config struct {
	UserAgent      string        `yaml:"user_agent"      mapstructure:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"     mapstructure:"max_retries"`
	BackoffBase    time.Duration `yaml:"backoff_base"    mapstructure:"backoff_base"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = defaultBackoffBase
	}
	return c
}
