// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// dateLayout is the wire format for the optional catalog date bounds.
const dateLayout = "2006-01-02"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig selects which entities the run covers and where the
// listing lives.
type CatalogConfig struct {
	ListingURL string `mapstructure:"listing_url"`
	Filter     string `mapstructure:"filter"`
	Limit      int    `mapstructure:"limit"`
	Start      string `mapstructure:"start"`
	End        string `mapstructure:"end"`
}

// FetchConfig governs dispatcher and per-entity fetch behavior.
type FetchConfig struct {
	Concurrency    int    `mapstructure:"concurrency"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// OutputConfig sets where the final table is written.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COINHIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.listing_url", "https://coinmarketcap.com/all/views/all/")
	v.SetDefault("catalog.filter", "all")
	v.SetDefault("catalog.limit", 0)
	v.SetDefault("fetch.concurrency", runtime.NumCPU())
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.user_agent", "coinhist-bot/0.1")
	v.SetDefault("output.path", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Catalog.ListingURL == "" {
		return fmt.Errorf("catalog.listing_url must be set")
	}
	if c.Catalog.Filter == "" {
		return fmt.Errorf("catalog.filter must be set")
	}
	if c.Catalog.Limit < 0 {
		return fmt.Errorf("catalog.limit must be >= 0")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("catalog.end must not precede catalog.start")
	}
	return nil
}

// DateRange parses the optional start/end bounds. A zero time means the
// bound was not configured.
func (c Config) DateRange() (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if c.Catalog.Start != "" {
		start, err = time.Parse(dateLayout, c.Catalog.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse catalog.start: %w", err)
		}
	}
	if c.Catalog.End != "" {
		end, err = time.Parse(dateLayout, c.Catalog.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse catalog.end: %w", err)
		}
	}
	return start, end, nil
}

// FetchTimeout converts the configured timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
