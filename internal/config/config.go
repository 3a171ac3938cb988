// Package config holds the application configuration for newsscan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	appconfig "github.com/finwatch/newsscan/pkg/config"

	"github.com/finwatch/newsscan/internal/feed"
	"github.com/finwatch/newsscan/internal/fetch"
	"github.com/finwatch/newsscan/internal/normalize"
)

// FileName is the config file looked up in the working directory and
// the user's home directory when no explicit path is given.
const FileName = ".newsscan.yaml"

// FetchConfig tunes the concurrent feed fetcher.
type FetchConfig struct {
	// Timeout bounds one feed request.
	Timeout time.Duration `yaml:"timeout" env:"NEWSSCAN_FETCH_TIMEOUT"`
	// Workers is the fan-out width of a fetch batch.
	Workers int `yaml:"workers" env:"NEWSSCAN_FETCH_WORKERS"`
	// RatePerSecond paces requests across all workers; zero disables
	// the limiter.
	RatePerSecond float64 `yaml:"rate_per_second" env:"NEWSSCAN_FETCH_RATE"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// Interval between scan rounds.
	Interval time.Duration `yaml:"interval" env:"NEWSSCAN_WATCH_INTERVAL"`
	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9091".
	MetricsAddr string `yaml:"metrics_addr" env:"NEWSSCAN_METRICS_ADDR"`
}

// Config is the full application configuration.
type Config struct {
	// Feeds overrides the built-in static source endpoints.
	Feeds []string `yaml:"feeds" env:"NEWSSCAN_FEEDS"`
	// MaxPerSource caps processed entries per feed.
	MaxPerSource int `yaml:"max_per_source" env:"NEWSSCAN_MAX_PER_SOURCE"`
	// CacheTTL is the aggregation cache validity window.
	CacheTTL time.Duration `yaml:"cache_ttl" env:"NEWSSCAN_CACHE_TTL"`
	Fetch    FetchConfig   `yaml:"fetch"`
	Watch    WatchConfig   `yaml:"watch"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Feeds:        feed.DefaultFeeds,
		MaxPerSource: normalize.DefaultMaxPerSource,
		CacheTTL:     10 * time.Minute,
		Fetch: FetchConfig{
			Timeout: fetch.DefaultTimeout,
			Workers: fetch.DefaultWorkers,
		},
		Watch: WatchConfig{
			Interval: 10 * time.Minute,
		},
	}
}

// Load reads the configuration, layering an optional YAML file over the
// defaults. An explicit path must exist; otherwise the working directory
// is checked first, then the home directory, and a missing file just
// means defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	switch {
	case path != "":
		if err := appconfig.Load(path, &cfg); err != nil {
			return cfg, err
		}
	default:
		lookup := FileName
		if _, err := os.Stat(FileName); err != nil {
			if home, herr := os.UserHomeDir(); herr == nil {
				lookup = filepath.Join(home, FileName)
			}
		}
		if err := appconfig.LoadOrDefault(lookup, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.clamp()
	return cfg, cfg.validate()
}

// clamp backfills zero or negative values with the defaults; a partial
// config file only overrides the keys it sets.
func (c *Config) clamp() {
	if len(c.Feeds) == 0 {
		c.Feeds = feed.DefaultFeeds
	}
	if c.MaxPerSource <= 0 {
		c.MaxPerSource = normalize.DefaultMaxPerSource
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = fetch.DefaultTimeout
	}
	if c.Fetch.Workers <= 0 {
		c.Fetch.Workers = fetch.DefaultWorkers
	}
	if c.Watch.Interval <= 0 {
		c.Watch.Interval = 10 * time.Minute
	}
}

func (c Config) validate() error {
	if c.Fetch.RatePerSecond < 0 {
		return fmt.Errorf("fetch.rate_per_second must not be negative, got %v", c.Fetch.RatePerSecond)
	}
	return nil
}
