// Package config defines service configuration and how it is loaded.
package config

import (
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file; ":memory:" keeps nothing on disk.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the recompute job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many upload ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultRegion is used when a request names no region (jp, ex or cn).
	DefaultRegion string `koanf:"default_region"`

	// UnknownEraPolicy decides what a B50 does with charts the catalog
	// cannot place in an era: fail, prior or exclude.
	UnknownEraPolicy string `koanf:"unknown_era_policy"`

	// TieBreak orders equal ratings: stable (input order) or chart.
	TieBreak string `koanf:"tie_break"`

	// MusicDataURL is where the catalog's music list is fetched from.
	MusicDataURL string `koanf:"music_data_url"`

	// CatalogCacheTTLS is how long, in seconds, a fetched music list is reused.
	CatalogCacheTTLS int `koanf:"catalog_cache_ttl_s"`

	// CatalogSyncOnStart syncs the default region's catalog at startup.
	CatalogSyncOnStart bool `koanf:"catalog_sync_on_start"`

	// CORSOrigins is a comma separated list of allowed origins; empty allows all.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DBPath:              "maidx.db",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		DefaultRegion:       "jp",
		UnknownEraPolicy:    "fail",
		TieBreak:            "stable",
		MusicDataURL:        "https://www.diving-fish.com/api/maimaidxprober/music_data",
		CatalogCacheTTLS:    6 * 60 * 60,
	}
}

// Origins splits CORSOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
