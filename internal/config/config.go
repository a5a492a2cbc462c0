// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CacheTTLSeconds bounds the staleness window of cached rating bundles.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// RedisAddr selects the shared Redis bundle cache when non-empty;
	// empty keeps the in-process cache.
	RedisAddr string `koanf:"redis_addr"`

	// DatabaseURL selects the postgres population store when non-empty;
	// empty keeps the in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// BundleWorkers bounds the per-query rating fan-out.
	BundleWorkers int `koanf:"bundle_workers"`

	// DefaultPageSize and MaxPageSize govern leaderboard pagination.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// New returns the configuration defaults, before file and env layering.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9090",
		CacheTTLSeconds: 60,
		BundleWorkers:   runtime.NumCPU() * 2,
		DefaultPageSize: 25,
		MaxPageSize:     100,
	}
}
