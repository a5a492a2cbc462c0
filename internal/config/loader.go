package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file if PODIUM_CONFIG is set
//  3. env (prefix PODIUM_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PODIUM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys map PODIUM_CACHE_TTL_SECONDS -> cache_ttl_seconds; the
	// underscores are preserved to match the koanf struct tags.
	envProvider := env.Provider("PODIUM_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "podium_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CacheTTLSeconds <= 0:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	case c.DefaultPageSize <= 0 || c.MaxPageSize <= 0:
		return fmt.Errorf("%w: page sizes must be positive", ErrInvalidConfig)
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("%w: default_page_size exceeds max_page_size", ErrInvalidConfig)
	case c.BundleWorkers <= 0:
		return fmt.Errorf("%w: bundle_workers must be positive", ErrInvalidConfig)
	}
	return nil
}
