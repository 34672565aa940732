package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/maidx/internal/domain/b50"
	"github.com/okian/maidx/internal/domain/types"
)

const envPrefix = "MAIDX_"

// Load builds a Config by layering defaults, an optional file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if MAIDX_CONFIG is set
//  3. env (prefix MAIDX_), including a .env file in the working directory
func Load(_ context.Context) (*Config, error) {
	// A missing .env is fine; real env vars win over it.
	_ = godotenv.Load()

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// MAIDX_QUEUE_SIZE -> queue_size; underscores are kept to match the tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if !types.ValidRegion(c.DefaultRegion) {
		return fmt.Errorf("%w: default_region %q is not one of jp, ex, cn", ErrInvalidConfig, c.DefaultRegion)
	}
	if _, err := b50.ParseUnknownEraPolicy(c.UnknownEraPolicy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := b50.ParseTieBreak(c.TieBreak); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.QueueSize < 0 || c.WorkerCount < 0 || c.DedupeSize < 0 || c.MaxLeaderboardLimit < 0 || c.CatalogCacheTTLS < 0 {
		return fmt.Errorf("%w: sizes and limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AggregatorOptions turns the B50 settings into aggregator options. Call it
// on a validated Config.
func (c *Config) AggregatorOptions() []b50.Option {
	policy, _ := b50.ParseUnknownEraPolicy(c.UnknownEraPolicy)
	tie, _ := b50.ParseTieBreak(c.TieBreak)
	return []b50.Option{b50.WithUnknownEraPolicy(policy), b50.WithTieBreak(tie)}
}
