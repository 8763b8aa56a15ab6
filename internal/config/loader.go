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

	"github.com/okian/cricksim/internal/domain/selection"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CRICKSIM_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CRICKSIM_CONFIG is set
//  3. env (prefix CRICKSIM_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CRICKSIM_QUEUE_SIZE -> queue_size; underscores are kept to match koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultOvers < 1:
		return fmt.Errorf("%w: default_overs must be positive", ErrInvalidConfig)
	case c.MaxOvers < c.DefaultOvers:
		return fmt.Errorf("%w: max_overs must be at least default_overs", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StoreRedis:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case c.Store == StoreRedis && c.RedisURL == "":
		return fmt.Errorf("%w: redis store needs redis_url", ErrInvalidConfig)
	case c.FixedBowlerSkill < 0:
		return fmt.Errorf("%w: fixed_bowler_skill must not be negative", ErrInvalidConfig)
	}

	switch c.ResultsDriver {
	case DriverNone, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown results driver %q", ErrInvalidConfig, c.ResultsDriver)
	}
	if c.ResultsDriver != DriverNone && c.ResultsDSN == "" {
		return fmt.Errorf("%w: results_dsn must not be empty", ErrInvalidConfig)
	}
	for tier, b := range c.Bands {
		if selection.ParseTier(string(tier)) != tier {
			return fmt.Errorf("%w: bands: unknown tier %q", ErrInvalidConfig, tier)
		}
		if b.Den <= 0 || b.Num < 0 || b.Num > b.Den {
			return fmt.Errorf("%w: bands.%s: want 0 <= num <= den, got %d/%d", ErrInvalidConfig, tier, b.Num, b.Den)
		}
	}
	return nil
}
