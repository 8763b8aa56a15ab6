// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and CRICKSIM_* environment variables on top.
package config

import (
	"runtime"
	"time"

	"github.com/okian/cricksim/internal/domain/selection"
)

// Store backends for match sessions.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Results ledger drivers. DriverNone keeps results in memory only.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Seed seeds every match RNG. Zero derives a seed per match from the clock.
	Seed uint64 `koanf:"seed"`

	// DefaultOvers and DefaultTier apply when a create request omits them.
	DefaultOvers int    `koanf:"default_overs"`
	DefaultTier  string `koanf:"default_tier"`

	// MaxOvers caps the overs a client may request.
	MaxOvers int `koanf:"max_overs"`

	// RatingsPath points at a YAML or TOML rating table. Empty uses the embedded table.
	RatingsPath string `koanf:"ratings_path"`

	// Bands sets where the automated batsman's strong shot band starts, per
	// tier, as a fraction of the ranked shots. Tiers left out keep the top third.
	Bands selection.Bands `koanf:"bands"`

	// FixedBowlerSkill, when positive, is the bowler skill the automated
	// batsman ranks its shots against. Zero ranks against the actual bowler.
	FixedBowlerSkill int `koanf:"fixed_bowler_skill"`

	// EndOnTarget stops the second innings as soon as the target is reached.
	EndOnTarget bool `koanf:"end_on_target"`

	// Store selects the match session backend: memory or redis.
	Store string `koanf:"store"`

	// RedisURL is used by the redis store and the ball stream publisher.
	RedisURL string `koanf:"redis_url"`

	// RedisStream names the stream ball events are appended to. Empty disables it.
	RedisStream string `koanf:"redis_stream"`

	// MatchTTL expires idle matches in the redis store.
	MatchTTL time.Duration `koanf:"match_ttl"`

	// ResultsDriver selects the results ledger: none, sqlite or postgres.
	ResultsDriver string `koanf:"results_driver"`

	// ResultsDSN is the driver specific data source name.
	ResultsDSN string `koanf:"results_dsn"`

	// MaxResultsLimit caps GET /api/v1/results?limit.
	MaxResultsLimit int `koanf:"max_results_limit"`

	// EventQueueSize bounds the in-memory ball event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ball event workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the resolved-offer memory.
	DedupeSize int `koanf:"dedupe_size"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		DefaultOvers:    2,
		DefaultTier:     "medium",
		MaxOvers:        50,
		Bands:           selection.DefaultBands(),
		Store:           StoreMemory,
		RedisURL:        "redis://localhost:6379/0",
		MatchTTL:        6 * time.Hour,
		ResultsDriver:   DriverSQLite,
		ResultsDSN:      "file:cricksim.db?_pragma=busy_timeout(5000)",
		MaxResultsLimit: 100,
		EventQueueSize:  10_000,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      50_000,
		CORSOrigins:     []string{"*"},
	}
}
