// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat snake_case so every field can be overridden by a HOOPLINE_* env var.
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
)

// Ledger drivers accepted by LedgerDriver.
const (
	LedgerMemory   = "memory"
	LedgerSQLite   = "sqlite"
	LedgerPostgres = "postgres"
)

// Name matching strategies accepted by NameMatcher.
const (
	MatcherSubstring = "substring"
	MatcherFuzzy     = "fuzzy"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LedgerDriver selects the prediction ledger backend: memory, sqlite or postgres.
	LedgerDriver string `koanf:"ledger_driver"`

	// LedgerDSN is the sqlite file path or the postgres connection string.
	LedgerDSN string `koanf:"ledger_dsn"`

	// LedgerStrictReconcile rejects a second reconciliation of the same prediction
	// instead of overwriting the observed total.
	LedgerStrictReconcile bool `koanf:"ledger_strict_reconcile"`

	// Upstream feeds. Empty URLs disable the feed and the static fallbacks are used.
	StatsFeedURL     string `koanf:"stats_feed_url"`
	InjuryFeedURL    string `koanf:"injury_feed_url"`
	StandingsFeedURL string `koanf:"standings_feed_url"`

	// FeedTimeoutMS bounds every upstream request.
	FeedTimeoutMS int `koanf:"feed_timeout_ms"`

	// FeedBudgetMS bounds all feed lookups of one projection; 0 disables it.
	FeedBudgetMS int `koanf:"feed_budget_ms"`

	// FeedBackoffSec is how long a failed feed is skipped before retrying.
	FeedBackoffSec int `koanf:"feed_backoff_sec"`

	// FeedRatePerSec limits upstream request rate per feed.
	FeedRatePerSec float64 `koanf:"feed_rate_per_sec"`

	// Cache lifetimes for feed payloads, in seconds.
	StatsTTLSec     int `koanf:"stats_ttl_sec"`
	InjuryTTLSec    int `koanf:"injury_ttl_sec"`
	StandingsTTLSec int `koanf:"standings_ttl_sec"`

	// RefreshCron is a crontab spec for warming feed caches; empty disables it.
	RefreshCron string `koanf:"refresh_cron"`

	// NameMatcher selects how absent players are matched to the star tables.
	NameMatcher string `koanf:"name_matcher"`

	// FuzzyThreshold is the minimum similarity for the fuzzy matcher (0..1).
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`

	// Model constants.
	InjuryCap        float64 `koanf:"injury_cap"`
	HomeCourtBonus   float64 `koanf:"home_court_bonus"`
	RevengePoints    float64 `koanf:"revenge_points"`
	BlowoutThreshold float64 `koanf:"blowout_threshold"`
	WinProbScale     float64 `koanf:"win_prob_scale"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		LedgerDriver:     LedgerSQLite,
		LedgerDSN:        "data/predictions.db",
		FeedTimeoutMS:    10_000,
		FeedBudgetMS:     4_000,
		FeedBackoffSec:   30,
		FeedRatePerSec:   2,
		StatsTTLSec:      21_600,
		InjuryTTLSec:     600,
		StandingsTTLSec:  3_600,
		RefreshCron:      "*/10 * * * *",
		NameMatcher:      MatcherSubstring,
		FuzzyThreshold:   0.8,
		InjuryCap:        0.30,
		HomeCourtBonus:   2.5,
		RevengePoints:    3.0,
		BlowoutThreshold: 16,
		WinProbScale:     14.5,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LedgerDriver {
	case LedgerMemory:
	case LedgerSQLite, LedgerPostgres:
		if strings.TrimSpace(c.LedgerDSN) == "" {
			return fmt.Errorf("%w: ledger_dsn is required for driver %q", ErrInvalidConfig, c.LedgerDriver)
		}
	default:
		return fmt.Errorf("%w: unknown ledger_driver %q", ErrInvalidConfig, c.LedgerDriver)
	}
	switch c.NameMatcher {
	case MatcherSubstring, MatcherFuzzy:
	default:
		return fmt.Errorf("%w: unknown name_matcher %q", ErrInvalidConfig, c.NameMatcher)
	}
	if c.FeedBudgetMS < 0 || c.FeedBackoffSec < 0 {
		return fmt.Errorf("%w: feed_budget_ms and feed_backoff_sec must not be negative", ErrInvalidConfig)
	}
	if c.InjuryCap <= 0 || c.InjuryCap > 1 {
		return fmt.Errorf("%w: injury_cap must be in (0, 1]", ErrInvalidConfig)
	}
	if c.WinProbScale <= 0 {
		return fmt.Errorf("%w: win_prob_scale must be positive", ErrInvalidConfig)
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: fuzzy_threshold must be in (0, 1]", ErrInvalidConfig)
	}
	return nil
}
