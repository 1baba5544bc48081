// Package config loads and validates application configuration via Viper.
// Core components never read viper themselves; they receive plain structs
// resolved here at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Logging Logging  `mapstructure:"logging"`
	Server  Server   `mapstructure:"server"`
	Store   Store    `mapstructure:"store"`
	Scrape  Scrape   `mapstructure:"scrape"`
	Scoring Scoring  `mapstructure:"scoring"`
	Sources []Source `mapstructure:"sources"`
}

// Logging toggles zap development features.
type Logging struct {
	Development bool `mapstructure:"development"`
}

// Server controls the metrics/health HTTP endpoint exposed during a run.
type Server struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Store selects and configures the persistence backend.
type Store struct {
	Backend string `mapstructure:"backend"` // "sqlite" or "postgres"
	Path    string `mapstructure:"path"`    // sqlite file path
	Table   string `mapstructure:"table"`
	DSN     string `mapstructure:"dsn"` // postgres only
}

// Scrape governs the extraction stage.
type Scrape struct {
	MaxConcurrency    int           `mapstructure:"max_concurrency"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	UserAgent         string        `mapstructure:"user_agent"`
	ForbiddenTitles   []string      `mapstructure:"forbidden_titles"`
	Headless          bool          `mapstructure:"headless"`
}

// Scoring configures the enrichment stage and its model endpoint.
type Scoring struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	MaxTokens         int    `mapstructure:"max_tokens"`
	Workers           int    `mapstructure:"workers"`
	MinAnalysisLength int    `mapstructure:"min_analysis_length"`
	CandidateProfile  string `mapstructure:"candidate_profile"`
	ScoringRubric     string `mapstructure:"scoring_rubric"`
}

// Source describes one listing site to extract from.
type Source struct {
	Adapter string   `mapstructure:"adapter"` // "justjoinit", "pracujpl", "hexagon"
	Name    string   `mapstructure:"name"`
	Seeds   []string `mapstructure:"seeds"`
}

// Load resolves configuration from config.yaml (working directory or
// /etc/jobradar), JOBRADAR_-prefixed environment variables, and defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/jobradar/")

	setDefaults(v)

	v.SetEnvPrefix("JOBRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		// No config file is fine; defaults and env vars apply.
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

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Table == "" {
		return fmt.Errorf("store.table must not be empty")
	}
	if c.Scrape.MaxConcurrency <= 0 {
		return fmt.Errorf("scrape.max_concurrency must be positive")
	}
	if c.Scoring.Workers <= 0 {
		return fmt.Errorf("scoring.workers must be positive")
	}
	for i, s := range c.Sources {
		if len(s.Seeds) == 0 {
			return fmt.Errorf("sources[%d] (%s) has no seed URLs", i, s.Adapter)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", false)

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", ":9090")

	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", "db/jobs.db")
	v.SetDefault("store.table", "job_offers_api")

	v.SetDefault("scrape.max_concurrency", 15)
	v.SetDefault("scrape.navigation_timeout", "120s")
	v.SetDefault("scrape.settle_delay", "1s")
	v.SetDefault("scrape.retry_attempts", 3)
	v.SetDefault("scrape.headless", true)
	v.SetDefault("scrape.user_agent",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36")
	v.SetDefault("scrape.forbidden_titles", []string{
		"access denied",
		"just a moment",
		"attention required",
		"verify you are human",
		"are you a robot",
		"captcha",
	})

	v.SetDefault("scoring.base_url", "https://api.deepseek.com")
	v.SetDefault("scoring.model", "deepseek-reasoner")
	v.SetDefault("scoring.max_tokens", 10000)
	v.SetDefault("scoring.workers", 10)
	v.SetDefault("scoring.min_analysis_length", 80)
}
