// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// AuthConfig holds token signing parameters.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// StatsConfig tunes the aggregate dashboards.
type StatsConfig struct {
	// MinSourceVotes excludes sources/authors with fewer votes from the
	// ranking lists to avoid noise from near-zero samples.
	MinSourceVotes int `mapstructure:"min_source_votes"`
}

// ScraperConfig governs the metadata scraper.
type ScraperConfig struct {
	UserAgents     []string       `mapstructure:"user_agents"`
	TimeoutSeconds int            `mapstructure:"timeout_seconds"`
	Headless       HeadlessConfig `mapstructure:"headless"`
}

// HeadlessConfig configures the optional headless rendering fallback.
type HeadlessConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	NavTimeoutSec   int      `mapstructure:"nav_timeout_seconds"`
	MinHTMLBytes    int      `mapstructure:"min_html_bytes"`
	ShellKeywords   []string `mapstructure:"shell_keywords"`
	RequireSelector string   `mapstructure:"require_selector"`
}

// IngestConfig controls the bulk loader.
type IngestConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	BatchSize int    `mapstructure:"batch_size"`
}

// SchedulerConfig controls the periodic loader invocation.
type SchedulerConfig struct {
	IntervalMinutes   int `mapstructure:"interval_minutes"`
	RunTimeoutMinutes int `mapstructure:"run_timeout_minutes"`
}

// StorageConfig selects the blob store for raw scrape output.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"` // noop|local|gcs
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// NotifyConfig selects the ingest-event publisher.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"` // noop|pubsub
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NETRA")
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
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 60)
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24*7)
	v.SetDefault("stats.min_source_votes", 3)
	v.SetDefault("scraper.user_agents", []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	})
	v.SetDefault("scraper.timeout_seconds", 10)
	v.SetDefault("scraper.headless.enabled", false)
	v.SetDefault("scraper.headless.nav_timeout_seconds", 25)
	v.SetDefault("scraper.headless.min_html_bytes", 2000)
	v.SetDefault("scraper.headless.shell_keywords", []string{
		"__NEXT_DATA__",
		"data-reactroot",
		"ng-app",
		"window.__APOLLO_STATE__",
	})
	v.SetDefault("ingest.data_dir", "data")
	v.SetDefault("ingest.batch_size", 10)
	v.SetDefault("scheduler.interval_minutes", 60)
	v.SetDefault("scheduler.run_timeout_minutes", 10)
	v.SetDefault("storage.provider", "noop")
	v.SetDefault("storage.prefix", "scrapes")
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("auth.token_ttl_hours must be > 0")
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest.batch_size must be > 0")
	}
	if c.Scheduler.IntervalMinutes < 1 {
		return fmt.Errorf("scheduler.interval_minutes must be >= 1")
	}
	if c.Storage.Provider == "gcs" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
	}
	if c.Storage.Provider == "local" && c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir must be set when storage.provider is local")
	}
	if c.Notify.Provider == "pubsub" && (c.Notify.ProjectID == "" || c.Notify.TopicID == "") {
		return fmt.Errorf("notify.project_id and notify.topic_id must be set when notify.provider is pubsub")
	}
	return nil
}

// TokenTTL converts the configured token lifetime into a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// RunTimeout is the coarse per-run budget for a scheduled load.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Scheduler.RunTimeoutMinutes) * time.Minute
}

// Interval is the scheduler's load interval.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Scheduler.IntervalMinutes) * time.Minute
}
