package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  timeout_seconds: 30
db:
  dsn: postgres://netra:pw@localhost:5432/netra
auth:
  jwt_secret: secret
  token_ttl_hours: 24
stats:
  min_source_votes: 5
scraper:
  user_agents: ["agent-one", "agent-two"]
  timeout_seconds: 20
  headless:
    enabled: true
    nav_timeout_seconds: 30
ingest:
  data_dir: /var/lib/netra/data
  batch_size: 25
scheduler:
  interval_minutes: 15
  run_timeout_minutes: 5
storage:
  provider: local
  base_dir: /tmp/scrapes
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "secret" {
		t.Fatalf("expected jwt secret to be loaded")
	}
	if got := cfg.TokenTTL(); got != 24*time.Hour {
		t.Fatalf("expected token ttl 24h, got %v", got)
	}
	if cfg.Stats.MinSourceVotes != 5 {
		t.Fatalf("expected min_source_votes 5, got %d", cfg.Stats.MinSourceVotes)
	}
	if len(cfg.Scraper.UserAgents) != 2 {
		t.Fatalf("expected two user agents, got %v", cfg.Scraper.UserAgents)
	}
	if !cfg.Scraper.Headless.Enabled {
		t.Fatalf("expected headless enabled")
	}
	if cfg.Ingest.BatchSize != 25 {
		t.Fatalf("expected batch size 25, got %d", cfg.Ingest.BatchSize)
	}
	if got := cfg.Interval(); got != 15*time.Minute {
		t.Fatalf("expected interval 15m, got %v", got)
	}
	if got := cfg.RunTimeout(); got != 5*time.Minute {
		t.Fatalf("expected run timeout 5m, got %v", got)
	}
	if cfg.Storage.Provider != "local" || cfg.Storage.BaseDir != "/tmp/scrapes" {
		t.Fatalf("expected local storage overrides to apply")
	}
	if cfg.Logging.Development {
		t.Fatalf("expected development logging disabled")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if got := cfg.TokenTTL(); got != 7*24*time.Hour {
		t.Fatalf("expected default token ttl 7 days, got %v", got)
	}
	if cfg.Ingest.BatchSize != 10 {
		t.Fatalf("expected default batch size 10, got %d", cfg.Ingest.BatchSize)
	}
	if cfg.Storage.Provider != "noop" || cfg.Notify.Provider != "noop" {
		t.Fatalf("expected noop providers by default")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTLHours = 0 }},
		{"zero batch size", func(c *Config) { c.Ingest.BatchSize = 0 }},
		{"zero interval", func(c *Config) { c.Scheduler.IntervalMinutes = 0 }},
		{"gcs without bucket", func(c *Config) { c.Storage.Provider = "gcs"; c.Storage.GCSBucket = "" }},
		{"pubsub without topic", func(c *Config) { c.Notify.Provider = "pubsub" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
