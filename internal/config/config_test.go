package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := validConfig(t)

	if cfg.ZHCW.APIBaseURL != "https://jc.zhcw.com" {
		t.Errorf("api_base_url = %q", cfg.ZHCW.APIBaseURL)
	}
	if cfg.Game.RedHi != 33 || cfg.Game.RedCount != 6 || cfg.Game.BlueHi != 16 {
		t.Errorf("unexpected default game: %+v", cfg.Game)
	}
	if cfg.Analysis.RecentWeight != 3.0 {
		t.Errorf("recent_weight = %g, want 3.0", cfg.Analysis.RecentWeight)
	}
	if cfg.Watch.PollInterval != 6*time.Hour {
		t.Errorf("poll_interval = %v, want 6h", cfg.Watch.PollInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
zhcw:
  page_size: 20
  timeout: 5s
game:
  blue_hi: 12
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ZHCW.PageSize != 20 {
		t.Errorf("page_size = %d, want 20", cfg.ZHCW.PageSize)
	}
	if cfg.ZHCW.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.ZHCW.Timeout)
	}
	if cfg.Game.BlueHi != 12 {
		t.Errorf("blue_hi = %d, want 12", cfg.Game.BlueHi)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Game.RedHi != 33 {
		t.Errorf("red_hi = %d, want default 33", cfg.Game.RedHi)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LOTTORACLE_LOGGING_LEVEL", "error")
	t.Setenv("LOTTORACLE_ZHCW_PAGE_SIZE", "7")

	cfg := validConfig(t)

	if cfg.Logging.Level != "error" {
		t.Errorf("level = %q, want error (env override)", cfg.Logging.Level)
	}
	if cfg.ZHCW.PageSize != 7 {
		t.Errorf("page_size = %d, want 7 (env override)", cfg.ZHCW.PageSize)
	}
}

func TestRecentWindow(t *testing.T) {
	cfg := validConfig(t)

	// Unset: derived from the game shape, 10x the blue pool.
	if got := cfg.RecentWindow(); got != 160 {
		t.Errorf("derived RecentWindow() = %d, want 160", got)
	}

	cfg.Analysis.RecentWindow = 42
	if got := cfg.RecentWindow(); got != 42 {
		t.Errorf("explicit RecentWindow() = %d, want 42", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty base url", func(c *Config) { c.ZHCW.APIBaseURL = "" }, true},
		{"zero timeout", func(c *Config) { c.ZHCW.Timeout = 0 }, true},
		{"zero page size", func(c *Config) { c.ZHCW.PageSize = 0 }, true},
		{"zero retries", func(c *Config) { c.ZHCW.MaxRetries = 0 }, true},
		{"bad game", func(c *Config) { c.Game.RedCount = 99 }, true},
		{"negative recent window", func(c *Config) { c.Analysis.RecentWindow = -1 }, true},
		{"zero recent weight", func(c *Config) { c.Analysis.RecentWeight = 0 }, true},
		{"fractional recent weight", func(c *Config) { c.Analysis.RecentWeight = 0.5 }, false},
		{"empty predictor name", func(c *Config) { c.Predictor.Name = "" }, true},
		{"negative history limit", func(c *Config) { c.Predictor.HistoryLimit = -5 }, true},
		{"short poll interval", func(c *Config) { c.Watch.PollInterval = 10 * time.Second }, true},
		{"zero alert after", func(c *Config) { c.Watch.AlertAfter = 0 }, true},
		{"telegram enabled without token", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatID = "123" }, true},
		{"telegram enabled without chat", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.BotToken = "t" }, true},
		{"telegram enabled complete", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "t"
			c.Telegram.ChatID = "123"
		}, false},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
