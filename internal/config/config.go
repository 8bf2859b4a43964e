package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rewired-gh/lottoracle/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	ZHCW      ZHCWConfig      `mapstructure:"zhcw"`
	Game      GameConfig      `mapstructure:"game"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Predictor PredictorConfig `mapstructure:"predictor"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ZHCWConfig holds draw feed API configuration
type ZHCWConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	PageSize       int           `mapstructure:"page_size"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// GameConfig holds the lottery game shape
type GameConfig struct {
	RedLo    int `mapstructure:"red_lo"`
	RedHi    int `mapstructure:"red_hi"`
	RedCount int `mapstructure:"red_count"`
	BlueLo   int `mapstructure:"blue_lo"`
	BlueHi   int `mapstructure:"blue_hi"`
}

// AnalysisConfig holds frequency analysis behavior
type AnalysisConfig struct {
	// RecentWindow is how many trailing draws count as recent; 0 derives it
	// from the game shape (10x the blue pool size).
	RecentWindow int     `mapstructure:"recent_window"`
	RecentWeight float64 `mapstructure:"recent_weight"`
}

// PredictorConfig holds prediction generation behavior
type PredictorConfig struct {
	Name         string `mapstructure:"name"`
	HistoryLimit int    `mapstructure:"history_limit"`
	// Seed fixes the sampler's random source; 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`
}

// WatchConfig holds watch daemon configuration
type WatchConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MetricsAddr  string        `mapstructure:"metrics_addr"`
	AlertAfter   int           `mapstructure:"alert_after"`
	Notify       bool          `mapstructure:"notify"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds archive storage configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file plus LOTTORACLE_* environment
// variables. An empty path skips the file and uses defaults and environment
// only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LOTTORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Draw feed defaults
	v.SetDefault("zhcw.api_base_url", "https://jc.zhcw.com")
	v.SetDefault("zhcw.timeout", "15s")
	v.SetDefault("zhcw.page_size", 50)
	v.SetDefault("zhcw.max_retries", 3)
	v.SetDefault("zhcw.retry_delay_base", "1s")

	// Game defaults: Union Lotto rules
	v.SetDefault("game.red_lo", 1)
	v.SetDefault("game.red_hi", 33)
	v.SetDefault("game.red_count", 6)
	v.SetDefault("game.blue_lo", 1)
	v.SetDefault("game.blue_hi", 16)

	// Analysis defaults
	v.SetDefault("analysis.recent_window", 0)
	v.SetDefault("analysis.recent_weight", 3.0)

	// Predictor defaults
	v.SetDefault("predictor.name", "lottoracle")
	v.SetDefault("predictor.history_limit", 100)
	v.SetDefault("predictor.seed", 0)

	// Watch defaults
	v.SetDefault("watch.poll_interval", "6h")
	v.SetDefault("watch.metrics_addr", "")
	v.SetDefault("watch.alert_after", 3)
	v.SetDefault("watch.notify", true)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.db_path", "data/lottoracle.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// GameSpec returns the configured game shape as a domain model.
func (c *Config) GameSpec() models.Game {
	return models.Game{
		RedLo:    c.Game.RedLo,
		RedHi:    c.Game.RedHi,
		RedCount: c.Game.RedCount,
		BlueLo:   c.Game.BlueLo,
		BlueHi:   c.Game.BlueHi,
	}
}

// RecentWindow returns the configured recent window, deriving it from the
// game shape when unset.
func (c *Config) RecentWindow() int {
	if c.Analysis.RecentWindow > 0 {
		return c.Analysis.RecentWindow
	}
	return 10 * c.GameSpec().BlueRange().Size()
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate draw feed config
	if c.ZHCW.APIBaseURL == "" {
		return fmt.Errorf("zhcw.api_base_url is required")
	}
	if c.ZHCW.Timeout <= 0 {
		return fmt.Errorf("zhcw.timeout must be positive")
	}
	if c.ZHCW.PageSize < 1 {
		return fmt.Errorf("zhcw.page_size must be at least 1")
	}
	if c.ZHCW.MaxRetries < 1 {
		return fmt.Errorf("zhcw.max_retries must be at least 1")
	}
	if c.ZHCW.RetryDelayBase <= 0 {
		return fmt.Errorf("zhcw.retry_delay_base must be positive")
	}

	// Validate game config
	if err := c.GameSpec().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	// Validate analysis config
	if c.Analysis.RecentWindow < 0 {
		return fmt.Errorf("analysis.recent_window must not be negative")
	}
	if c.Analysis.RecentWeight <= 0 {
		return fmt.Errorf("analysis.recent_weight must be positive")
	}

	// Validate predictor config
	if c.Predictor.Name == "" {
		return fmt.Errorf("predictor.name is required")
	}
	if c.Predictor.HistoryLimit < 0 {
		return fmt.Errorf("predictor.history_limit must not be negative")
	}

	// Validate watch config
	if c.Watch.PollInterval < 1*time.Minute {
		return fmt.Errorf("watch.poll_interval must be at least 1 minute")
	}
	if c.Watch.AlertAfter < 1 {
		return fmt.Errorf("watch.alert_after must be at least 1")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	// Validate logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
