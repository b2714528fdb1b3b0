package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/tradejournal/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvFeed     = "TRADEJOURNAL_FEED"
	EnvFeedURL  = "TRADEJOURNAL_FEED_URL"
	EnvRESTURL  = "TRADEJOURNAL_REST_URL"
	EnvDB       = "TRADEJOURNAL_DB"
	EnvLogLevel = "TRADEJOURNAL_LOG_LEVEL"
)

// Feed transports.
const (
	TransportWebsocket = "ws"
	TransportREST      = "rest"
)

// Config is the complete tradejournal configuration.
type Config struct {
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// FeedConfig selects and tunes the market data transport.
type FeedConfig struct {
	Transport    string `json:"transport" yaml:"transport"` // "ws" or "rest"
	URL          string `json:"url" yaml:"url"`
	RESTURL      string `json:"rest_url" yaml:"rest_url"`
	StreamSuffix string `json:"stream_suffix,omitempty" yaml:"stream_suffix,omitempty"`
	PollInterval string `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"` // e.g. "5s"
}

// ParseInterval converts the poll interval to a time.Duration.
func (f FeedConfig) ParseInterval() (time.Duration, error) {
	if f.PollInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(f.PollInterval)
}

// JournalConfig locates the trade database.
type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // "json" or "console"
}

// LoadFromFile loads configuration from a YAML or JSON file. Settings the
// file leaves out keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load resolves the effective configuration: the file at path (Default when
// path is empty), then .env, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files (".env" when none) into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from TRADEJOURNAL_* environment variables.
func (c *Config) ApplyEnv() {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvFeed, &c.Feed.Transport)
	set(EnvFeedURL, &c.Feed.URL)
	set(EnvRESTURL, &c.Feed.RESTURL)
	set(EnvDB, &c.Journal.DBPath)
	set(EnvLogLevel, &c.Log.Level)
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Feed.Transport {
	case TransportWebsocket:
		if c.Feed.URL == "" {
			return fmt.Errorf("feed.url is required for the ws transport")
		}
	case TransportREST:
		if c.Feed.RESTURL == "" {
			return fmt.Errorf("feed.rest_url is required for the rest transport")
		}
	default:
		return fmt.Errorf("feed.transport must be 'ws' or 'rest'")
	}
	d, err := c.Feed.ParseInterval()
	if err != nil {
		return fmt.Errorf("feed.poll_interval: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("feed.poll_interval must not be negative")
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if f := c.Log.Format; f != "" && f != "json" && f != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Transport:    TransportWebsocket,
			URL:          "wss://stream.binance.com:9443/stream",
			RESTURL:      "https://api.binance.com",
			StreamSuffix: "@ticker",
			PollInterval: "5s",
		},
		Journal: JournalConfig{
			DBPath: "./tradejournal.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
