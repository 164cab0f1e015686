// Package config loads server and client settings from .env, an optional
// TOML file, and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default values.
const (
	DefaultPort      = "8080"
	DefaultStore     = StoreSQLite
	DefaultDSN       = "tasks.db"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultAPIURL    = "http://localhost:8080"
)

// Store backends.
const (
	StoreSQLite    = "sqlite"
	StoreMySQL     = "mysql"
	StoreFirestore = "firestore"
)

// Config holds the settings shared by the server and the page client.
type Config struct {
	Port  string `toml:"port"`
	Store string `toml:"store"`
	DSN   string `toml:"dsn"`

	// ProjectID is the Google Cloud project for the firestore store.
	ProjectID string `toml:"project_id"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// LINE push notifications; disabled when the token is empty.
	LineChannelToken string `toml:"line_channel_token"`
	LineNotifyTo     string `toml:"line_notify_to"`

	// APIURL is where the page client finds the task API.
	APIURL string `toml:"api_url"`
}

// Load reads .env, then the TOML file named by TASKS_CONFIG, then the
// environment. Later sources win.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("TASKS_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	setDefaults(cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Port, "PORT")
	set(&cfg.Store, "TASKS_STORE")
	set(&cfg.DSN, "TASKS_DSN")
	set(&cfg.ProjectID, "GOOGLE_CLOUD_PROJECT")
	set(&cfg.LogLevel, "LOG_LEVEL")
	set(&cfg.LogFormat, "LOG_FORMAT")
	set(&cfg.LineChannelToken, "LINE_CHANNEL_TOKEN")
	set(&cfg.LineNotifyTo, "LINE_NOTIFY_TO")
	set(&cfg.APIURL, "TASKS_API_URL")
}

func setDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.Store == "" {
		cfg.Store = DefaultStore
	}
	if cfg.DSN == "" && cfg.Store == StoreSQLite {
		cfg.DSN = DefaultDSN
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMySQL:
		if c.DSN == "" {
			return fmt.Errorf("TASKS_DSN is required for the %s store", c.Store)
		}
	case StoreFirestore:
		if c.ProjectID == "" {
			return errors.New("GOOGLE_CLOUD_PROJECT is required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown store %q (want sqlite, mysql or firestore)", c.Store)
	}
	if c.LineChannelToken != "" && c.LineNotifyTo == "" {
		return errors.New("LINE_NOTIFY_TO is required when LINE_CHANNEL_TOKEN is set")
	}
	return nil
}

// Addr is the listen address for the server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
