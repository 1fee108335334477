// Package config loads client configuration from a yaml file, a .env file
// and CASH4EDU_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig configures the remote REST backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig selects and configures the persisted key-value backend.
type StorageConfig struct {
	// Backend is "sqlite" or "redis".
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	// SealKey enables sealing of the auth token at rest when non-empty.
	SealKey string `yaml:"seal_key"`
}

// SessionConfig tunes the profile session container.
type SessionConfig struct {
	ProfileTTL   time.Duration `yaml:"profile_ttl"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ServerConfig configures the local companion API.
type ServerConfig struct {
	Addr          string  `yaml:"addr"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
	// ClientKey, when set, must be sent by the UI shell as X-Client-Key.
	ClientKey string `yaml:"client_key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with the client's built-in defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.cash4edu.in/api/v1",
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: "./cash4edu.db",
			RedisAddr:  "localhost:6379",
		},
		Session: SessionConfig{
			ProfileTTL:   30 * time.Second,
			PollInterval: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			RatePerSecond: 10,
			RateBurst:     20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment are used. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("CASH4EDU_API_BASE_URL", &c.API.BaseURL)
	str("CASH4EDU_STORAGE_BACKEND", &c.Storage.Backend)
	str("CASH4EDU_SQLITE_PATH", &c.Storage.SQLitePath)
	str("CASH4EDU_REDIS_ADDR", &c.Storage.RedisAddr)
	str("CASH4EDU_SEAL_KEY", &c.Storage.SealKey)
	str("CASH4EDU_SERVER_ADDR", &c.Server.Addr)
	str("CASH4EDU_CLIENT_KEY", &c.Server.ClientKey)
	str("CASH4EDU_LOG_LEVEL", &c.Log.Level)

	if v := getenv("CASH4EDU_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CASH4EDU_REDIS_DB: %w", err)
		}
		c.Storage.RedisDB = n
	}
	if err := dur("CASH4EDU_API_TIMEOUT", &c.API.Timeout); err != nil {
		return err
	}
	if err := dur("CASH4EDU_PROFILE_TTL", &c.Session.ProfileTTL); err != nil {
		return err
	}
	return dur("CASH4EDU_POLL_INTERVAL", &c.Session.PollInterval)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Session.ProfileTTL < 0 {
		return fmt.Errorf("session.profile_ttl must not be negative")
	}
	if c.Session.PollInterval < 0 {
		return fmt.Errorf("session.poll_interval must not be negative")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	return nil
}
