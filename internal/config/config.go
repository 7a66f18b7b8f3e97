package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PushConfig describes the messaging push endpoint used to deliver
// billing notifications. The bearer token is intentionally not part of
// the YAML file; it is read from the environment (see Load).
type PushConfig struct {
	// Endpoint is the push API URL messages are POSTed to.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Token is the bearer token for the push API. Populated from the
	// PUSH_TOKEN environment variable, never serialized.
	Token string `yaml:"-" json:"-"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the webhook and API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level" json:"log_level"`

	// StorePath is the SQLite database file holding teacher registrations.
	StorePath string `yaml:"store_path" json:"store_path"`

	// CacheDir is the base directory for the feed/roster HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BillingCron is a cron-style schedule string for the monthly billing
	// run, evaluated in the billing timezone (UTC+8). Default fires at
	// 09:00 on the 1st of every month for the previous month.
	BillingCron string `yaml:"billing_cron" json:"billing_cron"`

	// Push configures the messaging push channel.
	Push PushConfig `yaml:"push" json:"push"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		LogLevel:    "info",
		StorePath:   "./var/tutorbill.db",
		CacheDir:    "./var/feed-cache",
		BillingCron: "0 9 1 * *",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StorePath == "" {
		c.StorePath = "./var/tutorbill.db"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/feed-cache"
	}
	if c.BillingCron == "" {
		c.BillingCron = "0 9 1 * *"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - A .env file next to the working directory is loaded first (if
//     present) so PUSH_TOKEN can live outside the config file.
//   - If the config file does not exist, a default config is written
//     with 0600 perms and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	// Secrets come from the environment; .env is optional.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.Push.Token = os.Getenv("PUSH_TOKEN")
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.Push.Token = os.Getenv("PUSH_TOKEN")

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tutorbill-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
