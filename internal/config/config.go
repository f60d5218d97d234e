// Package config loads host configuration from HOSTLINK_* environment
// variables. Nested sections add their own prefix (HOSTLINK_REMOTE_ADDR,
// HOSTLINK_LOGGING_LEVEL). Command-line flags override what is loaded here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable.
const Prefix = "HOSTLINK"

// Config holds all host configuration.
type Config struct {
	Remote   RemoteConfig
	Storage  StorageConfig
	Logging  LogConfig
	Manifest string `envconfig:"MANIFEST"`
	Locale   string `envconfig:"LOCALE"`
	Metrics  string `envconfig:"METRICS_ADDR"`
}

// RemoteConfig configures the remote-access listener.
type RemoteConfig struct {
	Addr            string        `envconfig:"ADDR" default:"127.0.0.1:9877"`
	Secret          string        `envconfig:"SECRET"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// StorageConfig configures the lifecycle journal.
type StorageConfig struct {
	DataDir string `envconfig:"DATA_DIR"`
	DSN     string `envconfig:"DSN"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"info"`
	Development bool   `envconfig:"DEV" default:"false"`
}

// Load reads the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// DefaultDataDir returns ~/.config/hostlink, or "." without a home directory.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "hostlink")
}

// DataDirPath resolves the data directory: configured value, else default.
func (c *Config) DataDirPath() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return DefaultDataDir()
}

// JournalDSN returns the journal DSN: configured DSN, else a SQLite file in
// the data directory.
func (c *Config) JournalDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return "sqlite://" + filepath.Join(c.DataDirPath(), "hostlink.db")
}
