package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9877", cfg.Remote.Addr)
	assert.Equal(t, 5*time.Second, cfg.Remote.ShutdownTimeout)
	assert.Empty(t, cfg.Remote.Secret)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Empty(t, cfg.Metrics)
}

func TestLoad_Environment(t *testing.T) {
	env := map[string]string{
		"HOSTLINK_REMOTE_ADDR":             "0.0.0.0:7000",
		"HOSTLINK_REMOTE_SECRET":           "pssst",
		"HOSTLINK_REMOTE_SHUTDOWN_TIMEOUT": "250ms",
		"HOSTLINK_STORAGE_DATA_DIR":        "/var/lib/hostlink",
		"HOSTLINK_STORAGE_DSN":             "mysql://u:p@tcp(db:3306)/hostlink",
		"HOSTLINK_LOGGING_LEVEL":           "debug",
		"HOSTLINK_LOGGING_DEV":             "true",
		"HOSTLINK_MANIFEST":                "/opt/hostlink/manifest.json",
		"HOSTLINK_LOCALE":                  "de-DE",
		"HOSTLINK_METRICS_ADDR":            ":9090",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7000", cfg.Remote.Addr)
	assert.Equal(t, "pssst", cfg.Remote.Secret)
	assert.Equal(t, 250*time.Millisecond, cfg.Remote.ShutdownTimeout)
	assert.Equal(t, "/var/lib/hostlink", cfg.Storage.DataDir)
	assert.Equal(t, "mysql://u:p@tcp(db:3306)/hostlink", cfg.JournalDSN())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "/opt/hostlink/manifest.json", cfg.Manifest)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, ":9090", cfg.Metrics)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("HOSTLINK_REMOTE_SHUTDOWN_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestJournalDSN_DefaultsToDataDir(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataDir: "/tmp/hl"}}
	assert.Equal(t, "sqlite://"+filepath.Join("/tmp/hl", "hostlink.db"), cfg.JournalDSN())
}
