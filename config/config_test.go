package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.json")
	cfg := DefaultConfig()
	cfg.APIBase = "https://backend.example:9000"
	cfg.AlertCapacity = 50
	cfg.MetricsAddr = ":9100"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidateClamps(t *testing.T) {
	cfg := &Config{
		LogLevel:          "loud",
		APIBase:           "http://api.local:8002/",
		VideoURL:          "http://wrong-scheme/ws",
		AlertsURL:         "wss://alerts.local/ws/alerts",
		VideoBackoffMaxMS: 5,
		DecodeWorkers:     64,
	}
	require.NoError(t, cfg.Validate())
	d := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://api.local:8002", cfg.APIBase)
	assert.Equal(t, d.VideoURL, cfg.VideoURL)
	assert.Equal(t, "wss://alerts.local/ws/alerts", cfg.AlertsURL)
	assert.Equal(t, 10, cfg.MaxReconnectAttempts)
	assert.Equal(t, 1000, cfg.VideoBackoffInitialMS)
	assert.Equal(t, 1000, cfg.VideoBackoffMaxMS)
	assert.Equal(t, 20, cfg.AlertCapacity)
	assert.Equal(t, 8, cfg.DecodeWorkers)
	assert.Equal(t, d.PreviewMaxW, cfg.PreviewMaxW)
	assert.Equal(t, d.WindowH, cfg.WindowH)
}

func TestDurationsAndLevel(t *testing.T) {
	cfg := DefaultConfig()
	initial, maxDelay := cfg.VideoBackoff()
	assert.Equal(t, time.Second, initial)
	assert.Equal(t, 10*time.Second, maxDelay)
	assert.Equal(t, 2*time.Second, cfg.AlertsRetry())
	assert.Equal(t, 5*time.Second, cfg.StatusInterval())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.HandshakeTimeout())

	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	cfg.Debug = true
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	cfg.LogLevel = "warn"
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	cfg.Debug = false
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
}
