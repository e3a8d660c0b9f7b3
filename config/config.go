package config

import (
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds runtime configuration for the console.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`

	// Backend endpoints
	APIBase   string `json:"api_base"`
	VideoURL  string `json:"video_url"`
	AlertsURL string `json:"alerts_url"`

	// Stream reconnection
	MaxReconnectAttempts    int `json:"max_reconnect_attempts"`
	VideoBackoffInitialMS   int `json:"video_backoff_initial_ms"`
	VideoBackoffMaxMS       int `json:"video_backoff_max_ms"`
	AlertsRetryMS           int `json:"alerts_retry_ms"`
	HandshakeTimeoutSeconds int `json:"handshake_timeout_seconds"`

	// Backend requests
	StatusIntervalSeconds int `json:"status_interval_seconds"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`

	AlertCapacity int `json:"alert_capacity"`
	DecodeWorkers int `json:"decode_workers"`

	// Window and preview sizing
	PreviewMaxW int `json:"preview_max_w"`
	PreviewMaxH int `json:"preview_max_h"`
	WindowW     int `json:"window_w"`
	WindowH     int `json:"window_h"`

	// Prometheus listen address; empty disables the endpoint.
	MetricsAddr string `json:"metrics_addr"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                   false,
		LogLevel:                "info",
		APIBase:                 "http://localhost:8002",
		VideoURL:                "ws://localhost:8002/ws/video",
		AlertsURL:               "ws://localhost:8002/ws/alerts",
		MaxReconnectAttempts:    10,
		VideoBackoffInitialMS:   1000,
		VideoBackoffMaxMS:       10000,
		AlertsRetryMS:           2000,
		HandshakeTimeoutSeconds: 10,
		StatusIntervalSeconds:   5,
		RequestTimeoutSeconds:   10,
		AlertCapacity:           20,
		DecodeWorkers:           1,
		PreviewMaxW:             960,
		PreviewMaxH:             540,
		WindowW:                 1400,
		WindowH:                 900,
	}
}

// Validate clamps/normalizes values to safe ranges. Malformed URLs fall
// back to the defaults.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	c.APIBase = strings.TrimRight(c.APIBase, "/")
	if !validURL(c.APIBase, "http", "https") {
		c.APIBase = d.APIBase
	}
	if !validURL(c.VideoURL, "ws", "wss") {
		c.VideoURL = d.VideoURL
	}
	if !validURL(c.AlertsURL, "ws", "wss") {
		c.AlertsURL = d.AlertsURL
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = d.MaxReconnectAttempts
	}
	if c.VideoBackoffInitialMS <= 0 {
		c.VideoBackoffInitialMS = d.VideoBackoffInitialMS
	}
	if c.VideoBackoffMaxMS < c.VideoBackoffInitialMS {
		c.VideoBackoffMaxMS = c.VideoBackoffInitialMS
	}
	if c.AlertsRetryMS <= 0 {
		c.AlertsRetryMS = d.AlertsRetryMS
	}
	if c.HandshakeTimeoutSeconds <= 0 {
		c.HandshakeTimeoutSeconds = d.HandshakeTimeoutSeconds
	}
	if c.StatusIntervalSeconds <= 0 {
		c.StatusIntervalSeconds = d.StatusIntervalSeconds
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = d.RequestTimeoutSeconds
	}
	if c.AlertCapacity <= 0 {
		c.AlertCapacity = d.AlertCapacity
	}
	if c.DecodeWorkers <= 0 {
		c.DecodeWorkers = 1
	}
	if c.DecodeWorkers > 8 {
		c.DecodeWorkers = 8
	}
	if c.PreviewMaxW < 160 {
		c.PreviewMaxW = d.PreviewMaxW
	}
	if c.PreviewMaxH < 90 {
		c.PreviewMaxH = d.PreviewMaxH
	}
	if c.WindowW < 640 {
		c.WindowW = d.WindowW
	}
	if c.WindowH < 480 {
		c.WindowH = d.WindowH
	}
	return nil
}

func validURL(raw string, schemes ...string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return true
		}
	}
	return false
}

// Level returns the parsed log level, or info when unset.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	if c.Debug && lvl > zerolog.DebugLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

func (c *Config) VideoBackoff() (initial, maxDelay time.Duration) {
	return time.Duration(c.VideoBackoffInitialMS) * time.Millisecond, time.Duration(c.VideoBackoffMaxMS) * time.Millisecond
}

func (c *Config) AlertsRetry() time.Duration {
	return time.Duration(c.AlertsRetryMS) * time.Millisecond
}

func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutSeconds) * time.Second
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
