package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/alerts"
	"github.com/soocke/zone-console/domain/zone"
	"github.com/soocke/zone-console/metrics"
)

const (
	statusPath = "/api/status"
	zonesPath  = "/api/zones"
	healthPath = "/health"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 2048
)

// ErrRejected wraps failures reported by the backend in the response body.
var ErrRejected = errors.New("backend rejected request")

// SystemStatus is the /api/status payload.
type SystemStatus struct {
	PipelineRunning bool           `json:"pipeline_running"`
	Zones           []string       `json:"zones"`
	RecentAlerts    []alerts.Alert `json:"recent_alerts,omitempty"`
}

// Health is the /health payload.
type Health struct {
	Status               string `json:"status"`
	ModelLoaded          bool   `json:"model_loaded"`
	RTSPConnected        bool   `json:"rtsp_connected"`
	WebsocketConnections int    `json:"websocket_connections"`
	ZonesCount           int    `json:"zones_count"`
	AlertsCount          int    `json:"alerts_count"`
}

// result is the {status, message} envelope returned by mutating endpoints.
type result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ClientConfig controls how the backend client behaves.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Client talks to the detection backend's REST API.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient validates cfg and returns a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("backend base url is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend base url %q: scheme must be http or https", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: parsed,
		client:  httpClient,
		logger:  cfg.Logger.With().Str("component", "backend").Logger(),
		metrics: cfg.Metrics,
	}, nil
}

// Status fetches the pipeline status and persisted zone ids.
func (c *Client) Status(ctx context.Context) (SystemStatus, error) {
	var st SystemStatus
	err := c.do(ctx, http.MethodGet, statusPath, nil, &st)
	c.metrics.StatusPolled(err == nil)
	if err != nil {
		return SystemStatus{}, fmt.Errorf("status: %w", err)
	}
	if st.Zones == nil {
		st.Zones = []string{}
	}
	return st, nil
}

// Health fetches the backend health summary.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, healthPath, nil, &h); err != nil {
		return Health{}, fmt.Errorf("health: %w", err)
	}
	return h, nil
}

// CreateZone persists z. The zone is validated before any request is made.
func (c *Client) CreateZone(ctx context.Context, z zone.Zone) error {
	if err := z.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(z)
	if err != nil {
		return fmt.Errorf("marshal zone: %w", err)
	}
	var res result
	err = c.do(ctx, http.MethodPost, zonesPath, payload, &res)
	if err == nil {
		err = res.err()
	}
	c.metrics.ZoneCreated(err == nil)
	if err != nil {
		return fmt.Errorf("create zone %q: %w", z.ID, err)
	}
	c.logger.Info().Str("zone", z.ID).Int("points", len(z.Points)).Msg("zone saved")
	return nil
}

// DeleteZone removes the zone with the given id.
func (c *Client) DeleteZone(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return zone.ErrEmptyZoneID
	}
	var res result
	err := c.do(ctx, http.MethodDelete, zonesPath+"/"+url.PathEscape(id), nil, &res)
	if err == nil {
		err = res.err()
	}
	c.metrics.ZoneDeleted(err == nil)
	if err != nil {
		return fmt.Errorf("delete zone %q: %w", id, err)
	}
	c.logger.Info().Str("zone", id).Msg("zone deleted")
	return nil
}

func (r result) err() error {
	if r.Status == "error" {
		msg := r.Message
		if msg == "" {
			msg = "unspecified error"
		}
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, p string, body []byte, out any) error {
	// p is already escaped.
	endpoint := *c.baseURL
	endpoint.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + p
	unescaped, err := url.PathUnescape(endpoint.RawPath)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", p, err)
	}
	endpoint.Path = unescaped

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var res result
		if json.Unmarshal(msg, &res) == nil && res.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, res.Message)
		}
		return fmt.Errorf("response status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug().Str("method", method).Str("path", p).Int("status", resp.StatusCode).Msg("backend request")
	return nil
}
