package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds client-side counters. All methods are nil-safe so components
// can run without instrumentation.
type Metrics struct {
	// Frame pipeline
	FramesReceived   atomic.Uint64
	FramesDecoded    atomic.Uint64
	FramesSuperseded atomic.Uint64
	FramesStale      atomic.Uint64
	DecodeErrors     atomic.Uint64
	DecodeMicros     atomic.Uint64 // last decode duration

	// Alerts
	AlertsReceived atomic.Uint64
	AlertsDropped  atomic.Uint64 // evicted from the feed buffer

	// Zones
	ZonesCreated      atomic.Uint64
	ZoneCreateErrors  atomic.Uint64
	ZonesDeleted      atomic.Uint64
	ZoneDeleteErrors  atomic.Uint64
	StatusPollErrors  atomic.Uint64
	StatusPollSuccess atomic.Uint64

	connections *prometheus.CounterVec
	reconnects  *prometheus.CounterVec
	registry    *prometheus.Registry
}

// New creates a Metrics instance with its own Prometheus registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	gauge := func(name, help string, v *atomic.Uint64) {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: name, Help: help},
			func() float64 { return float64(v.Load()) },
		))
	}
	gauge("console_frames_received_total", "Frame payloads received on the video channel", &m.FramesReceived)
	gauge("console_frames_decoded_total", "Frame payloads decoded and painted", &m.FramesDecoded)
	gauge("console_frames_superseded_total", "Frame payloads replaced before decoding started", &m.FramesSuperseded)
	gauge("console_frames_stale_total", "Decoded frames discarded because a newer frame was already painted", &m.FramesStale)
	gauge("console_frame_decode_errors_total", "Frame payloads that failed to decode", &m.DecodeErrors)
	gauge("console_frame_decode_micros", "Duration of the last frame decode in microseconds", &m.DecodeMicros)
	gauge("console_alerts_received_total", "Alerts received on the alerts channel", &m.AlertsReceived)
	gauge("console_alerts_evicted_total", "Alerts evicted from the feed buffer", &m.AlertsDropped)
	gauge("console_zones_created_total", "Zones persisted successfully", &m.ZonesCreated)
	gauge("console_zone_create_errors_total", "Zone create requests that failed", &m.ZoneCreateErrors)
	gauge("console_zones_deleted_total", "Zones deleted successfully", &m.ZonesDeleted)
	gauge("console_zone_delete_errors_total", "Zone delete requests that failed", &m.ZoneDeleteErrors)
	gauge("console_status_polls_total", "Successful status polls", &m.StatusPollSuccess)
	gauge("console_status_poll_errors_total", "Failed status polls", &m.StatusPollErrors)

	m.connections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_stream_connections_total",
		Help: "Stream connections opened, by channel",
	}, []string{"channel"})
	m.reconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_stream_reconnects_total",
		Help: "Reconnect attempts scheduled, by channel",
	}, []string{"channel"})
	m.registry.MustRegister(m.connections, m.reconnects)
}

func (m *Metrics) FrameReceived() {
	if m != nil {
		m.FramesReceived.Add(1)
	}
}

func (m *Metrics) FrameSuperseded() {
	if m != nil {
		m.FramesSuperseded.Add(1)
	}
}

func (m *Metrics) FrameStale() {
	if m != nil {
		m.FramesStale.Add(1)
	}
}

// FrameDecoded records a successful decode and its duration.
func (m *Metrics) FrameDecoded(d time.Duration) {
	if m != nil {
		m.FramesDecoded.Add(1)
		m.DecodeMicros.Store(uint64(d.Microseconds()))
	}
}

func (m *Metrics) DecodeError() {
	if m != nil {
		m.DecodeErrors.Add(1)
	}
}

func (m *Metrics) AlertsIn(n int) {
	if m != nil && n > 0 {
		m.AlertsReceived.Add(uint64(n))
	}
}

func (m *Metrics) AlertDropped() {
	if m != nil {
		m.AlertsDropped.Add(1)
	}
}

func (m *Metrics) ZoneCreated(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.ZonesCreated.Add(1)
	} else {
		m.ZoneCreateErrors.Add(1)
	}
}

func (m *Metrics) ZoneDeleted(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.ZonesDeleted.Add(1)
	} else {
		m.ZoneDeleteErrors.Add(1)
	}
}

func (m *Metrics) StatusPolled(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.StatusPollSuccess.Add(1)
	} else {
		m.StatusPollErrors.Add(1)
	}
}

// ConnectionOpened counts a successful open on the named channel.
func (m *Metrics) ConnectionOpened(channel string) {
	if m != nil {
		m.connections.WithLabelValues(channel).Inc()
	}
}

// ReconnectScheduled counts a scheduled retry on the named channel.
func (m *Metrics) ReconnectScheduled(channel string) {
	if m != nil {
		m.reconnects.WithLabelValues(channel).Inc()
	}
}

// Registry exposes the underlying registry (tests, custom handlers).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr is a no-op.
func (m *Metrics) Serve(ctx context.Context, addr string, logger zerolog.Logger) {
	if m == nil || addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}
