package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/config"
	"github.com/soocke/zone-console/debug"
	"github.com/soocke/zone-console/domain/alerts"
	"github.com/soocke/zone-console/domain/backend"
	"github.com/soocke/zone-console/domain/render"
	"github.com/soocke/zone-console/domain/stream"
	"github.com/soocke/zone-console/domain/zone"
	"github.com/soocke/zone-console/metrics"
	"github.com/soocke/zone-console/ui/model"
	"github.com/soocke/zone-console/ui/presenter"
	"github.com/soocke/zone-console/ui/view"
)

// AppContainer assembles domain services, presenters and the root view.
type AppContainer struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	Backend  *backend.Client
	Poller   *backend.Poller
	Pipeline *render.Pipeline
	Machine  *zone.Machine
	Alerts   *alerts.Buffer
	Feed     *alerts.Feed
	Video    *stream.Manager
	AlertsWS *stream.Manager
	Zones    *model.ZoneList
	RootView *view.RootView

	// Presenters
	VideoPresenter   *presenter.VideoPresenter
	ZonePresenter    *presenter.ZonePresenter
	AlertsPresenter  *presenter.AlertsPresenter
	StatusPresenter  *presenter.StatusPresenter
	VideoConnection  *presenter.ConnectionPresenter
	AlertsConnection *presenter.ConnectionPresenter
	Loop             *presenter.Loop

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// BuildContainer constructs all components and opens both streams. The view
// is created but not built; widgets are laid out on the Tk thread by the app.
func BuildContainer(cfg *config.Config, logger zerolog.Logger) (*AppContainer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	_ = cfg.Validate()
	c := &AppContainer{Config: cfg, Logger: logger, Metrics: metrics.New(), Zones: model.NewZoneList()}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	client, err := backend.NewClient(backend.ClientConfig{
		BaseURL: cfg.APIBase,
		Timeout: cfg.RequestTimeout(),
		Logger:  logger,
		Metrics: c.Metrics,
	})
	if err != nil {
		c.cancel()
		return nil, fmt.Errorf("backend client: %w", err)
	}
	c.Backend = client
	c.RootView = view.NewRootView(view.Options{MaxFrameW: cfg.PreviewMaxW, MaxFrameH: cfg.PreviewMaxH}, logger)

	// The machine's sink is the zone presenter, which in turn needs the
	// pipeline that reads the machine's draft.
	var zones *presenter.ZonePresenter
	c.Machine = zone.NewMachine(zone.SinkFunc(func(z zone.Zone) { zones.Submit(z) }), logger)
	c.Pipeline = render.NewPipeline(render.Config{
		Workers: cfg.DecodeWorkers,
		Draft:   c.Machine,
		Logger:  logger,
		Metrics: c.Metrics,
	})
	c.Pipeline.AddListener(render.ResolutionLogger(logger))
	c.VideoPresenter = presenter.NewVideoPresenter(c.Pipeline, c.RootView)
	zones = presenter.NewZonePresenter(client, c.VideoPresenter, c.Pipeline, c.RootView, c.Zones, cfg.RequestTimeout(), logger)
	zones.SetMachine(c.Machine)
	c.Machine.AddListener(zones.OnState)
	c.ZonePresenter = zones

	c.Alerts = alerts.NewBuffer(cfg.AlertCapacity, c.Metrics)
	c.Feed = alerts.NewFeed(c.Alerts, logger, c.Metrics)
	c.AlertsPresenter = presenter.NewAlertsPresenter(c.Alerts, c.RootView)

	c.Poller = backend.NewPoller(client, cfg.StatusInterval(), logger)
	c.StatusPresenter = presenter.NewStatusPresenter(model.NewSystemModel(), c.Zones, c.RootView)
	c.Poller.AddListener(c.StatusPresenter.OnStatus)

	c.VideoConnection = presenter.NewConnectionPresenter(view.ChannelVideo, nil, c.RootView, logger)
	c.AlertsConnection = presenter.NewConnectionPresenter(view.ChannelAlerts, nil, c.RootView, logger)
	dialer := stream.WebsocketDialer{HandshakeTimeout: cfg.HandshakeTimeout()}
	initial, maxDelay := cfg.VideoBackoff()
	c.Video = stream.New(stream.Config{
		Channel:     view.ChannelVideo,
		URL:         cfg.VideoURL,
		MaxAttempts: cfg.MaxReconnectAttempts,
		Policy:      stream.ExponentialPolicy(initial, maxDelay),
		Dialer:      dialer,
		Logger:      logger,
		Metrics:     c.Metrics,
	},
		stream.WithHandler(render.MsgFrame, render.FrameHandler(c.Pipeline, logger)),
		stream.WithHandler(render.MsgError, render.ErrorHandler(c.VideoPresenter.OnBackendError, logger)),
		stream.WithStatusListener(c.VideoConnection.OnStatus),
	)
	c.AlertsWS = stream.New(stream.Config{
		Channel:     view.ChannelAlerts,
		URL:         cfg.AlertsURL,
		MaxAttempts: cfg.MaxReconnectAttempts,
		Policy:      stream.FixedPolicy(cfg.AlertsRetry()),
		Dialer:      dialer,
		Logger:      logger,
		Metrics:     c.Metrics,
	}, append(c.Feed.Options(), stream.WithStatusListener(c.AlertsConnection.OnStatus))...)
	c.VideoConnection.SetReconnector(c.Video)
	c.AlertsConnection.SetReconnector(c.AlertsWS)

	c.Loop = &presenter.Loop{
		Video:       c.VideoPresenter,
		Zones:       c.ZonePresenter,
		Alerts:      c.AlertsPresenter,
		Status:      c.StatusPresenter,
		Connections: []*presenter.ConnectionPresenter{c.VideoConnection, c.AlertsConnection},
	}
	return c, nil
}

// Handlers maps view actions onto the presenters.
func (c *AppContainer) Handlers(toggleTheme, exit func()) view.Handlers {
	zp := c.ZonePresenter
	conns := map[string]*presenter.ConnectionPresenter{
		c.Video.Channel():    c.VideoConnection,
		c.AlertsWS.Channel(): c.AlertsConnection,
	}
	return view.Handlers{
		Zones: view.ZoneActions{
			StartDrawing: zp.StartDrawing,
			Cancel:       zp.Cancel,
			Finish:       zp.Finish,
			ClearPoints:  zp.ClearPoints,
			CopyPoints:   zp.CopyPoints,
			AddSample:    zp.AddSample,
			Delete:       zp.Delete,
		},
		Click:       zp.Click,
		DoubleClick: zp.DoubleClick,
		Reconnect: func(channel string) {
			if cp, ok := conns[channel]; ok {
				cp.Reconnect()
				return
			}
			c.Logger.Warn().Str("channel", channel).Msg("reconnect requested for unknown channel")
		},
		ToggleTheme: toggleTheme,
		Exit:        exit,
	}
}

// Start launches background work: status polling, the startup health check,
// the metrics endpoint and debug diagnostics.
func (c *AppContainer) Start() {
	go c.Poller.Run(c.ctx)
	go c.checkHealth()
	c.Metrics.Serve(c.ctx, c.Config.MetricsAddr, c.Logger)
	if c.Config.Debug {
		debug.StartGoroutineLogger(c.ctx, 10*time.Second, c.Logger)
		debug.StartMemLogger(c.ctx, 10*time.Second, c.Logger)
	}
}

func (c *AppContainer) checkHealth() {
	ctx, cancel := context.WithTimeout(c.ctx, c.Config.RequestTimeout())
	defer cancel()
	h, err := c.Backend.Health(ctx)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("backend health check failed")
		return
	}
	c.Logger.Info().
		Str("status", h.Status).
		Bool("model_loaded", h.ModelLoaded).
		Bool("rtsp_connected", h.RTSPConnected).
		Int("zones", h.ZonesCount).
		Msg("backend health")
}

// Shutdown stops background work and closes both streams. Safe to call more
// than once.
func (c *AppContainer) Shutdown() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.cancel()
		if st, ok := c.Poller.Last(); ok {
			c.Logger.Info().
				Bool("pipeline_running", st.PipelineRunning).
				Strs("zones", st.Zones).
				Msg("last backend status")
		}
		c.Video.Close()
		c.AlertsWS.Close()
		c.ZonePresenter.Close()
		c.AlertsPresenter.Close()
		c.Pipeline.Close()
		c.Logger.Info().Msg("console shut down")
	})
}
