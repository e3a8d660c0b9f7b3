package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/zone-console/config"
	"github.com/soocke/zone-console/ui/theme"
)

const (
	tick = 50 * time.Millisecond
)

type app struct {
	config  *config.Config
	logger  zerolog.Logger
	title   string
	width   int
	height  int
	afterID string
	c       *AppContainer
}

func NewApp(title string, cfg *config.Config, logger zerolog.Logger) *app {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &app{config: cfg, logger: logger, title: title, width: cfg.WindowW, height: cfg.WindowH}
}

// Start builds the container and the window and blocks in the Tk event loop.
func (a *app) Start() error {
	c, err := BuildContainer(a.config, a.logger)
	if err != nil {
		return err
	}
	a.c = c

	App.WmTitle(a.title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", a.width, a.height))
	theme.InitStyles()
	c.RootView.Build(c.Handlers(func() { theme.ToggleDark() }, a.exitHandler))

	c.Loop.Schedule = a.scheduleUpdate
	c.Start()
	a.logger.Info().
		Str("api", a.config.APIBase).
		Str("video", a.config.VideoURL).
		Str("alerts", a.config.AlertsURL).
		Msg("console started")

	a.scheduleUpdate()
	App.Wait()
	c.Shutdown()
	return nil
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	a.c.Shutdown()
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}
