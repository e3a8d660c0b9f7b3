package view

import (
	"image"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/geometry"
	"github.com/soocke/zone-console/domain/stream"
	"github.com/soocke/zone-console/ui/model"
	"github.com/soocke/zone-console/ui/presenter"
	"github.com/soocke/zone-console/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Channel names understood by SetConnection.
const (
	ChannelVideo  = stream.ChannelVideo
	ChannelAlerts = stream.ChannelAlerts
)

// Handlers are invoked on operator actions. Nil handlers are ignored.
type Handlers struct {
	Zones       ZoneActions
	Click       func(x, y float64)
	DoubleClick func(x, y float64)
	Reconnect   func(channel string)
	ToggleTheme func()
	Exit        func()
}

// Options sizes the video area.
type Options struct {
	MaxFrameW, MaxFrameH int
}

// RootView composes the top-level application layout and wires UI callbacks.
// It implements every view contract the presenters need.
type RootView struct {
	opts   Options
	logger zerolog.Logger

	// Subviews
	Video       VideoPanel
	Zones       ZonePanel
	Alerts      AlertsPanel
	Connections map[string]ConnectionBar

	// Widgets
	SystemLabel  *TLabelWidget
	MessageLabel *TLabelWidget
}

var (
	_ presenter.VideoView      = (*RootView)(nil)
	_ presenter.ZoneView       = (*RootView)(nil)
	_ presenter.ConnectionView = (*RootView)(nil)
	_ presenter.AlertsView     = (*RootView)(nil)
	_ presenter.SystemView     = (*RootView)(nil)
)

func NewRootView(opts Options, logger zerolog.Logger) *RootView {
	return &RootView{opts: opts, logger: logger, Connections: make(map[string]ConnectionBar)}
}

// Build constructs the layout. Must run on the Tk thread.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: title, system indicator, buttons
	header := Frame()
	Grid(header, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Grid(TLabel(Txt("Operator Console"), Style(theme.StyleHeaderLabel)), In(header), Row(0), Column(0), Sticky("w"))
	rv.SystemLabel = TLabel(Txt("🔴 System Stopped"), Style(theme.StatusStyle(false)))
	Grid(rv.SystemLabel, In(header), Row(0), Column(1), Sticky("w"), Padx("0.4m"))
	GridColumnConfigure(header.Window, 2, Weight(1))
	themeBtn := TButton(Txt("Toggle Theme"), Command(func() { call0(h.ToggleTheme) }))
	Grid(themeBtn, In(header), Row(0), Column(3), Sticky("e"), Padx("0.2m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(func() { call0(h.Exit) }))
	Grid(exitBtn, In(header), Row(0), Column(4), Sticky("e"), Padx("0.2m"))

	// Row 1: one bar per stream channel
	bars := Frame()
	Grid(bars, Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"))
	for i, ch := range []struct{ name, title string }{{ChannelVideo, "Video"}, {ChannelAlerts, "Alerts"}} {
		name := ch.name
		rv.Connections[name] = NewConnectionBar(bars, i, 0, ch.title, func() {
			if h.Reconnect != nil {
				h.Reconnect(name)
			}
		})
	}

	// Row 2: video on the left, alerts on the right
	videoFrame := Frame()
	Grid(videoFrame, Row(2), Column(0), Sticky("nw"), Padx("0.4m"), Pady("0.3m"))
	rv.Video = NewVideoPanel(videoFrame, 0, rv.opts.MaxFrameW, rv.opts.MaxFrameH, h.Click, h.DoubleClick)

	alertsFrame := Frame()
	Grid(alertsFrame, Row(2), Column(1), Sticky("nswe"), Padx("0.4m"), Pady("0.3m"))
	rv.Alerts = NewAlertsPanel(alertsFrame, 0)
	GridColumnConfigure(App, 1, Weight(1))
	GridRowConfigure(App, 2, Weight(1))

	// Row 3: zone configuration and operator messages
	zoneFrame := Frame()
	Grid(zoneFrame, Row(3), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.Zones = NewZonePanel(h.Zones, rv.logger)
	end := rv.Zones.Build(zoneFrame, 0)
	rv.MessageLabel = TLabel(Txt(""), Style(theme.StyleMessageLabel))
	Grid(rv.MessageLabel, In(zoneFrame), Row(end), Column(0), Columnspan(3), Sticky("w"), Padx("0.4m"))
}

// --- VideoPresenter view contract ---

// ShowFrame proxies to the video panel and returns the displayed size.
func (rv *RootView) ShowFrame(img *image.RGBA) geometry.Size {
	if rv == nil || rv.Video == nil {
		return geometry.Size{}
	}
	return rv.Video.ShowFrame(img)
}

func (rv *RootView) SetVideoError(msg string) {
	if rv != nil && rv.Video != nil {
		rv.Video.SetOverlay(msg)
	}
}

// --- ZonePresenter view contract ---

// SetDrawing toggles the panel controls and the crosshair cursor.
func (rv *RootView) SetDrawing(drawing bool, points int) {
	if rv == nil {
		return
	}
	if rv.Zones != nil {
		rv.Zones.SetDrawing(drawing, points)
	}
	if rv.Video != nil {
		rv.Video.SetCrosshair(drawing)
	}
}

func (rv *RootView) SetZones(ids []string) {
	if rv != nil && rv.Zones != nil {
		rv.Zones.SetZones(ids)
	}
}

func (rv *RootView) ClearZoneInput() {
	if rv != nil && rv.Zones != nil {
		rv.Zones.ClearInput()
	}
}

func (rv *RootView) SetMessage(msg string) {
	if rv != nil && rv.MessageLabel != nil {
		rv.MessageLabel.Configure(Txt(msg))
	}
}

// --- remaining presenter contracts ---

func (rv *RootView) SetConnection(channel string, info presenter.ConnectionInfo) {
	if rv == nil {
		return
	}
	if bar, ok := rv.Connections[channel]; ok {
		bar.SetConnection(info)
		return
	}
	rv.logger.Warn().Str("channel", channel).Msg("no connection bar for channel")
}

func (rv *RootView) SetAlerts(rows []model.AlertRow) {
	if rv != nil && rv.Alerts != nil {
		rv.Alerts.SetAlerts(rows)
	}
}

func (rv *RootView) SetSystemStatus(label string, running bool) {
	if rv != nil && rv.SystemLabel != nil {
		rv.SystemLabel.Configure(Txt(label), Style(theme.StatusStyle(running)))
	}
}
