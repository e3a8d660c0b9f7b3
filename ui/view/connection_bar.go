package view

import (
	"github.com/soocke/zone-console/ui/model"
	"github.com/soocke/zone-console/ui/presenter"
	"github.com/soocke/zone-console/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// ConnectionBar shows one channel's badge, lifecycle label, uptime and a
// reconnect button.
type ConnectionBar interface {
	SetConnection(info presenter.ConnectionInfo)
}

type connectionBar struct {
	title     string
	badge     *TLabelWidget
	label     *LabelWidget
	uptimeLbl *LabelWidget
	reconnect *TButtonWidget
}

// NewConnectionBar lays out the widgets in parent at (row, startCol..startCol+3).
func NewConnectionBar(parent *FrameWidget, row, startCol int, title string, onReconnect func()) ConnectionBar {
	b := &connectionBar{
		title:     title,
		badge:     TLabel(Txt("🔴 Disconnected"), Style(theme.StyleDisconnected)),
		label:     Label(Txt(title+": connecting..."), Width(34), Anchor("w")),
		uptimeLbl: Label(Txt(model.FormatUptime(0)), Width(14)),
		reconnect: TButton(Txt("Reconnect"), Command(func() { call0(onReconnect) })),
	}
	Grid(b.badge, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(b.label, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	Grid(b.uptimeLbl, In(parent), Row(row), Column(startCol+2), Sticky("w"), Padx("0.2m"))
	Grid(b.reconnect, In(parent), Row(row), Column(startCol+3), Sticky("w"), Padx("0.2m"))
	b.reconnect.Configure(State("disabled"))
	return b
}

func (b *connectionBar) SetConnection(info presenter.ConnectionInfo) {
	if b == nil || b.badge == nil {
		return
	}
	b.badge.Configure(Txt(info.Badge), Style(theme.StatusStyle(info.Connected)))
	b.label.Configure(Txt(b.title + ": " + info.Label))
	b.uptimeLbl.Configure(Txt(model.FormatUptime(info.Uptime)))
	state := "disabled"
	if info.CanReconnect {
		state = "normal"
	}
	b.reconnect.Configure(State(state))
}
