package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ZoneActions are the operator commands raised by the zone panel.
type ZoneActions struct {
	StartDrawing func(id string)
	Cancel       func()
	Finish       func()
	ClearPoints  func()
	CopyPoints   func()
	AddSample    func(id string)
	Delete       func(id string)
}

// ZonePanel owns the zone id input, drawing controls and the zone list.
type ZonePanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int)
	SetDrawing(drawing bool, points int)
	SetZones(ids []string)
	ClearInput()
}

type zonePanel struct {
	actions ZoneActions
	logger  zerolog.Logger

	idInput     *TextWidget
	drawBtn     *TButtonWidget
	sampleBtn   *TButtonWidget
	cancelBtn   *TButtonWidget
	finishBtn   *TButtonWidget
	clearBtn    *TButtonWidget
	copyBtn     *TButtonWidget
	deleteBtn   *TButtonWidget
	pointsLabel *LabelWidget
	zoneSelect  *TComboboxWidget
	zones       []string
}

func NewZonePanel(actions ZoneActions, logger zerolog.Logger) ZonePanel {
	return &zonePanel{actions: actions, logger: logger}
}

func (v *zonePanel) Build(parent *FrameWidget, startRow int) (row int) {
	row = startRow
	Grid(TLabel(Txt("Zone Configuration"), Style(theme.StyleHeaderLabel)), In(parent), Row(row), Column(0), Columnspan(3), Sticky("w"), Pady("0.3m"))
	row++

	Grid(Label(Txt("Zone ID"), Anchor("w")), In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"))
	v.idInput = Text(Height(1), Width(24))
	Grid(v.idInput, In(parent), Row(row), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	row++

	v.drawBtn = TButton(Txt("🎯 Draw Zone"), Style(theme.StylePrimaryButton), Command(func() { call1(v.actions.StartDrawing, v.input()) }))
	Grid(v.drawBtn, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	v.sampleBtn = TButton(Txt("Add Sample Zone"), Command(func() { call1(v.actions.AddSample, v.input()) }))
	Grid(v.sampleBtn, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	v.cancelBtn = TButton(Txt("Cancel"), Style(theme.StyleDangerButton), Command(func() { call0(v.actions.Cancel) }))
	Grid(v.cancelBtn, In(parent), Row(row), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	row++

	v.finishBtn = TButton(Txt("Finish Zone"), Command(func() { call0(v.actions.Finish) }))
	Grid(v.finishBtn, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	v.clearBtn = TButton(Txt("Clear Points"), Command(func() { call0(v.actions.ClearPoints) }))
	Grid(v.clearBtn, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	v.copyBtn = TButton(Txt("Copy Points"), Command(func() { call0(v.actions.CopyPoints) }))
	Grid(v.copyBtn, In(parent), Row(row), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	row++

	v.pointsLabel = Label(Txt(""), Anchor("w"))
	Grid(v.pointsLabel, In(parent), Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"))
	row++

	Grid(Label(Txt("Active Zones"), Anchor("w")), In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"))
	v.zoneSelect = TCombobox(Values([]string{"<none>"}), Width(22))
	Grid(v.zoneSelect, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	v.zoneSelect.Current(0)
	v.deleteBtn = TButton(Txt("Remove"), Style(theme.StyleDangerButton), Command(v.deleteSelected))
	Grid(v.deleteBtn, In(parent), Row(row), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	row++

	v.SetDrawing(false, 0)
	return row
}

func (v *zonePanel) input() string {
	if v.idInput == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(v.idInput.Get("1.0", END), ""))
}

func (v *zonePanel) deleteSelected() {
	if v.zoneSelect == nil || len(v.zones) == 0 {
		return
	}
	idx, err := strconv.Atoi(v.zoneSelect.Current(nil))
	if err != nil || idx < 0 || idx >= len(v.zones) {
		v.logger.Error().Err(err).Msg("zone selection parse error")
		return
	}
	call1(v.actions.Delete, v.zones[idx])
}

// SetDrawing mirrors the drawing phase: the id input is locked while drawing.
func (v *zonePanel) SetDrawing(drawing bool, points int) {
	idle, active := "normal", "disabled"
	if drawing {
		idle, active = "disabled", "normal"
	}
	setState(idle, v.drawBtn, v.sampleBtn)
	setState(active, v.cancelBtn, v.finishBtn, v.clearBtn)
	if v.idInput != nil {
		v.idInput.Configure(State(idle))
	}
	if v.pointsLabel != nil {
		text := ""
		if drawing {
			text = fmt.Sprintf("Points: %d (click to add, double-click to finish)", points)
		}
		v.pointsLabel.Configure(Txt(text))
	}
}

func (v *zonePanel) SetZones(ids []string) {
	v.zones = append(v.zones[:0], ids...)
	if v.zoneSelect == nil {
		return
	}
	values, state := ids, "normal"
	if len(values) == 0 {
		values, state = []string{"<none>"}, "disabled"
	}
	v.zoneSelect.Configure(Values(values))
	v.zoneSelect.Current(0)
	setState(state, v.deleteBtn)
}

func (v *zonePanel) ClearInput() {
	if v.idInput == nil {
		return
	}
	v.idInput.Configure(State("normal"))
	v.idInput.Delete("1.0", END)
}

func setState(state string, btns ...*TButtonWidget) {
	for _, b := range btns {
		if b != nil {
			b.Configure(State(state))
		}
	}
}

func call0(fn func()) {
	if fn != nil {
		fn()
	}
}

func call1(fn func(string), s string) {
	if fn != nil {
		fn(s)
	}
}
