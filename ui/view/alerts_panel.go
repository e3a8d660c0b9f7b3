package view

import (
	"strings"

	"github.com/soocke/zone-console/ui/model"
	"github.com/soocke/zone-console/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// AlertsPanel is a read-only list of recent alerts, newest last.
type AlertsPanel interface {
	SetAlerts(rows []model.AlertRow)
}

type alertsPanel struct {
	list *TextWidget
	last string
}

// NewAlertsPanel places the header at (row, 0) and the list below it. The list
// is as tall as the alert ring so the newest entry stays visible.
func NewAlertsPanel(parent *FrameWidget, row int) AlertsPanel {
	p := &alertsPanel{}
	Grid(TLabel(Txt("Real-time Alerts"), Style(theme.StyleHeaderLabel)), In(parent), Row(row), Column(0), Sticky("w"), Pady("0.3m"))
	p.list = Text(Height(20), Width(60), State("disabled"))
	Grid(p.list, In(parent), Row(row+1), Column(0), Sticky("nswe"), Padx("0.4m"), Pady("0.2m"))
	GridRowConfigure(parent.Window, row+1, Weight(1))
	p.SetAlerts(nil)
	return p
}

func (p *alertsPanel) SetAlerts(rows []model.AlertRow) {
	if p == nil || p.list == nil {
		return
	}
	lines := model.EmptyAlertsText
	if len(rows) > 0 {
		lines = make([]string, len(rows))
		for i, r := range rows {
			lines[i] = r.Text()
		}
	}
	text := strings.Join(lines, "\n")
	if text == p.last {
		return
	}
	p.last = text
	p.list.Configure(State("normal"))
	p.list.Delete("1.0", END)
	p.list.Insert(END, text)
	p.list.Configure(State("disabled"))
}
