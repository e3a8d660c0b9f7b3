package presenter

import (
	"slices"
	"sync"
	"time"

	"github.com/soocke/zone-console/domain/alerts"
	"github.com/soocke/zone-console/ui/model"
)

// AlertSource is the buffer surface the presenter subscribes to.
type AlertSource interface {
	Snapshot() []alerts.Alert
	Subscribe(fn func([]alerts.Alert)) (unsubscribe func())
}

// AlertsView renders the alert list. An empty slice shows the placeholder.
type AlertsView interface {
	SetAlerts(rows []model.AlertRow)
}

// AlertsPresenter keeps only the newest buffer snapshot and renders it on Tick.
type AlertsPresenter struct {
	view  AlertsView
	loc   *time.Location
	unsub func()

	mu      sync.Mutex
	latest  []alerts.Alert
	pending bool

	shown    []string // keys of the rendered rows
	rendered bool
}

func NewAlertsPresenter(src AlertSource, view AlertsView) *AlertsPresenter {
	p := &AlertsPresenter{view: view, loc: time.Local}
	if src != nil {
		p.latest, p.pending = src.Snapshot(), true
		p.unsub = src.Subscribe(p.onSnapshot)
	}
	return p
}

func (p *AlertsPresenter) onSnapshot(as []alerts.Alert) {
	p.mu.Lock()
	p.latest, p.pending = as, true
	p.mu.Unlock()
}

func (p *AlertsPresenter) Tick() {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	as, pending := p.latest, p.pending
	p.pending = false
	p.mu.Unlock()
	if !pending {
		return
	}
	rows := model.AlertRows(as, p.loc)
	keys := model.AlertKeys(rows)
	// Subscribers are notified on every push; only a changed key list redraws.
	if p.rendered && slices.Equal(keys, p.shown) {
		return
	}
	p.shown, p.rendered = keys, true
	p.view.SetAlerts(rows)
}

// Close stops the buffer subscription.
func (p *AlertsPresenter) Close() {
	if p != nil && p.unsub != nil {
		p.unsub()
	}
}
