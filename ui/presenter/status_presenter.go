package presenter

import (
	"sync"

	"github.com/soocke/zone-console/domain/backend"
	"github.com/soocke/zone-console/ui/model"
)

// SystemView shows the pipeline indicator.
type SystemView interface {
	SetSystemStatus(label string, running bool)
}

// StatusPresenter applies polled backend status to the system indicator and
// replaces the zone list with the backend's ids.
type StatusPresenter struct {
	system *model.SystemModel
	zones  *model.ZoneList
	view   SystemView

	mu      sync.Mutex
	pending *backend.SystemStatus
	shown   bool
}

func NewStatusPresenter(system *model.SystemModel, zones *model.ZoneList, view SystemView) *StatusPresenter {
	return &StatusPresenter{system: system, zones: zones, view: view}
}

// OnStatus queues a poll result. Safe from any goroutine.
func (p *StatusPresenter) OnStatus(st backend.SystemStatus) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = &st
	p.mu.Unlock()
}

func (p *StatusPresenter) Tick() {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	st := p.pending
	p.pending = nil
	p.mu.Unlock()
	if st == nil {
		if !p.shown {
			p.shown = true
			p.view.SetSystemStatus(p.system.Label(), p.system.Running())
		}
		return
	}
	p.system.Update(*st)
	p.zones.Replace(st.Zones)
	p.shown = true
	p.view.SetSystemStatus(p.system.Label(), p.system.Running())
}
