package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Video       *VideoPresenter
	Zones       *ZonePresenter
	Alerts      *AlertsPresenter
	Status      *StatusPresenter
	Connections []*ConnectionPresenter
	Schedule    func()
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	for _, c := range l.Connections {
		c.Tick(now)
	}
	l.Video.Tick()
	// Status may replace the zone list, so it runs before the zone panel.
	l.Status.Tick()
	l.Zones.Tick()
	l.Alerts.Tick()
	if l.Schedule != nil {
		l.Schedule()
	}
}
