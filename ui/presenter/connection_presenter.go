package presenter

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/stream"
	"github.com/soocke/zone-console/ui/model"
)

// Reconnector is the manager surface needed for the manual reconnect action.
type Reconnector interface {
	Reconnect() error
}

// ConnectionInfo is what the view shows for one channel.
type ConnectionInfo struct {
	Badge        string
	Label        string
	Connected    bool
	CanReconnect bool
	Uptime       time.Duration
}

// ConnectionView displays per-channel connection state.
type ConnectionView interface {
	SetConnection(channel string, info ConnectionInfo)
}

// ConnectionPresenter reflects one channel's status in the view.
type ConnectionPresenter struct {
	channel string
	mgr     Reconnector
	view    ConnectionView
	model   *model.ConnectionModel
	logger  zerolog.Logger

	mu      sync.Mutex
	pending []stream.Status

	shownUptime time.Duration
	shown       bool
}

func NewConnectionPresenter(channel string, mgr Reconnector, view ConnectionView, logger zerolog.Logger) *ConnectionPresenter {
	return &ConnectionPresenter{
		channel: channel,
		mgr:     mgr,
		view:    view,
		model:   model.NewConnectionModel(channel),
		logger:  logger,
	}
}

// SetReconnector attaches the manager after construction; managers start
// dialing as soon as they exist and need OnStatus registered first.
func (p *ConnectionPresenter) SetReconnector(mgr Reconnector) { p.mgr = mgr }

// OnStatus queues a manager transition. Safe from any goroutine.
func (p *ConnectionPresenter) OnStatus(prev, next stream.Status) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Reconnect triggers a manual reconnect.
func (p *ConnectionPresenter) Reconnect() {
	if p == nil || p.mgr == nil {
		return
	}
	if err := p.mgr.Reconnect(); err != nil {
		p.logger.Warn().Err(err).Str("channel", p.channel).Msg("manual reconnect failed")
	}
}

// Tick applies queued transitions in order and refreshes the view when the
// labels or the whole-second uptime changed.
func (p *ConnectionPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	changed := !p.shown
	for _, s := range pending {
		if p.model.Update(s, now) {
			changed = true
		}
	}
	_, total := p.model.Uptime(now)
	total = total.Truncate(time.Second)
	if !changed && total == p.shownUptime {
		return
	}
	p.shown, p.shownUptime = true, total
	p.view.SetConnection(p.channel, ConnectionInfo{
		Badge:        p.model.Badge(),
		Label:        p.model.Label(),
		Connected:    p.model.Connected(),
		CanReconnect: p.model.CanReconnect(),
		Uptime:       total,
	})
}
