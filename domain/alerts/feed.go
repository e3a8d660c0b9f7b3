package alerts

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/stream"
	"github.com/soocke/zone-console/metrics"
)

// Alerts channel message types.
const (
	MsgAlerts           = "alerts"
	MsgConnectionStatus = "connection_status"
)

type alertsMessage struct {
	Data []Alert `json:"data"`
}

type connectionStatusMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Feed converts alerts-channel traffic into buffer entries.
type Feed struct {
	buf     *Buffer
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewFeed returns a feed writing into buf.
func NewFeed(buf *Buffer, logger zerolog.Logger, m *metrics.Metrics) *Feed {
	return &Feed{
		buf:     buf,
		logger:  logger.With().Str("component", "alerts").Logger(),
		metrics: m,
		now:     time.Now,
	}
}

// Options returns the stream options that attach the feed to a manager.
func (f *Feed) Options() []stream.Option {
	return []stream.Option{
		stream.WithOpenHandler(f.OnOpen),
		stream.WithHandler(MsgAlerts, f.HandleAlerts),
		stream.WithHandler(MsgConnectionStatus, f.HandleConnectionStatus),
	}
}

// OnOpen records a synthetic alert confirming the channel opened.
func (f *Feed) OnOpen() {
	f.buf.Push(f.synthetic(KindConnectionTest, "✅ WebSocket connection established"))
}

// HandleAlerts pushes every alert in an {type:"alerts", data:[...]} message.
func (f *Feed) HandleAlerts(msg stream.Message) {
	var am alertsMessage
	if err := msg.Decode(&am); err != nil {
		f.logger.Warn().Err(err).Msg("dropping malformed alerts message")
		return
	}
	if len(am.Data) == 0 {
		return
	}
	now := f.now()
	for i := range am.Data {
		f.stamp(&am.Data[i], now)
	}
	f.metrics.AlertsIn(len(am.Data))
	f.buf.Push(am.Data...)
	f.logger.Debug().Int("count", len(am.Data)).Int("retained", f.buf.Len()).Msg("alerts received")
}

// HandleConnectionStatus records the backend's connection confirmation.
func (f *Feed) HandleConnectionStatus(msg stream.Message) {
	var cm connectionStatusMessage
	if err := msg.Decode(&cm); err != nil {
		f.logger.Warn().Err(err).Msg("dropping malformed connection_status message")
		return
	}
	if cm.Status != "connected" {
		f.logger.Debug().Str("status", cm.Status).Msg("ignoring connection status")
		return
	}
	f.logger.Info().Str("message", cm.Message).Msg("backend confirmed alerts connection")
	f.buf.Push(f.synthetic(KindConnectionConfirmed, "🔗 Backend connection confirmed"))
}

func (f *Feed) synthetic(kind, message string) Alert {
	now := f.now()
	a := Alert{
		Kind:      kind,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
		Message:   message,
	}
	f.stamp(&a, now)
	return a
}

func (f *Feed) stamp(a *Alert, now time.Time) {
	a.ID = uuid.NewString()
	a.ReceivedAt = now
}
