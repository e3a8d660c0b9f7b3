package model

import (
	"fmt"
	"time"

	"github.com/soocke/zone-console/domain/stream"
)

// ConnectionModel derives the connection labels for one channel from the
// latest stream.Status. It also tracks how long the channel has been open.
// No synchronization: it is updated on the UI tick.
type ConnectionModel struct {
	status    stream.Status
	openSince time.Time
	uptime    time.Duration // closed sessions
}

func NewConnectionModel(channel string) *ConnectionModel {
	return &ConnectionModel{status: stream.Status{Channel: channel, MaxAttempts: stream.DefaultMaxAttempts}}
}

// Update records s and reports whether the displayed labels change.
func (m *ConnectionModel) Update(s stream.Status, now time.Time) bool {
	if m == nil {
		return false
	}
	prev := m.status
	if s.State == stream.StateOpen && prev.State != stream.StateOpen {
		m.openSince = now
	}
	if s.State != stream.StateOpen && prev.State == stream.StateOpen {
		m.uptime += now.Sub(m.openSince)
		m.openSince = time.Time{}
	}
	m.status = s
	return prev.State != s.State || prev.Attempts != s.Attempts || prev.MaxAttempts != s.MaxAttempts
}

func (m *ConnectionModel) Status() stream.Status {
	if m == nil {
		return stream.Status{}
	}
	return m.status
}

// Connected reports whether the channel is open.
func (m *ConnectionModel) Connected() bool {
	return m != nil && m.status.State == stream.StateOpen
}

// Badge is the short indicator shown in panel headers.
func (m *ConnectionModel) Badge() string {
	if m.Connected() {
		return "🟢 Connected"
	}
	return "🔴 Disconnected"
}

// Label describes the connection lifecycle for the overlay line.
func (m *ConnectionModel) Label() string {
	if m == nil {
		return ""
	}
	s := m.status
	switch s.State {
	case stream.StateOpen:
		return "Connected"
	case stream.StateFailed:
		return "Connection failed"
	case stream.StateStopped:
		return "Disconnected"
	}
	if s.Attempts == 0 {
		return fmt.Sprintf("Connecting to %s stream...", s.Channel)
	}
	limit := s.MaxAttempts
	if limit <= 0 {
		limit = stream.DefaultMaxAttempts
	}
	return fmt.Sprintf("Reconnecting... (%d/%d)", s.Attempts, limit)
}

// CanReconnect reports whether a manual reconnect would do anything.
func (m *ConnectionModel) CanReconnect() bool {
	if m == nil {
		return false
	}
	switch m.status.State {
	case stream.StateClosed, stream.StateFailed, stream.StateIdle:
		return true
	}
	return false
}

// Uptime returns the current open session and the accumulated open time.
func (m *ConnectionModel) Uptime(now time.Time) (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	total = m.uptime
	if m.status.State == stream.StateOpen && !m.openSince.IsZero() {
		session = now.Sub(m.openSince)
		total += session
	}
	return session, total
}

// FormatUptime renders d as "Up hh:mm:ss".
func FormatUptime(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("Up %02d:%02d:%02d", s/3600, s/60%60, s%60)
}
