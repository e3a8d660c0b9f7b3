package zone

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/geometry"
)

// Machine turns pointer events into zone polygons. It is safe for concurrent
// use; listeners and the sink are invoked outside the lock.
type Machine struct {
	mu        sync.Mutex
	state     State
	sink      Sink
	logger    zerolog.Logger
	listeners []Listener
}

// NewMachine returns an idle machine that submits completed zones to sink.
func NewMachine(sink Sink, logger zerolog.Logger) *Machine {
	return &Machine{sink: sink, logger: logger.With().Str("component", "zone").Logger()}
}

// AddListener registers a listener for state changes.
func (m *Machine) AddListener(l Listener) {
	if m == nil || l == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	if m == nil {
		return State{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.state)
}

// Draft reports the draft polygon for overlay rendering.
func (m *Machine) Draft() (bool, []geometry.Point) {
	s := m.State()
	return s.Phase == PhaseDrawing, s.Points
}

// StartDrawing enters drawing mode for zoneID (trimmed).
func (m *Machine) StartDrawing(zoneID string) error {
	id := strings.TrimSpace(zoneID)
	if id == "" {
		return ErrEmptyZoneID
	}
	m.mu.Lock()
	if m.state.Phase == PhaseDrawing {
		m.mu.Unlock()
		return ErrAlreadyDrawing
	}
	prev := snapshot(m.state)
	m.state = State{Phase: PhaseDrawing, ZoneID: id, Points: []geometry.Point{}}
	next, ls := snapshot(m.state), m.copyListeners()
	m.mu.Unlock()
	m.logger.Debug().Str("zone", id).Msg("drawing started")
	notify(ls, prev, next)
	return nil
}

// Click appends the mapped pointer position. Ignored when idle.
func (m *Machine) Click(ev geometry.PointerEvent) bool {
	_, ok := m.add(ev, false)
	return ok
}

// DoubleClick appends the mapped position and completes the zone when the
// draft then has at least three points. It reports whether a zone was emitted.
func (m *Machine) DoubleClick(ev geometry.PointerEvent) bool {
	completed, _ := m.add(ev, true)
	return completed
}

func (m *Machine) add(ev geometry.PointerEvent, complete bool) (completed, added bool) {
	m.mu.Lock()
	if m.state.Phase != PhaseDrawing {
		m.mu.Unlock()
		return false, false
	}
	prev := snapshot(m.state)
	p := geometry.MapToBuffer(ev)
	m.state.Points = append(m.state.Points, p)
	if complete && len(m.state.Points) >= geometry.MinPolygonPoints {
		return m.completeLocked(prev), true
	}
	next, ls := snapshot(m.state), m.copyListeners()
	m.mu.Unlock()
	m.logger.Debug().Str("point", p.String()).Int("count", len(next.Points)).Msg("point added")
	notify(ls, prev, next)
	return false, true
}

// Complete finishes the draft. It fails with ErrTooFewPoints below three points.
func (m *Machine) Complete() error {
	m.mu.Lock()
	if m.state.Phase != PhaseDrawing {
		m.mu.Unlock()
		return ErrNotDrawing
	}
	if len(m.state.Points) < geometry.MinPolygonPoints {
		m.mu.Unlock()
		return ErrTooFewPoints
	}
	m.completeLocked(snapshot(m.state))
	return nil
}

// completeLocked emits the zone and resets to idle. It releases m.mu.
func (m *Machine) completeLocked(prev State) bool {
	z := Zone{ID: m.state.ZoneID, Points: geometry.Clone(m.state.Points)}
	m.state = State{Phase: PhaseIdle}
	next, ls, sink := snapshot(m.state), m.copyListeners(), m.sink
	m.mu.Unlock()
	m.logger.Info().Str("zone", z.ID).Int("points", len(z.Points)).Msg("zone completed")
	if sink != nil {
		sink.Submit(z)
	}
	notify(ls, prev, next)
	return true
}

// Cancel discards the draft and returns to idle.
func (m *Machine) Cancel() {
	m.mu.Lock()
	if m.state.Phase != PhaseDrawing {
		m.mu.Unlock()
		return
	}
	prev := snapshot(m.state)
	m.state = State{Phase: PhaseIdle}
	next, ls := snapshot(m.state), m.copyListeners()
	m.mu.Unlock()
	m.logger.Debug().Str("zone", prev.ZoneID).Msg("drawing cancelled")
	notify(ls, prev, next)
}

// ClearPoints empties the draft but stays in drawing mode.
func (m *Machine) ClearPoints() {
	m.mu.Lock()
	if m.state.Phase != PhaseDrawing || len(m.state.Points) == 0 {
		m.mu.Unlock()
		return
	}
	prev := snapshot(m.state)
	m.state.Points = []geometry.Point{}
	next, ls := snapshot(m.state), m.copyListeners()
	m.mu.Unlock()
	notify(ls, prev, next)
}

func (m *Machine) copyListeners() []Listener {
	return append([]Listener(nil), m.listeners...)
}

func snapshot(s State) State {
	s.Points = geometry.Clone(s.Points)
	return s
}

func notify(ls []Listener, prev, next State) {
	for _, l := range ls {
		l(prev, next)
	}
}
