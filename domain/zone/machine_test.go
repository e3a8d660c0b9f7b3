package zone

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/zone-console/domain/geometry"
)

type recordingSink struct{ zones []Zone }

func (s *recordingSink) Submit(z Zone) { s.zones = append(s.zones, z) }

func newTestMachine() (*Machine, *recordingSink) {
	sink := &recordingSink{}
	return NewMachine(sink, zerolog.Nop()), sink
}

// at builds an event on a canvas displayed at its buffer size.
func at(x, y float64) geometry.PointerEvent {
	size := geometry.Size{W: 640, H: 480}
	return geometry.PointerEvent{ClientX: x, ClientY: y, Display: size, Buffer: size}
}

func TestMachine_SquareCompletes(t *testing.T) {
	m, sink := newTestMachine()
	require.NoError(t, m.StartDrawing("zone_1"))

	for _, p := range [][2]float64{{10, 10}, {110, 10}, {110, 110}, {10, 110}} {
		assert.True(t, m.Click(at(p[0], p[1])))
	}
	assert.True(t, m.State().Closeable())
	require.NoError(t, m.Complete())

	require.Len(t, sink.zones, 1)
	assert.Equal(t, Zone{ID: "zone_1", Points: []geometry.Point{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 110}, {X: 10, Y: 110}}}, sink.zones[0])
	assert.Equal(t, State{Phase: PhaseIdle}, m.State())
}

func TestMachine_ClicksAreScaledToBuffer(t *testing.T) {
	m, sink := newTestMachine()
	require.NoError(t, m.StartDrawing("scaled"))
	ev := geometry.PointerEvent{
		ClientX: 120, ClientY: 70, OriginX: 20, OriginY: 20,
		Display: geometry.Size{W: 320, H: 240},
		Buffer:  geometry.Size{W: 640, H: 480},
	}
	m.Click(ev)
	assert.Equal(t, []geometry.Point{{X: 200, Y: 100}}, m.State().Points)
	m.Cancel()
	assert.Empty(t, sink.zones)
}

func TestMachine_DoubleClickNeedsThreePoints(t *testing.T) {
	m, sink := newTestMachine()
	require.NoError(t, m.StartDrawing("z"))

	m.Click(at(1, 1))
	assert.False(t, m.DoubleClick(at(5, 5)), "two points do not close")
	st := m.State()
	assert.Equal(t, PhaseDrawing, st.Phase)
	assert.Len(t, st.Points, 2)
	assert.Empty(t, sink.zones)

	assert.True(t, m.DoubleClick(at(9, 1)))
	require.Len(t, sink.zones, 1)
	assert.Equal(t, []geometry.Point{{X: 1, Y: 1}, {X: 5, Y: 5}, {X: 9, Y: 1}}, sink.zones[0].Points)
	assert.Equal(t, PhaseIdle, m.State().Phase)
}

func TestMachine_CompleteRejectsShortDraft(t *testing.T) {
	m, sink := newTestMachine()
	assert.ErrorIs(t, m.Complete(), ErrNotDrawing)

	require.NoError(t, m.StartDrawing("z"))
	m.Click(at(1, 1))
	m.Click(at(2, 2))
	assert.ErrorIs(t, m.Complete(), ErrTooFewPoints)
	assert.Equal(t, PhaseDrawing, m.State().Phase)
	assert.Empty(t, sink.zones)
}

func TestMachine_StartDrawingValidation(t *testing.T) {
	m, _ := newTestMachine()
	assert.ErrorIs(t, m.StartDrawing(""), ErrEmptyZoneID)
	assert.ErrorIs(t, m.StartDrawing("   \t"), ErrEmptyZoneID)
	assert.Equal(t, PhaseIdle, m.State().Phase)

	require.NoError(t, m.StartDrawing("  lobby  "))
	assert.Equal(t, "lobby", m.State().ZoneID)
	m.Click(at(3, 3))
	assert.ErrorIs(t, m.StartDrawing("other"), ErrAlreadyDrawing)
	st := m.State()
	assert.Equal(t, "lobby", st.ZoneID)
	assert.Len(t, st.Points, 1)
}

func TestMachine_IdleIgnoresClicks(t *testing.T) {
	m, sink := newTestMachine()
	assert.False(t, m.Click(at(1, 1)))
	assert.False(t, m.DoubleClick(at(1, 1)))
	m.Cancel()
	m.ClearPoints()
	assert.Equal(t, State{Phase: PhaseIdle}, m.State())
	assert.Empty(t, sink.zones)
}

func TestMachine_CancelAndClear(t *testing.T) {
	m, sink := newTestMachine()
	require.NoError(t, m.StartDrawing("z"))
	m.Click(at(1, 1))
	m.Click(at(2, 2))

	m.ClearPoints()
	st := m.State()
	assert.Equal(t, PhaseDrawing, st.Phase)
	assert.Empty(t, st.Points)
	assert.Equal(t, "z", st.ZoneID)

	m.Click(at(4, 4))
	m.Cancel()
	assert.Equal(t, State{Phase: PhaseIdle}, m.State())
	assert.Empty(t, sink.zones)

	drawing, pts := m.Draft()
	assert.False(t, drawing)
	assert.Empty(t, pts)
}

func TestMachine_ListenersSeeTransitions(t *testing.T) {
	m, _ := newTestMachine()
	var phases []Phase
	var counts []int
	m.AddListener(func(prev, next State) {
		phases = append(phases, next.Phase)
		counts = append(counts, len(next.Points))
		// Listeners may read the machine.
		_ = m.State()
	})

	require.NoError(t, m.StartDrawing("z"))
	m.Click(at(1, 1))
	m.Click(at(2, 2))
	m.DoubleClick(at(3, 3))

	assert.Equal(t, []Phase{PhaseDrawing, PhaseDrawing, PhaseDrawing, PhaseIdle}, phases)
	assert.Equal(t, []int{0, 1, 2, 0}, counts)
}

func TestMachine_SnapshotsAreIsolated(t *testing.T) {
	m, sink := newTestMachine()
	require.NoError(t, m.StartDrawing("z"))
	m.Click(at(1, 1))
	st := m.State()
	st.Points[0] = geometry.Point{X: 99, Y: 99}
	assert.Equal(t, geometry.Point{X: 1, Y: 1}, m.State().Points[0])

	m.Click(at(2, 2))
	m.Click(at(3, 3))
	require.NoError(t, m.Complete())
	sink.zones[0].Points[0] = geometry.Point{}
	require.NoError(t, m.StartDrawing("again"))
	assert.Empty(t, m.State().Points)
}

func TestMachine_NilSinkStillResets(t *testing.T) {
	m := NewMachine(nil, zerolog.Nop())
	require.NoError(t, m.StartDrawing("z"))
	m.Click(at(1, 1))
	m.Click(at(2, 2))
	assert.True(t, m.DoubleClick(at(3, 3)))
	assert.Equal(t, PhaseIdle, m.State().Phase)
}

func TestZone_Validate(t *testing.T) {
	assert.ErrorIs(t, Zone{Points: []geometry.Point{{}, {}, {}}}.Validate(), ErrEmptyZoneID)
	assert.ErrorIs(t, Zone{ID: "a", Points: []geometry.Point{{}}}.Validate(), ErrTooFewPoints)
	assert.NoError(t, Zone{ID: "a", Points: []geometry.Point{{X: 1}, {X: 2}, {Y: 3}}}.Validate())
}
