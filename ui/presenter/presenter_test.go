package presenter

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/zone-console/domain/alerts"
	"github.com/soocke/zone-console/domain/backend"
	"github.com/soocke/zone-console/domain/geometry"
	"github.com/soocke/zone-console/domain/render"
	"github.com/soocke/zone-console/domain/stream"
	"github.com/soocke/zone-console/domain/zone"
	"github.com/soocke/zone-console/ui/model"
)

type mockView struct {
	frames     int
	display    geometry.Size
	videoErrs  []string
	drawing    bool
	points     int
	drawCalls  int
	zones      [][]string
	cleared    int
	messages   []string
	conns      map[string]ConnectionInfo
	connCalls  int
	alertRows  [][]model.AlertRow
	sysLabel   string
	sysRunning bool
	sysCalls   int
}

func newMockView() *mockView {
	return &mockView{display: geometry.Size{W: 320, H: 240}, conns: map[string]ConnectionInfo{}}
}

func (v *mockView) ShowFrame(*image.RGBA) geometry.Size { v.frames++; return v.display }
func (v *mockView) SetVideoError(msg string)            { v.videoErrs = append(v.videoErrs, msg) }
func (v *mockView) SetDrawing(d bool, n int)            { v.drawing, v.points = d, n; v.drawCalls++ }
func (v *mockView) SetZones(ids []string)               { v.zones = append(v.zones, ids) }
func (v *mockView) ClearZoneInput()                     { v.cleared++ }
func (v *mockView) SetMessage(msg string)               { v.messages = append(v.messages, msg) }
func (v *mockView) SetConnection(ch string, info ConnectionInfo) {
	v.conns[ch] = info
	v.connCalls++
}
func (v *mockView) SetAlerts(rows []model.AlertRow) { v.alertRows = append(v.alertRows, rows) }
func (v *mockView) SetSystemStatus(label string, running bool) {
	v.sysLabel, v.sysRunning = label, running
	v.sysCalls++
}

func (v *mockView) lastMessage() string {
	if len(v.messages) == 0 {
		return ""
	}
	return v.messages[len(v.messages)-1]
}

type fakeSurfaces struct{ s render.Surface }

func (f *fakeSurfaces) Latest() render.Surface { return f.s }

func surface(seq uint64, w, h int) render.Surface {
	return render.Surface{Image: image.NewRGBA(image.Rect(0, 0, w, h)), Sequence: seq, Size: geometry.Size{W: w, H: h}}
}

func TestVideoPresenter_ShowsOnlyNewSurfaces(t *testing.T) {
	src := &fakeSurfaces{}
	view := newMockView()
	p := NewVideoPresenter(src, view)

	p.Tick()
	assert.Zero(t, view.frames)

	src.s = surface(1, 640, 480)
	p.Tick()
	p.Tick()
	assert.Equal(t, 1, view.frames)
	display, buffer := p.Geometry()
	assert.Equal(t, geometry.Size{W: 320, H: 240}, display)
	assert.Equal(t, geometry.Size{W: 640, H: 480}, buffer)

	// repaint of the same frame
	src.s = render.Surface{Image: image.NewRGBA(image.Rect(0, 0, 640, 480)), Sequence: 1, Size: src.s.Size}
	p.Tick()
	assert.Equal(t, 2, view.frames)
}

func TestVideoPresenter_BackendErrorClearedByNextFrame(t *testing.T) {
	src := &fakeSurfaces{s: surface(1, 10, 10)}
	view := newMockView()
	p := NewVideoPresenter(src, view)
	p.Tick()

	p.OnBackendError("RTSP stream not available")
	p.Tick()
	assert.Equal(t, []string{"RTSP stream not available"}, view.videoErrs)

	src.s = render.Surface{Image: image.NewRGBA(image.Rect(0, 0, 10, 10)), Sequence: 1, Size: geometry.Size{W: 10, H: 10}}
	p.Tick()
	assert.Len(t, view.videoErrs, 1, "repaint does not clear the error")

	src.s = surface(2, 10, 10)
	p.Tick()
	assert.Equal(t, []string{"RTSP stream not available", ""}, view.videoErrs)
}

type fakeStore struct {
	mu      sync.Mutex
	created []zone.Zone
	deleted []string
	err     error
}

func (s *fakeStore) CreateZone(_ context.Context, z zone.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, z)
	return s.err
}

func (s *fakeStore) DeleteZone(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return s.err
}

type fixedCanvas struct{ display, buffer geometry.Size }

func (c fixedCanvas) Geometry() (geometry.Size, geometry.Size) { return c.display, c.buffer }

type countingRepainter struct{ n int }

func (r *countingRepainter) Repaint() { r.n++ }

type zoneHarness struct {
	p       *ZonePresenter
	machine *zone.Machine
	store   *fakeStore
	view    *mockView
	zones   *model.ZoneList
	repaint *countingRepainter
}

func newZoneHarness(t *testing.T) *zoneHarness {
	t.Helper()
	h := &zoneHarness{store: &fakeStore{}, view: newMockView(), zones: model.NewZoneList(), repaint: &countingRepainter{}}
	canvas := fixedCanvas{display: geometry.Size{W: 320, H: 240}, buffer: geometry.Size{W: 640, H: 480}}
	h.p = NewZonePresenter(h.store, canvas, h.repaint, h.view, h.zones, time.Second, zerolog.Nop())
	h.machine = zone.NewMachine(h.p, zerolog.Nop())
	h.machine.AddListener(h.p.OnState)
	h.p.SetMachine(h.machine)
	t.Cleanup(h.p.Close)
	return h
}

// settle ticks until the background request result has been applied.
func (h *zoneHarness) settle(t *testing.T) {
	t.Helper()
	h.p.wg.Wait()
	h.p.Tick()
}

func TestZonePresenter_DrawAndPersist(t *testing.T) {
	h := newZoneHarness(t)
	h.p.Tick()
	assert.Equal(t, [][]string{{}}, h.view.zones, "initial empty list rendered")

	h.p.StartDrawing("dock")
	h.p.Tick()
	assert.True(t, h.view.drawing)

	// display is half the buffer size
	h.p.Click(5, 5)
	h.p.Click(55, 5)
	h.p.DoubleClick(55, 55)
	h.settle(t)

	require.Len(t, h.store.created, 1)
	assert.Equal(t, zone.Zone{ID: "dock", Points: []geometry.Point{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 110}}}, h.store.created[0])
	assert.Equal(t, []string{"dock"}, h.zones.IDs())
	assert.Equal(t, []string{"dock"}, h.view.zones[len(h.view.zones)-1])
	assert.False(t, h.view.drawing)
	assert.Equal(t, 1, h.view.cleared)
	assert.Equal(t, "Zone dock added", h.view.lastMessage())
	assert.Equal(t, 4, h.repaint.n, "start, two clicks, completing double-click")
}

func TestZonePresenter_PersistFailureLeavesListUnchanged(t *testing.T) {
	h := newZoneHarness(t)
	h.store.err = errors.New("backend down")
	h.p.StartDrawing("dock")
	h.p.Click(1, 1)
	h.p.Click(20, 1)
	h.p.Click(20, 20)
	h.p.Finish()
	h.settle(t)

	assert.Len(t, h.store.created, 1)
	assert.Empty(t, h.zones.IDs())
	assert.Zero(t, h.view.cleared)
	assert.Contains(t, h.view.lastMessage(), "Failed to add zone dock")
	assert.Equal(t, zone.PhaseIdle, h.machine.State().Phase)
}

func TestZonePresenter_Validation(t *testing.T) {
	h := newZoneHarness(t)
	h.p.StartDrawing("  ")
	assert.Equal(t, "Please enter a zone ID first", h.view.lastMessage())
	assert.Equal(t, zone.PhaseIdle, h.machine.State().Phase)

	h.p.StartDrawing("a")
	h.p.StartDrawing("b")
	assert.Equal(t, "Finish or cancel the current zone first", h.view.lastMessage())

	h.p.Click(1, 1)
	h.p.Finish()
	assert.Equal(t, "Please draw at least 3 points for the zone", h.view.lastMessage())
	h.p.DoubleClick(2, 2)
	assert.Equal(t, zone.PhaseDrawing, h.machine.State().Phase)

	h.p.ClearPoints()
	assert.Empty(t, h.machine.State().Points)
	h.p.Cancel()
	h.p.Tick()
	assert.False(t, h.view.drawing)
	assert.Empty(t, h.store.created)
}

func TestZonePresenter_DeleteAfterSuccessOnly(t *testing.T) {
	h := newZoneHarness(t)
	h.zones.Replace([]string{"a", "b"})

	h.store.err = errors.New("not found")
	h.p.Delete("a")
	h.settle(t)
	assert.Equal(t, []string{"a", "b"}, h.zones.IDs())

	h.store.err = nil
	h.p.Delete("a")
	h.settle(t)
	assert.Equal(t, []string{"b"}, h.zones.IDs())
	assert.Equal(t, []string{"a", "a"}, h.store.deleted)
	assert.Equal(t, "Zone a removed", h.view.lastMessage())
}

func TestZonePresenter_AddSample(t *testing.T) {
	h := newZoneHarness(t)
	h.p.AddSample(" ")
	assert.Equal(t, "Please enter a zone ID first", h.view.lastMessage())
	h.p.AddSample("lobby")
	h.settle(t)
	require.Len(t, h.store.created, 1)
	assert.Equal(t, SampleZonePoints, h.store.created[0].Points)
	assert.Equal(t, []string{"lobby"}, h.zones.IDs())
}

func TestZonePresenter_CopyPoints(t *testing.T) {
	h := newZoneHarness(t)
	var copied string
	h.p.Clipboard = func(s string) error { copied = s; return nil }

	h.p.CopyPoints()
	assert.Equal(t, "No points to copy", h.view.lastMessage())

	h.p.StartDrawing("z")
	h.p.Click(5, 5)
	h.p.Click(10, 20)
	h.p.CopyPoints()
	assert.Equal(t, "[[10,10],[20,40]]", copied)
	assert.Equal(t, "Copied 2 points", h.view.lastMessage())

	h.p.Clipboard = func(string) error { return errors.New("no clipboard utility") }
	h.p.CopyPoints()
	assert.Equal(t, "no clipboard utility", h.view.lastMessage())
}

type fakeReconnector struct {
	calls int
	err   error
}

func (f *fakeReconnector) Reconnect() error { f.calls++; return f.err }

func TestConnectionPresenter(t *testing.T) {
	view := newMockView()
	r := &fakeReconnector{}
	p := NewConnectionPresenter(stream.ChannelVideo, r, view, zerolog.Nop())
	base := time.Unix(100, 0)

	p.Tick(base)
	assert.Equal(t, 1, view.connCalls, "initial state rendered")

	p.OnStatus(stream.Status{}, stream.Status{Channel: "video", State: stream.StateConnecting, MaxAttempts: 10})
	p.OnStatus(stream.Status{}, stream.Status{Channel: "video", State: stream.StateOpen, MaxAttempts: 10})
	p.Tick(base)
	info := view.conns["video"]
	assert.Equal(t, "Connected", info.Label)
	assert.True(t, info.Connected)
	assert.False(t, info.CanReconnect)

	p.Tick(base.Add(100 * time.Millisecond))
	assert.Equal(t, 2, view.connCalls, "no change, no redraw")
	p.Tick(base.Add(2 * time.Second))
	assert.Equal(t, 2*time.Second, view.conns["video"].Uptime)

	p.OnStatus(stream.Status{}, stream.Status{Channel: "video", State: stream.StateClosed, Attempts: 4, MaxAttempts: 10})
	p.Tick(base.Add(2 * time.Second))
	info = view.conns["video"]
	assert.Equal(t, "Reconnecting... (4/10)", info.Label)
	assert.True(t, info.CanReconnect)

	p.Reconnect()
	r.err = stream.ErrClosed
	p.Reconnect()
	assert.Equal(t, 2, r.calls)
}

func TestConnectionPresenter_LateReconnector(t *testing.T) {
	p := NewConnectionPresenter(stream.ChannelAlerts, nil, newMockView(), zerolog.Nop())
	p.Reconnect()
	r := &fakeReconnector{}
	p.SetReconnector(r)
	p.Reconnect()
	assert.Equal(t, 1, r.calls)
}

type fakeAlertSource struct {
	snap []alerts.Alert
	fn   func([]alerts.Alert)
	off  bool
}

func (f *fakeAlertSource) Snapshot() []alerts.Alert { return f.snap }
func (f *fakeAlertSource) Subscribe(fn func([]alerts.Alert)) func() {
	f.fn = fn
	return func() { f.off = true }
}

func TestAlertsPresenter(t *testing.T) {
	src := &fakeAlertSource{}
	view := newMockView()
	p := NewAlertsPresenter(src, view)

	p.Tick()
	require.Len(t, view.alertRows, 1)
	assert.Empty(t, view.alertRows[0], "placeholder shown")

	src.fn([]alerts.Alert{{Kind: "a"}})
	src.fn([]alerts.Alert{{Kind: "a"}, {Kind: alerts.KindPersonWalking}})
	p.Tick()
	p.Tick()
	require.Len(t, view.alertRows, 2)
	assert.Len(t, view.alertRows[1], 2)
	assert.Equal(t, "🚶", view.alertRows[1][1].Icon)

	p.Close()
	assert.True(t, src.off)
}

func TestAlertsPresenter_SkipsUnchangedKeys(t *testing.T) {
	src := &fakeAlertSource{}
	view := newMockView()
	p := NewAlertsPresenter(src, view)
	first := alerts.Alert{ID: "k1", Kind: alerts.KindPersonWalking}
	second := alerts.Alert{ID: "k2", Kind: alerts.KindNoHeadgear}

	src.fn([]alerts.Alert{first})
	p.Tick()
	require.Len(t, view.alertRows, 1)

	src.fn([]alerts.Alert{first})
	p.Tick()
	assert.Len(t, view.alertRows, 1, "same keys, no redraw")

	src.fn([]alerts.Alert{first, second})
	p.Tick()
	require.Len(t, view.alertRows, 2)
	assert.Equal(t, "k2", view.alertRows[1][1].Key)
}

func TestStatusPresenter_ReplacesZones(t *testing.T) {
	view := newMockView()
	zones := model.NewZoneList()
	zones.Add("local")
	p := NewStatusPresenter(model.NewSystemModel(), zones, view)

	p.Tick()
	assert.Equal(t, "🔴 System Stopped", view.sysLabel)

	p.OnStatus(backend.SystemStatus{PipelineRunning: true, Zones: []string{"a", "b"}})
	p.Tick()
	assert.Equal(t, "🟢 System Running", view.sysLabel)
	assert.True(t, view.sysRunning)
	assert.Equal(t, []string{"a", "b"}, zones.IDs())

	p.Tick()
	assert.Equal(t, 2, view.sysCalls)
}

func TestLoop_TicksAndSchedules(t *testing.T) {
	var zero Loop
	zero.Tick()

	view := newMockView()
	src := &fakeSurfaces{s: surface(1, 4, 4)}
	scheduled := 0
	l := &Loop{
		Video:       NewVideoPresenter(src, view),
		Status:      NewStatusPresenter(model.NewSystemModel(), model.NewZoneList(), view),
		Connections: []*ConnectionPresenter{NewConnectionPresenter("alerts", nil, view, zerolog.Nop())},
		Schedule:    func() { scheduled++ },
	}
	l.Tick()
	assert.Equal(t, 1, view.frames)
	assert.Equal(t, 1, view.sysCalls)
	assert.Contains(t, view.conns, "alerts")
	assert.Equal(t, 1, scheduled)
}
