package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/geometry"
	"github.com/soocke/zone-console/domain/zone"
	"github.com/soocke/zone-console/ui/model"
)

// ZoneMachine is the drawing state machine surface used by the presenter.
type ZoneMachine interface {
	StartDrawing(id string) error
	Click(ev geometry.PointerEvent) bool
	DoubleClick(ev geometry.PointerEvent) bool
	Complete() error
	Cancel()
	ClearPoints()
	State() zone.State
}

// ZoneStore persists zones on the backend.
type ZoneStore interface {
	CreateZone(ctx context.Context, z zone.Zone) error
	DeleteZone(ctx context.Context, id string) error
}

// CanvasGeometry reports the display and buffer size of the video surface.
type CanvasGeometry interface {
	Geometry() (display, buffer geometry.Size)
}

// Repainter recomposes the current frame with the draft overlay.
type Repainter interface{ Repaint() }

// ZoneView is the zone configuration panel.
type ZoneView interface {
	SetDrawing(drawing bool, points int)
	SetZones(ids []string)
	ClearZoneInput()
	SetMessage(msg string)
}

// SampleZonePoints is the rectangle used by the "sample zone" action.
var SampleZonePoints = []geometry.Point{{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 300, Y: 200}, {X: 100, Y: 200}}

type zoneOp int

const (
	opCreate zoneOp = iota + 1
	opDelete
)

type zoneResult struct {
	op  zoneOp
	id  string
	err error
}

// ZonePresenter connects operator input to the drawing machine and the
// backend. Operator methods run on the UI thread; backend calls run on
// their own goroutines and are applied on the next Tick.
type ZonePresenter struct {
	machine ZoneMachine
	store   ZoneStore
	canvas  CanvasGeometry
	repaint Repainter
	view    ZoneView
	zones   *model.ZoneList
	logger  zerolog.Logger
	timeout time.Duration

	// Clipboard receives the "copy points" text.
	Clipboard func(string) error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	results  []zoneResult
	dirty    bool
	rendered uint64
	listed   bool
}

// NewZonePresenter wires the presenter. machine may be set later with
// SetMachine when it needs the presenter as its sink.
func NewZonePresenter(store ZoneStore, canvas CanvasGeometry, repaint Repainter, view ZoneView, zones *model.ZoneList, timeout time.Duration, logger zerolog.Logger) *ZonePresenter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if zones == nil {
		zones = model.NewZoneList()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ZonePresenter{
		store:     store,
		canvas:    canvas,
		repaint:   repaint,
		view:      view,
		zones:     zones,
		timeout:   timeout,
		logger:    logger.With().Str("component", "zone_presenter").Logger(),
		Clipboard: clipboard.WriteAll,
		ctx:       ctx,
		cancel:    cancel,
		dirty:     true,
	}
}

// SetMachine attaches the drawing machine.
func (p *ZonePresenter) SetMachine(m ZoneMachine) { p.machine = m }

// Submit implements zone.Sink: it persists z in the background.
func (p *ZonePresenter) Submit(z zone.Zone) {
	if p == nil {
		return
	}
	p.run(opCreate, z.ID, func(ctx context.Context) error { return p.store.CreateZone(ctx, z) })
}

// OnState is the machine listener. It repaints the overlay immediately and
// marks the panel for refresh.
func (p *ZonePresenter) OnState(prev, next zone.State) {
	if p == nil {
		return
	}
	if p.repaint != nil {
		p.repaint.Repaint()
	}
	p.mu.Lock()
	p.dirty = true
	p.mu.Unlock()
}

// StartDrawing enters drawing mode for the entered id.
func (p *ZonePresenter) StartDrawing(id string) {
	if p == nil || p.machine == nil {
		return
	}
	if err := p.machine.StartDrawing(id); err != nil {
		p.message(err)
		return
	}
	p.view.SetMessage("Zone drawing mode: click to add points, double-click to finish")
}

// Cancel leaves drawing mode without saving.
func (p *ZonePresenter) Cancel() {
	if p == nil || p.machine == nil {
		return
	}
	p.machine.Cancel()
	p.view.SetMessage("")
}

// ClearPoints empties the draft.
func (p *ZonePresenter) ClearPoints() {
	if p == nil || p.machine == nil {
		return
	}
	p.machine.ClearPoints()
}

// Finish completes the draft from the button instead of a double-click.
func (p *ZonePresenter) Finish() {
	if p == nil || p.machine == nil {
		return
	}
	if err := p.machine.Complete(); err != nil {
		if errors.Is(err, zone.ErrTooFewPoints) {
			p.view.SetMessage("Please draw at least 3 points for the zone")
			return
		}
		p.message(err)
	}
}

// Click handles a single click at view coordinates (x, y).
func (p *ZonePresenter) Click(x, y float64) {
	if p == nil || p.machine == nil {
		return
	}
	p.machine.Click(p.event(x, y))
}

// DoubleClick handles the second click of a double-click.
func (p *ZonePresenter) DoubleClick(x, y float64) {
	if p == nil || p.machine == nil {
		return
	}
	p.machine.DoubleClick(p.event(x, y))
}

func (p *ZonePresenter) event(x, y float64) geometry.PointerEvent {
	ev := geometry.PointerEvent{ClientX: x, ClientY: y}
	if p.canvas != nil {
		ev.Display, ev.Buffer = p.canvas.Geometry()
	}
	return ev
}

// Delete removes a persisted zone. The list changes only after success.
func (p *ZonePresenter) Delete(id string) {
	if p == nil || id == "" {
		return
	}
	p.run(opDelete, id, func(ctx context.Context) error { return p.store.DeleteZone(ctx, id) })
}

// AddSample persists a fixed rectangle under id.
func (p *ZonePresenter) AddSample(id string) {
	if p == nil {
		return
	}
	z := zone.Zone{ID: strings.TrimSpace(id), Points: geometry.Clone(SampleZonePoints)}
	if err := z.Validate(); err != nil {
		p.message(err)
		return
	}
	p.Submit(z)
}

// CopyPoints copies the draft points as JSON.
func (p *ZonePresenter) CopyPoints() {
	if p == nil || p.machine == nil {
		return
	}
	st := p.machine.State()
	if len(st.Points) == 0 {
		p.view.SetMessage("No points to copy")
		return
	}
	b, err := json.Marshal(st.Points)
	if err != nil {
		p.message(err)
		return
	}
	if p.Clipboard == nil {
		return
	}
	if err := p.Clipboard(string(b)); err != nil {
		p.logger.Warn().Err(err).Msg("clipboard write failed")
		p.message(err)
		return
	}
	p.view.SetMessage(fmt.Sprintf("Copied %d points", len(st.Points)))
}

func (p *ZonePresenter) run(op zoneOp, id string, call func(context.Context) error) {
	if p.store == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		defer cancel()
		err := call(ctx)
		if err != nil {
			p.logger.Error().Err(err).Str("zone", id).Msg("zone request failed")
		}
		p.mu.Lock()
		p.results = append(p.results, zoneResult{op: op, id: id, err: err})
		p.mu.Unlock()
	}()
}

// Tick applies finished backend calls and refreshes the panel.
func (p *ZonePresenter) Tick() {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	results := p.results
	p.results = nil
	dirty := p.dirty
	p.dirty = false
	p.mu.Unlock()

	for _, r := range results {
		p.apply(r)
	}
	if dirty && p.machine != nil {
		st := p.machine.State()
		p.view.SetDrawing(st.Phase == zone.PhaseDrawing, len(st.Points))
	}
	if v := p.zones.Version(); v != p.rendered || !p.listed {
		p.rendered, p.listed = v, true
		p.view.SetZones(p.zones.IDs())
	}
}

func (p *ZonePresenter) apply(r zoneResult) {
	switch r.op {
	case opCreate:
		if r.err != nil {
			p.view.SetMessage(fmt.Sprintf("Failed to add zone %s: %v", r.id, r.err))
			return
		}
		p.zones.Add(r.id)
		p.view.ClearZoneInput()
		p.view.SetMessage(fmt.Sprintf("Zone %s added", r.id))
	case opDelete:
		if r.err != nil {
			p.view.SetMessage(fmt.Sprintf("Failed to remove zone %s: %v", r.id, r.err))
			return
		}
		p.zones.Remove(r.id)
		p.view.SetMessage(fmt.Sprintf("Zone %s removed", r.id))
	}
}

func (p *ZonePresenter) message(err error) {
	switch {
	case errors.Is(err, zone.ErrEmptyZoneID):
		p.view.SetMessage("Please enter a zone ID first")
	case errors.Is(err, zone.ErrAlreadyDrawing):
		p.view.SetMessage("Finish or cancel the current zone first")
	default:
		p.view.SetMessage(err.Error())
	}
}

// Close cancels in-flight requests and waits for them.
func (p *ZonePresenter) Close() {
	if p == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
}
