package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/soocke/zone-console/domain/geometry"
	"github.com/soocke/zone-console/metrics"
)

// Frame is one encoded payload tagged with its arrival order.
type Frame struct {
	Payload  string
	Sequence uint64
}

// Surface is a composed canvas ready for display. Image is never mutated after
// publication; Size is the buffer size used for pointer mapping.
type Surface struct {
	Image    *image.RGBA
	Sequence uint64
	Size     geometry.Size
}

// DraftSource reports the in-progress polygon to overlay.
type DraftSource interface {
	Draft() (drawing bool, pts []geometry.Point)
}

// DecodeFunc turns an encoded payload into a bitmap.
type DecodeFunc func(payload string) (image.Image, error)

// DecodeBase64JPEG decodes a base64 encoded JPEG.
func DecodeBase64JPEG(payload string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("jpeg: %w", err)
	}
	return img, nil
}

// Config configures a Pipeline.
type Config struct {
	Workers int
	Draft   DraftSource
	Decode  DecodeFunc
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Pipeline decodes frames off the caller's goroutine and keeps only the most
// recent result. Payloads supplied while a decode is in flight replace any
// pending payload; results older than the last painted frame are discarded.
type Pipeline struct {
	cfg    Config
	logger zerolog.Logger

	seq     atomic.Uint64
	mailbox chan Frame
	quit    chan struct{}
	wg      sync.WaitGroup
	closed  atomic.Bool
	once    sync.Once

	mu          sync.Mutex
	base        image.Image
	lastPainted uint64
	latest      atomic.Pointer[Surface]

	lmu       sync.Mutex
	listeners []func(Surface)
}

// NewPipeline starts the decode workers.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Decode == nil {
		cfg.Decode = DecodeBase64JPEG
	}
	p := &Pipeline{
		cfg:     cfg,
		logger:  cfg.Logger.With().Str("component", "render").Logger(),
		mailbox: make(chan Frame, 1),
		quit:    make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.runWorker()
	}
	return p
}

// OnFrame supplies a new encoded payload and returns its sequence number.
// It never blocks.
func (p *Pipeline) OnFrame(payload string) uint64 {
	if p == nil || p.closed.Load() {
		return 0
	}
	f := Frame{Payload: payload, Sequence: p.seq.Add(1)}
	p.cfg.Metrics.FrameReceived()
	select {
	case p.mailbox <- f:
	default:
		select {
		case <-p.mailbox:
			p.cfg.Metrics.FrameSuperseded()
		default:
		}
		select {
		case p.mailbox <- f:
		default:
			// slot refilled by a concurrent caller
			p.cfg.Metrics.FrameSuperseded()
		}
	}
	return f.Sequence
}

func (p *Pipeline) runWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case f := <-p.mailbox:
			p.process(f)
		}
	}
}

func (p *Pipeline) process(f Frame) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("error", r).Str("stack", string(debug.Stack())).Msg("decode panic")
		}
	}()
	start := time.Now()
	img, err := p.cfg.Decode(f.Payload)
	if err != nil {
		p.cfg.Metrics.DecodeError()
		p.logger.Warn().Err(err).Uint64("seq", f.Sequence).Msg("frame decode failed")
		return
	}
	if img == nil || img.Bounds().Empty() {
		p.cfg.Metrics.DecodeError()
		p.logger.Warn().Uint64("seq", f.Sequence).Msg("frame decoded to empty image")
		return
	}
	p.cfg.Metrics.FrameDecoded(time.Since(start))
	p.paint(f.Sequence, img)
}

func (p *Pipeline) paint(seq uint64, img image.Image) {
	p.mu.Lock()
	if seq <= p.lastPainted {
		p.mu.Unlock()
		p.cfg.Metrics.FrameStale()
		p.logger.Debug().Uint64("seq", seq).Uint64("painted", p.lastPainted).Msg("discarding stale frame")
		return
	}
	p.lastPainted = seq
	p.base = img
	s := p.compose(seq)
	p.mu.Unlock()
	p.notify(s)
}

// Repaint recomposes the current bitmap with the current overlay, without
// decoding. It is a no-op before the first frame.
func (p *Pipeline) Repaint() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.base == nil {
		p.mu.Unlock()
		return
	}
	s := p.compose(p.lastPainted)
	p.mu.Unlock()
	p.notify(s)
}

// compose draws base plus overlay into a fresh canvas sized to the bitmap.
// Callers hold p.mu.
func (p *Pipeline) compose(seq uint64) Surface {
	b := p.base.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), p.base, b.Min, draw.Src)
	if p.cfg.Draft != nil {
		if drawing, pts := p.cfg.Draft.Draft(); drawing && len(pts) > 0 {
			DrawOverlay(canvas, pts)
		}
	}
	s := Surface{Image: canvas, Sequence: seq, Size: geometry.Size{W: b.Dx(), H: b.Dy()}}
	p.latest.Store(&s)
	return s
}

func (p *Pipeline) notify(s Surface) {
	p.lmu.Lock()
	ls := append([]func(Surface){}, p.listeners...)
	p.lmu.Unlock()
	for _, l := range ls {
		l(s)
	}
}

// Latest returns the most recently composed surface (zero before the first frame).
func (p *Pipeline) Latest() Surface {
	if p == nil {
		return Surface{}
	}
	if s := p.latest.Load(); s != nil {
		return *s
	}
	return Surface{}
}

// AddListener registers fn for every newly composed surface. Listeners run on
// worker goroutines (or the Repaint caller) and must not block.
func (p *Pipeline) AddListener(fn func(Surface)) {
	if p == nil || fn == nil {
		return
	}
	p.lmu.Lock()
	p.listeners = append(p.listeners, fn)
	p.lmu.Unlock()
}

// Close stops the workers. Payloads supplied afterwards are ignored.
func (p *Pipeline) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.quit)
	})
	p.wg.Wait()
}
