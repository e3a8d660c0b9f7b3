package presenter

import (
	"image"
	"sync"

	"github.com/soocke/zone-console/domain/geometry"
	"github.com/soocke/zone-console/domain/render"
)

// SurfaceSource supplies the latest composed frame.
type SurfaceSource interface {
	Latest() render.Surface
}

// VideoView displays frames. ShowFrame returns the on-screen size the frame
// was drawn at.
type VideoView interface {
	ShowFrame(img *image.RGBA) geometry.Size
	SetVideoError(msg string)
}

// VideoPresenter pulls the newest surface on every tick and forwards it to
// the view when it changed. It also remembers the display geometry used to
// map clicks back into buffer coordinates.
type VideoPresenter struct {
	src  SurfaceSource
	view VideoView

	last    *image.RGBA
	lastSeq uint64
	display geometry.Size
	buffer  geometry.Size

	mu       sync.Mutex
	errMsg   string
	errDirty bool
}

func NewVideoPresenter(src SurfaceSource, view VideoView) *VideoPresenter {
	return &VideoPresenter{src: src, view: view}
}

// OnBackendError queues a backend-reported video error. Safe from any goroutine.
func (p *VideoPresenter) OnBackendError(msg string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.errMsg, p.errDirty = msg, true
	p.mu.Unlock()
}

// Tick shows the newest surface, if any.
func (p *VideoPresenter) Tick() {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	msg, dirty := p.errMsg, p.errDirty
	p.errDirty = false
	p.mu.Unlock()
	if dirty {
		p.view.SetVideoError(msg)
	}

	s := p.src.Latest()
	if s.Image == nil || s.Image == p.last {
		return
	}
	p.last = s.Image
	p.buffer = s.Size
	p.display = p.view.ShowFrame(s.Image)
	if s.Sequence > p.lastSeq {
		// a new frame means the backend recovered
		p.lastSeq = s.Sequence
		p.clearError()
	}
}

func (p *VideoPresenter) clearError() {
	p.mu.Lock()
	had := p.errMsg != ""
	p.errMsg = ""
	p.mu.Unlock()
	if had {
		p.view.SetVideoError("")
	}
}

// Geometry returns the display and buffer sizes of the frame currently shown.
func (p *VideoPresenter) Geometry() (display, buffer geometry.Size) {
	if p == nil {
		return geometry.Size{}, geometry.Size{}
	}
	return p.display, p.buffer
}
