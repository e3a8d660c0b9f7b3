package zone

import (
	"errors"

	"github.com/soocke/zone-console/domain/geometry"
)

var (
	// ErrEmptyZoneID is a user-facing validation error.
	ErrEmptyZoneID    = errors.New("please enter a zone ID first")
	ErrAlreadyDrawing = errors.New("already drawing a zone")
	ErrNotDrawing     = errors.New("not in drawing mode")
	ErrTooFewPoints   = geometry.ErrTooFewPoints
)

// Phase is the drawing-mode discriminant.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDrawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the machine. ZoneID and Points are only
// set while drawing.
type State struct {
	Phase  Phase
	ZoneID string
	Points []geometry.Point
}

// Closeable reports whether the draft has enough points to complete.
func (s State) Closeable() bool {
	return s.Phase == PhaseDrawing && len(s.Points) >= geometry.MinPolygonPoints
}

// Zone is a completed polygon in canvas-buffer coordinates.
type Zone struct {
	ID     string           `json:"id"`
	Points []geometry.Point `json:"points"`
}

// Validate checks the id and polygon.
func (z Zone) Validate() error {
	if z.ID == "" {
		return ErrEmptyZoneID
	}
	return geometry.ValidatePolygon(z.Points)
}

// Sink receives completed zones as persistence requests. Submit must not block.
type Sink interface {
	Submit(Zone)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Zone)

func (f SinkFunc) Submit(z Zone) { f(z) }

// Listener is called on every state change.
type Listener func(prev, next State)
