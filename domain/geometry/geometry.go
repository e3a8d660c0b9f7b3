package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// MinPolygonPoints is the smallest point count accepted for a closed zone polygon.
const MinPolygonPoints = 3

var (
	ErrTooFewPoints       = errors.New("polygon needs at least 3 points")
	ErrNegativeCoordinate = errors.New("polygon point has a negative coordinate")
)

// Point is a position in canvas-buffer pixel space.
type Point struct {
	X int
	Y int
}

// MarshalJSON encodes the point as a two-element array [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON accepts the [x, y] form. Fractional values are rounded.
func (p *Point) UnmarshalJSON(b []byte) error {
	var raw []float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("point: expected 2 coordinates, got %d", len(raw))
	}
	p.X = int(math.Round(raw[0]))
	p.Y = int(math.Round(raw[1]))
	return nil
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Size is a width/height pair.
type Size struct {
	W int
	H int
}

// PointerEvent carries a raw pointer position together with the geometry of the
// surface it landed on. Client and Origin share the same coordinate system;
// Display is the on-screen size of the surface and Buffer its logical pixel size.
type PointerEvent struct {
	ClientX, ClientY float64
	OriginX, OriginY float64
	Display          Size
	Buffer           Size
}

// MapToBuffer converts a pointer position to canvas-buffer coordinates.
// Each axis is scaled by buffer/display, rounded to the nearest integer and
// clamped into the buffer. A zero display dimension maps that axis 1:1.
func MapToBuffer(ev PointerEvent) Point {
	return Point{
		X: mapAxis(ev.ClientX-ev.OriginX, ev.Display.W, ev.Buffer.W),
		Y: mapAxis(ev.ClientY-ev.OriginY, ev.Display.H, ev.Buffer.H),
	}
}

func mapAxis(offset float64, display, buffer int) int {
	scale := 1.0
	if display > 0 && buffer > 0 {
		scale = float64(buffer) / float64(display)
	}
	v := int(math.Round(offset * scale))
	if v < 0 {
		v = 0
	}
	if buffer > 0 && v > buffer-1 {
		v = buffer - 1
	}
	return v
}

// ValidatePolygon reports whether pts can form a closed zone.
func ValidatePolygon(pts []Point) error {
	if len(pts) < MinPolygonPoints {
		return ErrTooFewPoints
	}
	for _, p := range pts {
		if p.X < 0 || p.Y < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeCoordinate, p)
		}
	}
	return nil
}

// Clone returns an independent copy of pts (nil stays nil).
func Clone(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
