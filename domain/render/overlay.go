package render

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/soocke/zone-console/domain/geometry"
)

// Overlay styling.
var (
	LineColor    = color.RGBA{0x00, 0xff, 0x00, 0xff}
	ClosingColor = color.RGBA{0xff, 0xd7, 0x00, 0xff}
	MarkerColor  = color.RGBA{0x00, 0xff, 0x00, 0xff}
	LabelColor   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	LabelShadow  = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

const (
	lineWidth    = 3
	markerRadius = 5
	dashOn       = 8
	dashOff      = 6
)

// DrawOverlay paints the draft polygon onto dst: segments between consecutive
// points, a dashed closing segment once the polygon is closeable, and a
// numbered marker per point.
func DrawOverlay(dst *image.RGBA, pts []geometry.Point) {
	if dst == nil || len(pts) == 0 {
		return
	}
	for i := 1; i < len(pts); i++ {
		drawLine(dst, pts[i-1], pts[i], LineColor, false)
	}
	if len(pts) >= geometry.MinPolygonPoints {
		drawLine(dst, pts[len(pts)-1], pts[0], ClosingColor, true)
	}
	for i, p := range pts {
		fillDisc(dst, p.X, p.Y, markerRadius, MarkerColor)
		drawLabel(dst, p, strconv.Itoa(i+1))
	}
}

// drawLine walks the segment one pixel per step along its major axis and
// stamps a square brush. Dashed lines skip alternate runs of pixels.
func drawLine(dst *image.RGBA, a, b geometry.Point, c color.RGBA, dashed bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	half := lineWidth / 2
	for i := 0; i <= steps; i++ {
		if dashed && i%(dashOn+dashOff) >= dashOn {
			continue
		}
		x, y := a.X, a.Y
		if steps > 0 {
			x = a.X + (dx*i+sign(dx)*steps/2)/steps
			y = a.Y + (dy*i+sign(dy)*steps/2)/steps
		}
		for oy := -half; oy <= half; oy++ {
			for ox := -half; ox <= half; ox++ {
				setIn(dst, x+ox, y+oy, c)
			}
		}
	}
}

func fillDisc(dst *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				setIn(dst, cx+x, cy+y, c)
			}
		}
	}
}

// drawLabel writes text up and to the right of the marker with a 1px shadow.
func drawLabel(dst *image.RGBA, p geometry.Point, text string) {
	face := basicfont.Face7x13
	x := p.X + markerRadius + 2
	y := p.Y - markerRadius - 2
	if y-face.Ascent < dst.Rect.Min.Y {
		y = p.Y + markerRadius + face.Ascent + 2
	}
	for _, layer := range []struct {
		dx, dy int
		c      color.RGBA
	}{{1, 1, LabelShadow}, {0, 0, LabelColor}} {
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(layer.c),
			Face: face,
			Dot:  fixed.P(x+layer.dx, y+layer.dy),
		}
		d.DrawString(text)
	}
}

func setIn(dst *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(dst.Rect) {
		dst.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
