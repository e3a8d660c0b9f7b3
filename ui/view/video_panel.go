package view

import (
	"image"

	"github.com/soocke/zone-console/domain/geometry"
	"github.com/soocke/zone-console/ui/images"
	"github.com/soocke/zone-console/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// VideoPanel shows the latest frame scaled to fit and reports pointer input
// in label-relative coordinates.
type VideoPanel interface {
	ShowFrame(img *image.RGBA) geometry.Size
	SetOverlay(text string)
	SetCrosshair(on bool)
}

type videoPanel struct {
	frameLabel   *LabelWidget
	overlayLabel *TLabelWidget
	maxW, maxH   int
	prevPhoto    *Img // replaced photos are deleted so obsolete pixel buffers are released
	shown        geometry.Size
}

// NewVideoPanel creates the frame label inside parent at (row, 0).
// onClick and onDouble receive label coordinates.
func NewVideoPanel(parent *FrameWidget, row, maxW, maxH int, onClick, onDouble func(x, y float64)) VideoPanel {
	v := &videoPanel{maxW: maxW, maxH: maxH}
	placeholder := image.NewRGBA(image.Rect(0, 0, 320, 180))
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(placeholder)))
	v.frameLabel = Label(Image(v.prevPhoto), Borderwidth(0), Padx(0), Pady(0), Background(theme.ColorVideoBg))
	Grid(v.frameLabel, In(parent), Row(row), Column(0), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	v.overlayLabel = TLabel(Txt(""), Style(theme.StyleMessageLabel))
	Grid(v.overlayLabel, In(parent), Row(row+1), Column(0), Sticky("w"), Padx("0.4m"))

	// No border or padding: event coordinates are image coordinates.
	Bind(v.frameLabel, "<Button-1>", Command(func(e *Event) {
		if onClick != nil {
			onClick(float64(e.X), float64(e.Y))
		}
	}))
	Bind(v.frameLabel, "<Double-Button-1>", Command(func(e *Event) {
		if onDouble != nil {
			onDouble(float64(e.X), float64(e.Y))
		}
	}))
	return v
}

func (v *videoPanel) ShowFrame(img *image.RGBA) geometry.Size {
	if v.frameLabel == nil || img == nil {
		return v.shown
	}
	scaled := images.ScaleToFit(img, v.maxW, v.maxH)
	b := scaled.Bounds()
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(scaled)))
	v.frameLabel.Configure(Image(v.prevPhoto))
	v.shown = geometry.Size{W: b.Dx(), H: b.Dy()}
	return v.shown
}

func (v *videoPanel) SetOverlay(text string) {
	if v.overlayLabel != nil {
		v.overlayLabel.Configure(Txt(text))
	}
}

func (v *videoPanel) SetCrosshair(on bool) {
	if v.frameLabel == nil {
		return
	}
	cursor := ""
	if on {
		cursor = "crosshair"
	}
	v.frameLabel.Configure(Cursor(cursor))
}
