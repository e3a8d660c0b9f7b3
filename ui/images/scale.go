package images

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/soocke/zone-console/domain/geometry"
)

// Frames arrive at display rate, so favour encode speed over size.
var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = encoder.Encode(&buf, img)
	return buf.Bytes()
}

// FitSize returns the largest size with the aspect ratio of src that fits
// within maxW x maxH. Sources that already fit are returned unchanged.
func FitSize(src geometry.Size, maxW, maxH int) geometry.Size {
	if src.W <= 0 || src.H <= 0 {
		return geometry.Size{}
	}
	if (maxW <= 0 || src.W <= maxW) && (maxH <= 0 || src.H <= maxH) {
		return src
	}
	ratio := 1.0
	if maxW > 0 {
		ratio = float64(maxW) / float64(src.W)
	}
	if maxH > 0 {
		if r := float64(maxH) / float64(src.H); r < ratio {
			ratio = r
		}
	}
	out := geometry.Size{W: int(float64(src.W)*ratio + 0.5), H: int(float64(src.H)*ratio + 0.5)}
	if out.W < 1 {
		out.W = 1
	}
	if out.H < 1 {
		out.H = 1
	}
	return out
}

// ScaleToFit scales src to fit within maxW x maxH preserving aspect ratio.
// If the source already fits, the original is returned.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	size := FitSize(geometry.Size{W: b.Dx(), H: b.Dy()}, maxW, maxH)
	if size.W == b.Dx() && size.H == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
