package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToBuffer_ScalesDisplayToBuffer(t *testing.T) {
	ev := PointerEvent{
		ClientX: 110, ClientY: 60,
		OriginX: 10, OriginY: 10,
		Display: Size{W: 320, H: 240},
		Buffer:  Size{W: 640, H: 480},
	}
	assert.Equal(t, Point{X: 200, Y: 100}, MapToBuffer(ev))
}

func TestMapToBuffer_RoundsToNearest(t *testing.T) {
	ev := PointerEvent{
		ClientX: 1, ClientY: 2,
		Display: Size{W: 3, H: 3},
		Buffer:  Size{W: 4, H: 4},
	}
	// 1*4/3 = 1.33 -> 1, 2*4/3 = 2.67 -> 3
	assert.Equal(t, Point{X: 1, Y: 3}, MapToBuffer(ev))
}

func TestMapToBuffer_ScaleInvariant(t *testing.T) {
	buffer := Size{W: 1280, H: 720}
	base := PointerEvent{ClientX: 137, ClientY: 91, Display: Size{W: 640, H: 360}, Buffer: buffer}
	want := MapToBuffer(base)
	for _, k := range []float64{0.5, 1.5, 2, 3.25} {
		ev := PointerEvent{
			ClientX: base.ClientX * k,
			ClientY: base.ClientY * k,
			Display: Size{W: int(float64(base.Display.W) * k), H: int(float64(base.Display.H) * k)},
			Buffer:  buffer,
		}
		got := MapToBuffer(ev)
		assert.InDelta(t, want.X, got.X, 1, "scale %v", k)
		assert.InDelta(t, want.Y, got.Y, 1, "scale %v", k)
	}
}

func TestMapToBuffer_ClampsIntoBuffer(t *testing.T) {
	ev := PointerEvent{ClientX: -5, ClientY: 999, Display: Size{W: 100, H: 100}, Buffer: Size{W: 100, H: 100}}
	assert.Equal(t, Point{X: 0, Y: 99}, MapToBuffer(ev))

	// The far edge of a scaled display lands on the last pixel, not one past it.
	edge := PointerEvent{ClientX: 320, ClientY: 240, Display: Size{W: 320, H: 240}, Buffer: Size{W: 640, H: 480}}
	assert.Equal(t, Point{X: 639, Y: 479}, MapToBuffer(edge))
}

func TestMapToBuffer_ZeroDisplayIsIdentity(t *testing.T) {
	ev := PointerEvent{ClientX: 12.4, ClientY: 7.6}
	assert.Equal(t, Point{X: 12, Y: 8}, MapToBuffer(ev))
}

func TestValidatePolygon(t *testing.T) {
	require.ErrorIs(t, ValidatePolygon(nil), ErrTooFewPoints)
	require.ErrorIs(t, ValidatePolygon([]Point{{1, 1}, {2, 2}}), ErrTooFewPoints)
	require.ErrorIs(t, ValidatePolygon([]Point{{1, 1}, {-2, 2}, {3, 3}}), ErrNegativeCoordinate)
	require.NoError(t, ValidatePolygon([]Point{{10, 10}, {110, 10}, {110, 110}}))
}

func TestPoint_JSONArrayForm(t *testing.T) {
	b, err := json.Marshal([]Point{{10, 20}, {30, 40}})
	require.NoError(t, err)
	assert.JSONEq(t, `[[10,20],[30,40]]`, string(b))

	var pts []Point
	require.NoError(t, json.Unmarshal([]byte(`[[1,2],[3.6,4]]`), &pts))
	assert.Equal(t, []Point{{1, 2}, {4, 4}}, pts)

	var p Point
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &p))
}
