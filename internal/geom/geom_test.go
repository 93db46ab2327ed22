package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

func TestClampLerpMapRange(t *testing.T) {
	assert.Equal(t, 0.2, Clamp(0.1, 0.2, 3))
	assert.Equal(t, 3.0, Clamp(5, 0.2, 3))
	assert.Equal(t, 1.5, Clamp(1.5, 0.2, 3))

	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
	assert.Equal(t, 0.0, Lerp(0, 10, 0))

	assert.InDelta(t, 50.0, MapRange(0.5, 0, 1, 0, 100), tol)
	assert.InDelta(t, 100.0, MapRange(0, 0, 1, 100, 0), tol)
	assert.Equal(t, 7.0, MapRange(3, 1, 1, 7, 9))
}

func TestNormalizeAngle(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		360:  0,
		-90:  270,
		450:  90,
		-720: 0,
		359:  359,
	}
	for in, want := range cases {
		got := NormalizeAngle(in)
		assert.InDelta(t, want, got, tol, "NormalizeAngle(%v)", in)
		assert.True(t, got >= 0 && got < 360)
	}
}

func TestPolarRoundTrip(t *testing.T) {
	for _, angle := range []float64{0, 45, 90, 135, 180, 225, 270, 315, 359.5} {
		p := PolarToCartesian(angle, 200)
		gotAngle, gotRadius := CartesianToPolar(p.X, p.Y)
		assert.InDelta(t, angle, gotAngle, 1e-6)
		assert.InDelta(t, 200.0, gotRadius, 1e-6)
	}
}

func TestPolarToCartesianAxes(t *testing.T) {
	p := PolarToCartesian(90, 10)
	assert.InDelta(t, 0.0, p.X, tol)
	assert.InDelta(t, 10.0, p.Y, tol)

	angle, _ := CartesianToPolar(0, -1)
	assert.InDelta(t, 270.0, angle, tol)
}

func TestMatrixScaleTranslate(t *testing.T) {
	m := ScaleTranslate(2.5, 40, -12)
	assert.Equal(t, Point{X: 72.5, Y: -29.5}, m.Apply(Point{X: 13, Y: -7}))

	r := Rect{X: 10, Y: 10, Width: 4, Height: 2}
	assert.Equal(t, Rect{X: 65, Y: 13, Width: 10, Height: 5}, m.ApplyRect(r))

	flipped := ScaleTranslate(-1, 0, 0).ApplyRect(r)
	assert.Equal(t, Rect{X: -14, Y: -12, Width: 4, Height: 2}, flipped)
}

func TestRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, r.Contains(10, 10))
	assert.False(t, r.Contains(10.1, 5))
	assert.True(t, Rect{}.IsEmpty())

	u := r.Union(Rect{X: 20, Y: -5, Width: 5, Height: 5})
	assert.Equal(t, Rect{X: 0, Y: -5, Width: 25, Height: 15}, u)
	assert.Equal(t, Point{X: 12.5, Y: 2.5}, u.Center())

	bb := ScaleTranslate(2, 0, 0).ApplyRect(r)
	assert.Equal(t, 20.0, bb.Width)
	assert.False(t, math.IsNaN(bb.X))
}
