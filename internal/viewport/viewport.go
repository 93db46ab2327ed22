// Package viewport implements the pan/zoom transform that maps world space
// onto the screen space of an interactive container.
package viewport

import (
	"github.com/refboard/refboard/internal/geom"
)

// Default zoom limits and per-step factors.
const (
	ScaleMin = 0.2
	ScaleMax = 3.0

	WheelZoomIn  = 1.1
	WheelZoomOut = 0.9
	ButtonFactor = 1.25
)

// Limits bounds the scale a Transform may reach.
type Limits struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// DefaultLimits returns the [0.2, 3.0] scale range.
func DefaultLimits() Limits {
	return Limits{Min: ScaleMin, Max: ScaleMax}
}

// Transform maps world coordinates to screen coordinates:
// screen = world*Scale + Offset.
type Transform struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`

	limits Limits
}

// New returns an identity transform using the given scale limits. Zero
// limits fall back to the defaults.
func New(limits Limits) *Transform {
	if limits.Min <= 0 || limits.Max < limits.Min {
		limits = DefaultLimits()
	}
	return &Transform{Scale: 1, limits: limits}
}

// Limits returns the scale bounds of the transform.
func (t *Transform) Limits() Limits {
	if t.limits.Min <= 0 {
		return DefaultLimits()
	}
	return t.limits
}

// Reset restores the identity transform {0, 0, 1}.
func (t *Transform) Reset() {
	t.OffsetX = 0
	t.OffsetY = 0
	t.Scale = 1
}

// Set replaces offset and scale, clamping the scale into range.
func (t *Transform) Set(offsetX, offsetY, scale float64) {
	lim := t.Limits()
	t.OffsetX = offsetX
	t.OffsetY = offsetY
	t.Scale = geom.Clamp(scale, lim.Min, lim.Max)
}

// PanBy shifts the offset by a screen-space delta. Panning is unbounded.
func (t *Transform) PanBy(dx, dy float64) {
	t.OffsetX += dx
	t.OffsetY += dy
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// (screenX, screenY) fixed on screen. The resulting scale is clamped.
func (t *Transform) ZoomAt(screenX, screenY, factor float64) {
	lim := t.Limits()
	if t.Scale <= 0 {
		t.Scale = 1
	}
	newScale := geom.Clamp(t.Scale*factor, lim.Min, lim.Max)
	ratio := newScale / t.Scale

	t.OffsetX = screenX - (screenX-t.OffsetX)*ratio
	t.OffsetY = screenY - (screenY-t.OffsetY)*ratio
	t.Scale = newScale
}

// Wheel applies one wheel tick at the pointer. Negative deltaY (scrolling
// up) zooms in, positive zooms out, zero does nothing.
func (t *Transform) Wheel(screenX, screenY, deltaY float64) {
	switch {
	case deltaY < 0:
		t.ZoomAt(screenX, screenY, WheelZoomIn)
	case deltaY > 0:
		t.ZoomAt(screenX, screenY, WheelZoomOut)
	}
}

// ZoomIn is the toolbar zoom-in, anchored at the container center.
func (t *Transform) ZoomIn(containerW, containerH float64) {
	t.ZoomAt(containerW/2, containerH/2, ButtonFactor)
}

// ZoomOut is the toolbar zoom-out, anchored at the container center.
func (t *Transform) ZoomOut(containerW, containerH float64) {
	t.ZoomAt(containerW/2, containerH/2, 1/ButtonFactor)
}

// ScreenToWorld converts a screen point to world space.
func (t *Transform) ScreenToWorld(sx, sy float64) geom.Point {
	return geom.Point{
		X: (sx - t.OffsetX) / t.Scale,
		Y: (sy - t.OffsetY) / t.Scale,
	}
}

// WorldToScreen converts a world point to screen space.
func (t *Transform) WorldToScreen(wx, wy float64) geom.Point {
	return geom.Point{
		X: wx*t.Scale + t.OffsetX,
		Y: wy*t.Scale + t.OffsetY,
	}
}

// CenterOn moves the offset so the world point lands in the middle of the
// container. Scale is unchanged.
func (t *Transform) CenterOn(world geom.Point, containerW, containerH float64) {
	t.OffsetX = -world.X*t.Scale + containerW/2
	t.OffsetY = -world.Y*t.Scale + containerH/2
}

// Matrix returns the world-to-screen transform as an affine matrix.
func (t *Transform) Matrix() geom.Matrix2D {
	return geom.ScaleTranslate(t.Scale, t.OffsetX, t.OffsetY)
}

// Snapshot returns a detached copy, used when reporting the transform to
// observers.
func (t *Transform) Snapshot() Transform {
	return *t
}
