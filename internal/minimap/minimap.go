// Package minimap projects the world and the live viewport into a small
// overlay, and maps overlay clicks back into viewport navigation.
package minimap

import (
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/viewport"
)

// Default overlay size (pixels) and world bounds. The bounds are a display
// convention for the overlay only; canvas content itself is unbounded.
const (
	DefaultWidth  = 150.0
	DefaultHeight = 100.0
)

// DefaultBounds is a 1000x1000 square centered on the world origin.
func DefaultBounds() geom.Rect {
	return geom.Rect{X: -500, Y: -500, Width: 1000, Height: 1000}
}

// Projector maps between world space and overlay pixels.
type Projector struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Bounds geom.Rect `json:"bounds"`
}

// New returns a projector. Non-positive sizes or empty bounds fall back to
// the defaults.
func New(width, height float64, bounds geom.Rect) Projector {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	if bounds.IsEmpty() {
		bounds = DefaultBounds()
	}
	return Projector{Width: width, Height: height, Bounds: bounds}
}

// Default returns the 150x100 projector over DefaultBounds.
func Default() Projector {
	return New(DefaultWidth, DefaultHeight, DefaultBounds())
}

func (p Projector) scaleX() float64 { return p.Width / p.Bounds.Width }
func (p Projector) scaleY() float64 { return p.Height / p.Bounds.Height }

// Project maps a world point to overlay pixels.
func (p Projector) Project(world geom.Point) geom.Point {
	return geom.Point{
		X: (world.X - p.Bounds.X) * p.scaleX(),
		Y: (world.Y - p.Bounds.Y) * p.scaleY(),
	}
}

// Unproject maps overlay pixels back to the world point Project would send
// there.
func (p Projector) Unproject(px, py float64) geom.Point {
	return geom.Point{
		X: px/p.scaleX() + p.Bounds.X,
		Y: py/p.scaleY() + p.Bounds.Y,
	}
}

// ViewportRect returns the part of the world visible in a container of the
// given size, in overlay pixels.
func (p Projector) ViewportRect(t *viewport.Transform, containerW, containerH float64) geom.Rect {
	topLeft := p.Project(geom.Point{X: -t.OffsetX / t.Scale, Y: -t.OffsetY / t.Scale})
	return geom.Rect{
		X:      topLeft.X,
		Y:      topLeft.Y,
		Width:  containerW / t.Scale * p.scaleX(),
		Height: containerH / t.Scale * p.scaleY(),
	}
}

// Navigate recenters t on the world point under an overlay click and
// returns that point. Scale is left alone.
func (p Projector) Navigate(px, py float64, t *viewport.Transform, containerW, containerH float64) geom.Point {
	world := p.Unproject(px, py)
	t.CenterOn(world, containerW, containerH)
	return world
}
