// Package snap quantizes world positions to a square grid.
package snap

import (
	"math"

	"github.com/refboard/refboard/internal/geom"
)

// DefaultPitch is the grid spacing in world units.
const DefaultPitch = 20.0

// Snap rounds p to the nearest multiple of pitch on both axes, halves
// toward positive infinity. When disabled, or when pitch is not positive,
// p is returned unchanged.
func Snap(p geom.Point, pitch float64, enabled bool) geom.Point {
	if !enabled || pitch <= 0 {
		return p
	}
	return geom.Point{
		X: math.Floor(p.X/pitch+0.5) * pitch,
		Y: math.Floor(p.Y/pitch+0.5) * pitch,
	}
}

// Grid is the toggleable snap setting of a workspace.
type Grid struct {
	Pitch   float64 `json:"pitch"`
	Enabled bool    `json:"enabled"`
}

// NewGrid returns a grid with the given pitch, disabled.
func NewGrid(pitch float64) Grid {
	if pitch <= 0 {
		pitch = DefaultPitch
	}
	return Grid{Pitch: pitch}
}

// Apply snaps p with this grid's settings.
func (g Grid) Apply(p geom.Point) geom.Point {
	return Snap(p, g.Pitch, g.Enabled)
}

// Toggle flips snapping on or off. Already placed nodes are not touched.
func (g *Grid) Toggle() {
	g.Enabled = !g.Enabled
}
