package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/interact"
	"github.com/refboard/refboard/internal/minimap"
	"github.com/refboard/refboard/internal/registry"
	"github.com/refboard/refboard/internal/snap"
	"github.com/refboard/refboard/internal/viewport"
)

// Spatial holds the initialization-time constants of the spatial engine.
type Spatial struct {
	GridPitch    float64         `toml:"grid_pitch"`
	Zoom         viewport.Limits `toml:"zoom"`
	CanvasRadius float64         `toml:"canvas_radius"`
	NodeWidth    float64         `toml:"node_width"`
	NodeHeight   float64         `toml:"node_height"`
	Orbit        OrbitConfig     `toml:"orbit"`
	Minimap      MinimapConfig   `toml:"minimap"`
}

// OrbitConfig sizes the orbital workspace.
type OrbitConfig struct {
	Radius     float64 `toml:"radius"`
	DropRadius float64 `toml:"drop_radius"`
	NodeRadius float64 `toml:"node_radius"`
}

// MinimapConfig sizes the overlay and the world area it shows.
type MinimapConfig struct {
	Width  float64   `toml:"width"`
	Height float64   `toml:"height"`
	Bounds geom.Rect `toml:"bounds"`
}

// DefaultSpatial returns the stock constants.
func DefaultSpatial() Spatial {
	return Spatial{
		GridPitch:    snap.DefaultPitch,
		Zoom:         viewport.DefaultLimits(),
		CanvasRadius: registry.DefaultCanvasRadius,
		NodeWidth:    120,
		NodeHeight:   120,
		Orbit: OrbitConfig{
			Radius:     interact.DefaultOrbitRadius,
			DropRadius: interact.DefaultDropRadius,
			NodeRadius: 32,
		},
		Minimap: MinimapConfig{
			Width:  minimap.DefaultWidth,
			Height: minimap.DefaultHeight,
			Bounds: minimap.DefaultBounds(),
		},
	}
}

// LoadSpatial decodes a TOML preset over the defaults. Keys absent from the
// file keep their default values.
func LoadSpatial(path string) (Spatial, error) {
	sp := DefaultSpatial()
	if _, err := toml.DecodeFile(path, &sp); err != nil {
		return Spatial{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := sp.Validate(); err != nil {
		return Spatial{}, err
	}
	return sp, nil
}

// Validate rejects presets the engine cannot work with.
func (s Spatial) Validate() error {
	switch {
	case s.GridPitch <= 0:
		return fmt.Errorf("grid_pitch must be positive, got %v", s.GridPitch)
	case s.Zoom.Min <= 0 || s.Zoom.Max < s.Zoom.Min:
		return fmt.Errorf("zoom range [%v, %v] is invalid", s.Zoom.Min, s.Zoom.Max)
	case s.Orbit.Radius <= 0:
		return fmt.Errorf("orbit radius must be positive, got %v", s.Orbit.Radius)
	case s.Minimap.Bounds.IsEmpty():
		return fmt.Errorf("minimap bounds are empty")
	}
	return nil
}

// Projector builds the minimap projector for these settings.
func (s Spatial) Projector() minimap.Projector {
	return minimap.New(s.Minimap.Width, s.Minimap.Height, s.Minimap.Bounds)
}

// OrbitGeometry returns the interaction geometry of the orbital workspace.
func (s Spatial) OrbitGeometry() interact.Orbit {
	return interact.Orbit{Radius: s.Orbit.Radius, DropRadius: s.Orbit.DropRadius}
}
