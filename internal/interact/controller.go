// Package interact resolves a raw pointer stream into pan, node-drag,
// select and clear-selection gestures on a workspace.
//
// The controller is a reducer: Step takes the current State and one Event
// and returns the next State plus the Effects of the transition. The
// viewport, registry and grid it writes to are injected handles owned by
// the caller.
package interact

import (
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/registry"
	"github.com/refboard/refboard/internal/snap"
	"github.com/refboard/refboard/internal/viewport"
)

// Mode is the gesture in progress.
type Mode int

const (
	Idle Mode = iota
	Panning
	DraggingNode
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case DraggingNode:
		return "dragging"
	default:
		return "unknown"
	}
}

// State is the session state between events. The zero value is Idle.
type State struct {
	Mode Mode

	// PanAnchor is pointer minus offset at press time (Panning).
	PanAnchor geom.Point

	// Node is the grabbed node (DraggingNode).
	Node Target
	// DragOffset is the pointer position relative to the node's top-left
	// in world units (canvas only).
	DragOffset geom.Point
}

// Active reports whether a pan or drag session is open.
func (s State) Active() bool {
	return s.Mode != Idle
}

// Default orbital geometry.
const (
	DefaultOrbitRadius = 300.0
	DefaultDropRadius  = 80.0
)

// Orbit describes the orbital workspace. The orbit is centered on the world
// origin; Radius is in world units and DropRadius in screen pixels.
type Orbit struct {
	Radius     float64
	DropRadius float64
}

// DefaultOrbit returns a 300-unit orbit with an 80px center drop zone.
func DefaultOrbit() Orbit {
	return Orbit{Radius: DefaultOrbitRadius, DropRadius: DefaultDropRadius}
}

// Controller applies gestures to one workspace. Exactly one of canvas and
// orbital is set.
type Controller struct {
	View *viewport.Transform
	Grid *snap.Grid

	canvas  *registry.Canvas
	orbital *registry.Orbital
	orbit   Orbit
}

// NewCanvas returns a controller for the free canvas paradigm.
func NewCanvas(view *viewport.Transform, nodes *registry.Canvas, grid *snap.Grid) *Controller {
	return &Controller{View: view, Grid: grid, canvas: nodes}
}

// NewOrbital returns a controller for the orbital paradigm. Orbital drags
// are not grid-snapped.
func NewOrbital(view *viewport.Transform, nodes *registry.Orbital, orbit Orbit) *Controller {
	if orbit.Radius <= 0 {
		orbit.Radius = DefaultOrbitRadius
	}
	if orbit.DropRadius <= 0 {
		orbit.DropRadius = DefaultDropRadius
	}
	return &Controller{View: view, orbital: nodes, orbit: orbit}
}

// IsOrbital reports the paradigm of the controller.
func (c *Controller) IsOrbital() bool {
	return c.orbital != nil
}

// Orbit returns the orbital geometry.
func (c *Controller) Orbit() Orbit {
	return c.orbit
}

// Step applies one event.
func (c *Controller) Step(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case PointerDown:
		return c.pointerDown(s, e)
	case PointerMove:
		return c.pointerMove(s, e)
	case PointerUp, PointerLeave:
		return c.release(s)
	case Wheel:
		before := c.View.Snapshot()
		c.View.Wheel(e.X, e.Y, e.DeltaY)
		if after := c.View.Snapshot(); after != before {
			return s, []Effect{ViewportChanged{Transform: after}}
		}
		return s, nil
	case Drop:
		return s, c.drop(e)
	}
	return s, nil
}

// Replay feeds events in order and collects every effect.
func (c *Controller) Replay(s State, events ...Event) (State, []Effect) {
	var all []Effect
	for _, ev := range events {
		var effects []Effect
		s, effects = c.Step(s, ev)
		all = append(all, effects...)
	}
	return s, all
}

func (c *Controller) pointerDown(s State, e PointerDown) (State, []Effect) {
	// one gesture at a time
	if s.Active() {
		return s, nil
	}

	switch {
	case e.Button == ButtonMiddle || (e.Button == ButtonLeft && e.Alt):
		return State{
			Mode:      Panning,
			PanAnchor: geom.Point{X: e.X - c.View.OffsetX, Y: e.Y - c.View.OffsetY},
		}, nil

	case e.Button == ButtonLeft && e.Target.NodeID != "":
		next := State{Mode: DraggingNode, Node: e.Target}
		if c.canvas != nil {
			pos := c.canvas.Get(e.Target.NodeID, e.Target.Ordinal, e.Target.Total)
			next.DragOffset = c.View.ScreenToWorld(e.X, e.Y).Sub(pos)
		}
		return next, []Effect{NodeSelected{ID: e.Target.NodeID}}

	case e.Button == ButtonLeft:
		return s, []Effect{SelectionCleared{}}
	}

	return s, nil
}

func (c *Controller) pointerMove(s State, e PointerMove) (State, []Effect) {
	switch s.Mode {
	case Panning:
		c.View.OffsetX = e.X - s.PanAnchor.X
		c.View.OffsetY = e.Y - s.PanAnchor.Y
		return s, []Effect{ViewportChanged{Transform: c.View.Snapshot()}}

	case DraggingNode:
		id := s.Node.NodeID
		if c.orbital != nil {
			p := c.PolarAt(e.X, e.Y)
			c.orbital.Set(id, p)
			return s, []Effect{
				NodeMoved{ID: id, Polar: &p},
				strengthEffect(id, p),
			}
		}

		p := c.View.ScreenToWorld(e.X, e.Y).Sub(s.DragOffset)
		if c.Grid != nil {
			p = c.Grid.Apply(p)
		}
		c.canvas.Set(id, p)
		return s, []Effect{NodeMoved{ID: id, World: &p}}
	}

	// stray move after the session ended
	return s, nil
}

func (c *Controller) release(s State) (State, []Effect) {
	if s.Mode != DraggingNode {
		return State{}, nil
	}

	id := s.Node.NodeID
	if c.orbital != nil {
		p := c.orbital.Get(id, s.Node.Ordinal, s.Node.Total)
		c.orbital.Set(id, p)
		return State{}, []Effect{NodeCommitted{ID: id, Polar: &p}}
	}

	p := c.canvas.Get(id, s.Node.Ordinal, s.Node.Total)
	c.canvas.Set(id, p)
	return State{}, []Effect{NodeCommitted{ID: id, World: &p}}
}

func (c *Controller) drop(e Drop) []Effect {
	if e.ReferenceID == "" {
		return nil
	}

	if c.orbital != nil {
		if c.InDropZone(e.X, e.Y) {
			return []Effect{MainImageSet{ReferenceID: e.ReferenceID}}
		}
		p := c.PolarAt(e.X, e.Y)
		c.orbital.Set(e.ReferenceID, p)
		return []Effect{
			ReferencePlaced{ID: e.ReferenceID, Polar: &p},
			strengthEffect(e.ReferenceID, p),
		}
	}

	p := c.View.ScreenToWorld(e.X, e.Y)
	if c.Grid != nil {
		p = c.Grid.Apply(p)
	}
	c.canvas.Set(e.ReferenceID, p)
	return []Effect{ReferencePlaced{ID: e.ReferenceID, World: &p}}
}

// Center returns the orbit center in screen space.
func (c *Controller) Center() geom.Point {
	return c.View.WorldToScreen(0, 0)
}

// PolarAt converts a screen point to an orbital position. Distance is
// clamped to [0,1].
func (c *Controller) PolarAt(sx, sy float64) geom.Polar {
	center := c.Center()
	angle, r := geom.CartesianToPolar(sx-center.X, sy-center.Y)

	maxRadius := c.orbit.Radius * c.View.Scale
	return geom.Polar{
		Angle:    angle,
		Distance: geom.Clamp(r/maxRadius, 0, 1),
	}
}

// ScreenOf converts an orbital position to its screen point.
func (c *Controller) ScreenOf(p geom.Polar) geom.Point {
	offset := geom.PolarToCartesian(p.Angle, p.Distance*c.orbit.Radius)
	return c.View.WorldToScreen(offset.X, offset.Y)
}

// InDropZone reports whether a screen point is close enough to the orbit
// center to count as a main-image drop.
func (c *Controller) InDropZone(sx, sy float64) bool {
	return geom.Point{X: sx, Y: sy}.Sub(c.Center()).Len() <= c.orbit.DropRadius
}

func strengthEffect(id string, p geom.Polar) StrengthChanged {
	return StrengthChanged{
		ID:       id,
		Strength: influence.StrengthFromDistance(p.Distance),
		Zone:     influence.ZoneFromDistance(p.Distance),
	}
}
