package engine

import (
	"encoding/json"

	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/interact"
	"github.com/refboard/refboard/internal/viewport"
)

// NodeView is one resolved reference node, ready for the frontend to draw
// and for the reference collection to persist.
type NodeView struct {
	ID            string                 `json:"id"`
	Thumbnail     string                 `json:"thumbnail,omitempty"`
	InfluenceType document.InfluenceType `json:"influenceType,omitempty"`

	World *geom.Point `json:"world,omitempty"` // canvas: top-left in world units
	Polar *geom.Polar `json:"polar,omitempty"` // orbital

	Screen geom.Rect `json:"screen"` // hit/draw box in container pixels

	Strength int              `json:"strength"`
	Source   influence.Source `json:"source"`
	Zone     influence.Zone   `json:"zone"`
	Selected bool             `json:"selected,omitempty"`
	Main     bool             `json:"main,omitempty"`
}

// Frame is the full render result for one frame.
type Frame struct {
	Paradigm  document.Paradigm `json:"paradigm"`
	Transform geom.Matrix2D     `json:"transform"` // [a, b, c, d, e, f] world → screen
	Mode      string            `json:"mode"`
	Grid      bool              `json:"grid"`
	Nodes     []NodeView        `json:"nodes"`
}

// Nodes resolves every reference in display order for the active paradigm.
func (e *Engine) Nodes() []NodeView {
	if e.board == nil {
		return nil
	}

	total := len(e.board.References)
	views := make([]NodeView, 0, total)
	for i, ref := range e.board.References {
		views = append(views, e.nodeView(ref, i, total))
	}
	return views
}

func (e *Engine) nodeView(ref document.Reference, ordinal, total int) NodeView {
	nv := NodeView{
		ID:            ref.ID,
		Thumbnail:     ref.Thumbnail,
		InfluenceType: ref.InfluenceType,
		Source:        ref.Strength.Source,
		Selected:      e.isSelected(ref.ID),
		Main:          e.board.MainImage != nil && *e.board.MainImage == ref.ID,
	}

	view := e.view()
	if e.paradigm == document.ParadigmOrbital {
		p := e.orbital.Get(ref.ID, ordinal, total)
		nv.Polar = &p
		nv.Strength = ref.Strength.Effective(p.Distance)
		nv.Zone = zoneOf(ref.Strength, p.Distance)

		c := e.orbitalCtl.ScreenOf(p)
		r := e.spatial.Orbit.NodeRadius * view.Scale
		nv.Screen = geom.Rect{X: c.X - r, Y: c.Y - r, Width: 2 * r, Height: 2 * r}
	} else {
		p := e.canvas.Get(ref.ID, ordinal, total)
		nv.World = &p
		// canvas distance is not meaningful; strength is the orbital one
		d := e.orbital.Get(ref.ID, ordinal, total).Distance
		nv.Strength = ref.Strength.Effective(d)
		nv.Zone = zoneOf(ref.Strength, d)

		box := geom.Rect{X: p.X, Y: p.Y, Width: e.spatial.NodeWidth, Height: e.spatial.NodeHeight}
		nv.Screen = view.Matrix().ApplyRect(box)
	}
	return nv
}

// zoneOf bands derived strengths by distance and manual overrides by value.
func zoneOf(s influence.Strength, distance float64) influence.Zone {
	if s.IsManual() {
		return influence.ZoneFromStrength(s.Value)
	}
	return influence.ZoneFromDistance(distance)
}

func (e *Engine) isSelected(id string) bool {
	for _, s := range e.selection {
		if s == id {
			return true
		}
	}
	return false
}

// --- Queries (frontend ← engine) ---

// Render returns the current frame as JSON.
func (e *Engine) Render() string {
	frame := Frame{
		Paradigm:  e.paradigm,
		Transform: e.view().Matrix(),
		Mode:      e.state.Mode.String(),
		Grid:      e.grid.Enabled,
		Nodes:     e.Nodes(),
	}
	if frame.Nodes == nil {
		frame.Nodes = []NodeView{}
	}
	data, _ := json.Marshal(frame)
	return string(data)
}

// HitTest returns the id of the topmost node under screen (x, y), or an
// empty string. Later references are drawn on top, so they are tested
// first.
func (e *Engine) HitTest(x, y float64) string {
	nodes := e.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if e.paradigm == document.ParadigmOrbital {
			c := n.Screen.Center()
			if (geom.Point{X: x, Y: y}).Sub(c).Len() <= n.Screen.Width/2 {
				return n.ID
			}
			continue
		}
		if n.Screen.Contains(x, y) {
			return n.ID
		}
	}
	return ""
}

// SelectionBounds returns the combined screen box of the selection.
func (e *Engine) SelectionBounds() geom.Rect {
	var result geom.Rect
	for _, n := range e.Nodes() {
		if n.Selected {
			result = result.Union(n.Screen)
		}
	}
	return result
}

// GetSelectionBounds returns SelectionBounds as JSON.
func (e *Engine) GetSelectionBounds() string {
	return RectToJSON(e.SelectionBounds())
}

// Viewport returns a copy of the active transform.
func (e *Engine) Viewport() viewport.Transform {
	return e.view().Snapshot()
}

// GetViewport returns the active transform as JSON.
func (e *Engine) GetViewport() string {
	data, _ := json.Marshal(e.Viewport())
	return string(data)
}

// Minimap is the overlay state for the active view.
type Minimap struct {
	Width    float64               `json:"width"`
	Height   float64               `json:"height"`
	Viewport geom.Rect             `json:"viewport"`
	Nodes    map[string]geom.Point `json:"nodes"`
}

// MinimapState projects the nodes and the visible area into the overlay.
func (e *Engine) MinimapState() Minimap {
	proj := e.spatial.Projector()
	mm := Minimap{
		Width:    proj.Width,
		Height:   proj.Height,
		Viewport: proj.ViewportRect(e.view(), e.width, e.height),
		Nodes:    make(map[string]geom.Point),
	}

	for _, n := range e.Nodes() {
		var world geom.Point
		switch {
		case n.World != nil:
			world = *n.World
		case n.Polar != nil:
			world = geom.PolarToCartesian(n.Polar.Angle, n.Polar.Distance*e.spatial.Orbit.Radius)
		}
		mm.Nodes[n.ID] = proj.Project(world)
	}
	return mm
}

// GetMinimap returns MinimapState as JSON.
func (e *Engine) GetMinimap() string {
	data, _ := json.Marshal(e.MinimapState())
	return string(data)
}

// Ranking orders references by effective strength.
func (e *Engine) Ranking() []influence.Ranked {
	nodes := e.Nodes()
	entries := make([]influence.Ranked, len(nodes))
	for i, n := range nodes {
		entries[i] = influence.Ranked{ID: n.ID, Strength: n.Strength, Zone: n.Zone}
	}
	return influence.Rank(entries)
}

// GetBoard returns the full board as JSON (for sync).
func (e *Engine) GetBoard() string {
	if e.board == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.board)
	return string(data)
}

// Board returns the live board. Callers must not mutate it.
func (e *Engine) Board() *document.Board {
	return e.board
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.selection)
	return string(data)
}

// Selection returns the selected ids.
func (e *Engine) Selection() []string {
	return e.selection
}

// Mode returns the gesture in progress.
func (e *Engine) Mode() interact.Mode {
	return e.state.Mode
}

// Paradigm returns the active workspace.
func (e *Engine) Paradigm() document.Paradigm {
	return e.paradigm
}

// GridEnabled reports whether canvas drags snap.
func (e *Engine) GridEnabled() bool {
	return e.grid.Enabled
}

// EffectEnvelope is the wire form of an effect.
type EffectEnvelope struct {
	Type    string          `json:"type"`
	Payload interact.Effect `json:"payload"`
}

// DrainEffects returns and clears the queued effects.
func (e *Engine) DrainEffects() []interact.Effect {
	out := e.pending
	e.pending = nil
	return out
}

// DrainEffectsJSON returns and clears the queued effects as JSON.
func (e *Engine) DrainEffectsJSON() string {
	effects := e.DrainEffects()
	envs := make([]EffectEnvelope, len(effects))
	for i, eff := range effects {
		envs[i] = EffectEnvelope{Type: eff.Kind(), Payload: eff}
	}
	data, _ := json.Marshal(envs)
	return string(data)
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
