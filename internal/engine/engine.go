package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/refboard/refboard/internal/config"
	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/interact"
	"github.com/refboard/refboard/internal/registry"
	"github.com/refboard/refboard/internal/snap"
	"github.com/refboard/refboard/internal/viewport"
)

var (
	ErrNoBoard          = errors.New("no board loaded")
	ErrUnknownReference = errors.New("unknown reference")
	ErrNotSpatial       = errors.New("paradigm is not spatial")
)

// Engine owns one editing session of a board in the canvas and orbital
// paradigms. It processes commands from the frontend and returns query
// results. It is not safe for concurrent use; the host drives it from its
// UI event loop.
type Engine struct {
	spatial config.Spatial

	// Board state
	board *document.Board

	// Active spatial paradigm
	paradigm document.Paradigm

	// One transform per paradigm, so switching keeps each view
	views map[document.Paradigm]*viewport.Transform

	canvas  *registry.Canvas
	orbital *registry.Orbital
	grid    snap.Grid

	canvasCtl  *interact.Controller
	orbitalCtl *interact.Controller

	// Gesture in progress
	state interact.State

	// Selection state (engine owns this)
	selection []string

	// Container size in screen pixels
	width  float64
	height float64

	// Effects not yet drained by the host
	pending []interact.Effect

	// OnEffect, when set, is called for every effect as it happens.
	OnEffect func(interact.Effect)
}

// NewEngine creates a new engine instance.
func NewEngine(sp config.Spatial) *Engine {
	e := &Engine{
		spatial:  sp,
		paradigm: document.ParadigmCanvas,
		views: map[document.Paradigm]*viewport.Transform{
			document.ParadigmCanvas:  viewport.New(sp.Zoom),
			document.ParadigmOrbital: viewport.New(sp.Zoom),
		},
		canvas:  registry.NewCanvas(sp.CanvasRadius),
		orbital: registry.NewOrbital(),
		grid:    snap.NewGrid(sp.GridPitch),
	}
	e.canvasCtl = interact.NewCanvas(e.views[document.ParadigmCanvas], e.canvas, &e.grid)
	e.orbitalCtl = interact.NewOrbital(e.views[document.ParadigmOrbital], e.orbital, sp.OrbitGeometry())
	return e
}

// --- Commands (frontend → engine) ---

// LoadBoard loads a board from JSON and resets the session.
func (e *Engine) LoadBoard(jsonData string) error {
	var b document.Board
	if err := json.Unmarshal([]byte(jsonData), &b); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	e.SetBoard(&b)
	return nil
}

// SetBoard installs an already decoded board and resets the session.
func (e *Engine) SetBoard(b *document.Board) {
	e.board = b
	e.syncRegistries()

	e.paradigm = document.ParadigmCanvas
	if b.Paradigm == document.ParadigmOrbital {
		e.paradigm = document.ParadigmOrbital
	}

	for p, view := range e.views {
		view.Reset()
		if vs, ok := b.Viewports[p]; ok && vs.Scale > 0 {
			view.Set(vs.OffsetX, vs.OffsetY, vs.Scale)
		} else if p == document.ParadigmOrbital {
			view.PanBy(e.width/2, e.height/2)
		}
	}

	e.state = interact.State{}
	e.selection = nil
	e.pending = nil
}

// UpdateBoard reloads a board from JSON while preserving the view, the
// selection and any gesture whose node still exists. Used when a
// collaborator changes the board mid-session.
func (e *Engine) UpdateBoard(jsonData string) error {
	var b document.Board
	if err := json.Unmarshal([]byte(jsonData), &b); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}

	e.board = &b
	e.syncRegistries()

	if e.state.Mode == interact.DraggingNode && b.Index(e.state.Node.NodeID) < 0 {
		e.state = interact.State{}
	}
	e.selection = slices.DeleteFunc(e.selection, func(id string) bool {
		return b.Index(id) < 0
	})

	return nil
}

// LoadSampleBoard loads the built-in sample board.
func (e *Engine) LoadSampleBoard(boardID string) {
	e.SetBoard(document.NewSampleBoard(boardID))
}

// syncRegistries rebuilds both registries from the stored positions on the
// board.
func (e *Engine) syncRegistries() {
	e.canvas.Clear()
	e.orbital.Clear()
	for _, ref := range e.board.References {
		if ref.Canvas != nil {
			e.canvas.Set(ref.ID, *ref.Canvas)
		}
		if ref.Orbital != nil {
			e.orbital.Set(ref.ID, *ref.Orbital)
		}
	}
}

// SetParadigm switches between the canvas and orbital workspaces. Any
// gesture in progress ends.
func (e *Engine) SetParadigm(p document.Paradigm) error {
	if !p.Spatial() {
		return fmt.Errorf("%w: %s", ErrNotSpatial, p)
	}
	e.paradigm = p
	e.state = interact.State{}
	if e.board != nil {
		e.board.Paradigm = p
	}
	return nil
}

// Resize records the container size. The orbital view keeps the orbit
// centered by shifting half the size change.
func (e *Engine) Resize(width, height float64) {
	orbital := e.views[document.ParadigmOrbital]
	orbital.PanBy((width-e.width)/2, (height-e.height)/2)
	e.width = width
	e.height = height
}

// PointerDown feeds a button press at screen (x, y).
func (e *Engine) PointerDown(x, y float64, button interact.Button, alt bool) {
	e.step(interact.PointerDown{
		X:      x,
		Y:      y,
		Button: button,
		Alt:    alt,
		Target: e.targetAt(x, y),
	})
}

// PointerMove feeds a pointer position.
func (e *Engine) PointerMove(x, y float64) {
	e.step(interact.PointerMove{X: x, Y: y})
}

// PointerUp feeds a button release.
func (e *Engine) PointerUp(x, y float64) {
	e.step(interact.PointerUp{X: x, Y: y})
}

// PointerLeave ends any gesture because the pointer left the container.
func (e *Engine) PointerLeave() {
	e.step(interact.PointerLeave{})
}

// Wheel zooms one tick at the pointer.
func (e *Engine) Wheel(x, y, deltaY float64) {
	e.step(interact.Wheel{X: x, Y: y, DeltaY: deltaY})
}

// DropPayload is the drag-and-drop data attached to a reference thumbnail.
type DropPayload struct {
	ReferenceID   string                 `json:"referenceId"`
	Thumbnail     string                 `json:"thumbnail"`
	InfluenceType document.InfluenceType `json:"influenceType"`
}

// Drop handles a reference dropped at screen (x, y). Payloads that fail to
// parse or carry no id are discarded.
func (e *Engine) Drop(x, y float64, payload string) {
	var p DropPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		slog.Debug("discard drop", "error", err)
		return
	}
	if p.ReferenceID == "" {
		slog.Debug("discard drop", "reason", "missing referenceId")
		return
	}

	toCenter := e.paradigm == document.ParadigmOrbital && e.orbitalCtl.InDropZone(x, y)
	if e.board != nil && !toCenter && e.board.Index(p.ReferenceID) < 0 {
		e.board.References = append(e.board.References, document.Reference{
			ID:            p.ReferenceID,
			Thumbnail:     p.Thumbnail,
			InfluenceType: p.InfluenceType,
			Strength:      influence.Derived(),
		})
	}

	e.step(interact.Drop{X: x, Y: y, ReferenceID: p.ReferenceID})
}

// ZoomIn is the toolbar zoom-in.
func (e *Engine) ZoomIn() {
	e.view().ZoomIn(e.width, e.height)
	e.viewChanged()
}

// ZoomOut is the toolbar zoom-out.
func (e *Engine) ZoomOut() {
	e.view().ZoomOut(e.width, e.height)
	e.viewChanged()
}

// ResetView restores the identity transform. The orbital view is then
// recentered in the container.
func (e *Engine) ResetView() {
	v := e.view()
	v.Reset()
	if e.paradigm == document.ParadigmOrbital {
		v.PanBy(e.width/2, e.height/2)
	}
	e.viewChanged()
}

// ToggleGrid flips grid snapping for subsequent canvas drags.
func (e *Engine) ToggleGrid() bool {
	e.grid.Toggle()
	return e.grid.Enabled
}

// MinimapClick recenters the active view on the world point under an
// overlay click.
func (e *Engine) MinimapClick(px, py float64) {
	e.spatial.Projector().Navigate(px, py, e.view(), e.width, e.height)
	e.viewChanged()
}

// AddReference appends a reference. In the orbital workspace an unplaced
// reference lands in the widest gap between existing nodes.
func (e *Engine) AddReference(ref document.Reference) error {
	if e.board == nil {
		return ErrNoBoard
	}
	if e.board.Index(ref.ID) >= 0 {
		return fmt.Errorf("add reference %s: already on board", ref.ID)
	}
	if ref.Strength.Source == "" {
		ref.Strength = influence.Derived()
	}

	if ref.Canvas != nil {
		e.canvas.Set(ref.ID, *ref.Canvas)
	}
	if ref.Orbital == nil {
		p := registry.PlaceOrbital(e.orbital, e.board.IDs(), ref.ID)
		ref.Orbital = &p
		// the others were pinned where they are shown
		for i := range e.board.References {
			other := &e.board.References[i]
			if other.Orbital == nil {
				if pos, ok := e.orbital.Lookup(other.ID); ok {
					other.Orbital = &pos
				}
			}
		}
	} else {
		e.orbital.Set(ref.ID, *ref.Orbital)
	}

	e.board.References = append(e.board.References, ref)
	return nil
}

// RemoveReference deletes a reference and its positions. Unknown ids are
// ignored.
func (e *Engine) RemoveReference(id string) {
	e.canvas.Remove(id)
	e.orbital.Remove(id)
	if e.board != nil {
		e.board.RemoveReference(id)
	}
	e.selection = slices.DeleteFunc(e.selection, func(s string) bool { return s == id })
	if e.state.Mode == interact.DraggingNode && e.state.Node.NodeID == id {
		e.state = interact.State{}
	}
}

// SetManualStrength pins a reference's strength, overriding its orbital
// distance.
func (e *Engine) SetManualStrength(id string, value int) error {
	ref, err := e.reference(id)
	if err != nil {
		return err
	}
	ref.Strength = influence.Manual(value)
	return nil
}

// ClearManualStrength returns a reference to position-derived strength.
func (e *Engine) ClearManualStrength(id string) error {
	ref, err := e.reference(id)
	if err != nil {
		return err
	}
	ref.Strength = influence.Derived()
	return nil
}

// SetSelection sets the selected reference IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

// --- internals ---

func (e *Engine) reference(id string) (*document.Reference, error) {
	if e.board == nil {
		return nil, ErrNoBoard
	}
	ref := e.board.Reference(id)
	if ref == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReference, id)
	}
	return ref, nil
}

func (e *Engine) view() *viewport.Transform {
	return e.views[e.paradigm]
}

func (e *Engine) controller() *interact.Controller {
	if e.paradigm == document.ParadigmOrbital {
		return e.orbitalCtl
	}
	return e.canvasCtl
}

func (e *Engine) step(ev interact.Event) {
	next, effects := e.controller().Step(e.state, ev)
	if _, ok := ev.(interact.PointerDown); ok && e.state.Active() {
		slog.Debug("ignore press during gesture", "mode", e.state.Mode.String())
	}
	e.state = next
	for _, eff := range effects {
		e.apply(eff)
	}
}

func (e *Engine) viewChanged() {
	e.apply(interact.ViewportChanged{Transform: e.view().Snapshot()})
}

// apply folds an effect into engine and board state, then queues it.
func (e *Engine) apply(eff interact.Effect) {
	switch ef := eff.(type) {
	case interact.NodeSelected:
		e.selection = []string{ef.ID}
	case interact.SelectionCleared:
		e.selection = nil
	case interact.NodeCommitted:
		e.storePosition(ef.ID, ef.World, ef.Polar)
	case interact.ReferencePlaced:
		e.storePosition(ef.ID, ef.World, ef.Polar)
	case interact.MainImageSet:
		if e.board != nil {
			id := ef.ReferenceID
			e.board.MainImage = &id
		}
	case interact.ViewportChanged:
		if e.board != nil {
			if e.board.Viewports == nil {
				e.board.Viewports = map[document.Paradigm]document.ViewportSettings{}
			}
			e.board.Viewports[e.paradigm] = document.FromTransform(ef.Transform)
		}
	}

	// StrengthChanged is forwarded as-is. Whether it is authoritative is
	// decided per reference by its Strength source, never overwritten here.
	e.pending = append(e.pending, eff)
	if e.OnEffect != nil {
		e.OnEffect(eff)
	}
}

func (e *Engine) storePosition(id string, world *geom.Point, polar *geom.Polar) {
	if e.board == nil {
		return
	}
	ref := e.board.Reference(id)
	if ref == nil {
		return
	}
	if world != nil {
		p := *world
		ref.Canvas = &p
	}
	if polar != nil {
		p := *polar
		ref.Orbital = &p
	}
}

// targetAt resolves what is under a screen point for a press.
func (e *Engine) targetAt(x, y float64) interact.Target {
	id := e.HitTest(x, y)
	if id == "" || e.board == nil {
		return interact.Target{}
	}
	return interact.Target{
		NodeID:  id,
		Ordinal: e.board.Index(id),
		Total:   len(e.board.References),
	}
}
