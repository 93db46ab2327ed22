package interact

import (
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/viewport"
)

// Button identifies the pointer button of a press.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Target is what lies under the pointer at press time. An empty NodeID is
// the bare workspace. Ordinal and Total locate the node among the visible
// nodes so its default position can be derived.
type Target struct {
	NodeID  string
	Ordinal int
	Total   int
}

// Event is one input to the controller. All coordinates are screen pixels
// relative to the workspace container.
type Event interface {
	event()
}

// PointerDown is a button press.
type PointerDown struct {
	X, Y   float64
	Button Button
	Alt    bool
	Target Target
}

// PointerMove is a pointer position update. It carries an absolute
// position, never a delta.
type PointerMove struct {
	X, Y float64
}

// PointerUp is a button release.
type PointerUp struct {
	X, Y float64
}

// PointerLeave fires when the pointer exits the container.
type PointerLeave struct{}

// Wheel is one scroll tick. Negative DeltaY zooms in.
type Wheel struct {
	X, Y   float64
	DeltaY float64
}

// Drop is a reference dragged in from outside the workspace and released.
type Drop struct {
	X, Y        float64
	ReferenceID string
}

func (PointerDown) event()  {}
func (PointerMove) event()  {}
func (PointerUp) event()    {}
func (PointerLeave) event() {}
func (Wheel) event()        {}
func (Drop) event()         {}

// Effect is an outcome of a transition, for the host to apply or forward.
type Effect interface {
	Kind() string
}

// NodeSelected reports that a node was grabbed or clicked.
type NodeSelected struct {
	ID string `json:"id"`
}

// SelectionCleared reports a press on empty workspace.
type SelectionCleared struct{}

// NodeMoved reports a position written during a drag. Exactly one of World
// and Polar is set, depending on the paradigm.
type NodeMoved struct {
	ID    string      `json:"id"`
	World *geom.Point `json:"world,omitempty"`
	Polar *geom.Polar `json:"polar,omitempty"`
}

// NodeCommitted reports the final position of a drag at release.
type NodeCommitted struct {
	ID    string      `json:"id"`
	World *geom.Point `json:"world,omitempty"`
	Polar *geom.Polar `json:"polar,omitempty"`
}

// StrengthChanged carries the strength derived from a node's new orbital
// distance.
type StrengthChanged struct {
	ID       string         `json:"id"`
	Strength int            `json:"strength"`
	Zone     influence.Zone `json:"zone"`
}

// ViewportChanged carries the transform after a pan or zoom.
type ViewportChanged struct {
	Transform viewport.Transform `json:"transform"`
}

// MainImageSet reports a drop onto the orbital center.
type MainImageSet struct {
	ReferenceID string `json:"referenceId"`
}

// ReferencePlaced reports a drop that positioned a reference node.
type ReferencePlaced struct {
	ID    string      `json:"id"`
	World *geom.Point `json:"world,omitempty"`
	Polar *geom.Polar `json:"polar,omitempty"`
}

func (NodeSelected) Kind() string     { return "node.selected" }
func (SelectionCleared) Kind() string { return "selection.cleared" }
func (NodeMoved) Kind() string        { return "node.moved" }
func (NodeCommitted) Kind() string    { return "node.committed" }
func (StrengthChanged) Kind() string  { return "strength.changed" }
func (ViewportChanged) Kind() string  { return "viewport.changed" }
func (MainImageSet) Kind() string     { return "main.set" }
func (ReferencePlaced) Kind() string  { return "reference.placed" }
