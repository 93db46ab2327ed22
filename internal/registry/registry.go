// Package registry stores where each reference node sits in a workspace and
// supplies a deterministic layout for nodes that have never been placed.
package registry

import (
	"slices"
	"sort"

	"github.com/refboard/refboard/internal/geom"
)

// Default layout parameters.
const (
	DefaultCanvasRadius    = 200.0
	DefaultOrbitalDistance = 0.5
)

// Fallback computes the default position of the node at ordinal among total
// visible nodes. It must be a pure function of its arguments.
type Fallback[P any] func(ordinal, total int) P

// Registry maps node ids to positions of type P. Entries are created
// lazily; lookups for unknown ids fall through to the fallback layout.
type Registry[P any] struct {
	entries  map[string]P
	fallback Fallback[P]
}

// New creates an empty registry with the given default layout.
func New[P any](fallback Fallback[P]) *Registry[P] {
	return &Registry[P]{
		entries:  make(map[string]P),
		fallback: fallback,
	}
}

// Get returns the stored position for id, or the default for its ordinal.
func (r *Registry[P]) Get(id string, ordinal, total int) P {
	if p, ok := r.entries[id]; ok {
		return p
	}
	return r.Default(ordinal, total)
}

// Default returns the fallback position without consulting stored entries.
func (r *Registry[P]) Default(ordinal, total int) P {
	if total <= 0 {
		total = 1
	}
	return r.fallback(ordinal, total)
}

// Lookup returns the stored position for id, if any.
func (r *Registry[P]) Lookup(id string) (P, bool) {
	p, ok := r.entries[id]
	return p, ok
}

// Set stores (or replaces) the position for id.
func (r *Registry[P]) Set(id string, p P) {
	r.entries[id] = p
}

// Remove deletes the entry for id. Removing an unknown id is a no-op.
func (r *Registry[P]) Remove(id string) {
	delete(r.entries, id)
}

// Has reports whether id has a stored position.
func (r *Registry[P]) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of stored entries.
func (r *Registry[P]) Len() int {
	return len(r.entries)
}

// IDs returns the stored ids in sorted order.
func (r *Registry[P]) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops every stored entry.
func (r *Registry[P]) Clear() {
	clear(r.entries)
}

// Resolve returns the effective position of every id in display order.
func (r *Registry[P]) Resolve(order []string) map[string]P {
	out := make(map[string]P, len(order))
	for i, id := range order {
		out[id] = r.Get(id, i, len(order))
	}
	return out
}

// Canvas is the world-space registry of the free canvas paradigm.
type Canvas = Registry[geom.Point]

// Orbital is the polar registry of the orbital paradigm.
type Orbital = Registry[geom.Polar]

// NewCanvas returns a canvas registry whose default layout spreads nodes
// evenly on a circle of the given radius around the world origin.
func NewCanvas(radius float64) *Canvas {
	if radius <= 0 {
		radius = DefaultCanvasRadius
	}
	return New(func(ordinal, total int) geom.Point {
		return geom.PolarToCartesian(circleAngle(ordinal, total), radius)
	})
}

// NewOrbital returns an orbital registry whose default layout spreads nodes
// evenly around the mid ring.
func NewOrbital() *Orbital {
	return New(func(ordinal, total int) geom.Polar {
		return geom.Polar{Angle: circleAngle(ordinal, total), Distance: DefaultOrbitalDistance}
	})
}

func circleAngle(ordinal, total int) float64 {
	return geom.NormalizeAngle(float64(ordinal) * 360 / float64(total))
}

// LargestGapAngle returns the midpoint of the widest circular gap between
// the given angles, wrapping from the last angle back to the first. With no
// angles it returns 0. With a single angle the whole circle is the gap, so
// the result is the opposite side.
func LargestGapAngle(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}

	sorted := make([]float64, len(angles))
	for i, a := range angles {
		sorted[i] = geom.NormalizeAngle(a)
	}
	sort.Float64s(sorted)

	bestStart := sorted[len(sorted)-1]
	bestGap := sorted[0] + 360 - bestStart
	for i := 0; i+1 < len(sorted); i++ {
		gap := sorted[i+1] - sorted[i]
		if gap > bestGap {
			bestGap = gap
			bestStart = sorted[i]
		}
	}

	return geom.NormalizeAngle(bestStart + bestGap/2)
}

// PlaceOrbital stores a new node at the largest gap among the nodes in
// order, taken where they are currently shown, and returns the chosen
// position. Nodes of order still on the default layout are stored at their
// shown positions so the new node does not reshuffle them.
func PlaceOrbital(r *Orbital, order []string, id string) geom.Polar {
	others := slices.DeleteFunc(slices.Clone(order), func(o string) bool { return o == id })

	angles := make([]float64, 0, len(others))
	for otherID, p := range r.Resolve(others) {
		r.Set(otherID, p)
		angles = append(angles, p.Angle)
	}

	p := geom.Polar{Angle: LargestGapAngle(angles), Distance: DefaultOrbitalDistance}
	r.Set(id, p)
	return p
}
