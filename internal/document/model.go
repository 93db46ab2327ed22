// Package document defines the board record shared by all five editing
// paradigms: a main image plus weighted reference images.
package document

import (
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/viewport"
)

type Paradigm string

const (
	ParadigmCanvas  Paradigm = "canvas"
	ParadigmOrbital Paradigm = "orbital"
	ParadigmGraph   Paradigm = "graph"
	ParadigmRecipe  Paradigm = "recipe"
	ParadigmLayers  Paradigm = "layers"
)

// Spatial reports whether the paradigm is driven by the spatial engine.
func (p Paradigm) Spatial() bool {
	return p == ParadigmCanvas || p == ParadigmOrbital
}

// Valid reports whether p is a known paradigm.
func (p Paradigm) Valid() bool {
	switch p {
	case ParadigmCanvas, ParadigmOrbital, ParadigmGraph, ParadigmRecipe, ParadigmLayers:
		return true
	}
	return false
}

type InfluenceType string

const (
	InfluenceStyle       InfluenceType = "style"
	InfluenceComposition InfluenceType = "composition"
	InfluenceColor       InfluenceType = "color"
	InfluenceSubject     InfluenceType = "subject"
)

type Board struct {
	ID         string                        `json:"id"`
	Name       string                        `json:"name"`
	Version    int                           `json:"version"`
	Paradigm   Paradigm                      `json:"paradigm"`
	MainImage  *string                       `json:"mainImage"`
	References []Reference                   `json:"references"`
	Viewports  map[Paradigm]ViewportSettings `json:"viewports,omitempty"`
	CreatedAt  string                        `json:"createdAt"`
	UpdatedAt  string                        `json:"updatedAt"`
}

type Reference struct {
	ID            string             `json:"id"`
	Thumbnail     string             `json:"thumbnail"`
	InfluenceType InfluenceType      `json:"influenceType"`
	Strength      influence.Strength `json:"strength"`

	// Stored positions. nil means the node has never been placed and the
	// default layout applies.
	Canvas  *geom.Point `json:"canvas,omitempty"`
	Orbital *geom.Polar `json:"orbital,omitempty"`
}

type ViewportSettings struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
}

// FromTransform captures the persisted part of a transform.
func FromTransform(t viewport.Transform) ViewportSettings {
	return ViewportSettings{OffsetX: t.OffsetX, OffsetY: t.OffsetY, Scale: t.Scale}
}

// Index returns the position of the reference with id, or -1.
func (b *Board) Index(id string) int {
	for i := range b.References {
		if b.References[i].ID == id {
			return i
		}
	}
	return -1
}

// Reference returns a pointer into References for id, or nil.
func (b *Board) Reference(id string) *Reference {
	if i := b.Index(id); i >= 0 {
		return &b.References[i]
	}
	return nil
}

// IDs returns reference ids in display order.
func (b *Board) IDs() []string {
	ids := make([]string, len(b.References))
	for i, r := range b.References {
		ids[i] = r.ID
	}
	return ids
}

// RemoveReference deletes a reference. Unknown ids are ignored. Removing the
// main image reference also clears the main image.
func (b *Board) RemoveReference(id string) bool {
	i := b.Index(id)
	if i < 0 {
		return false
	}
	b.References = append(b.References[:i], b.References[i+1:]...)
	if b.MainImage != nil && *b.MainImage == id {
		b.MainImage = nil
	}
	return true
}

// NewEmptyBoard creates an empty board for a new project
func NewEmptyBoard(boardID, name string) *Board {
	return &Board{
		ID:         boardID,
		Name:       name,
		Version:    1,
		Paradigm:   ParadigmCanvas,
		MainImage:  nil,
		References: []Reference{},
		Viewports:  map[Paradigm]ViewportSettings{},
	}
}
