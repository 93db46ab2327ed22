package document

import (
	"time"

	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/typeid"
)

// NewSampleBoard returns a board with four references: two placed on the
// canvas, one placed on the orbit, one with a manual strength override.
func NewSampleBoard(boardID string) *Board {
	now := time.Now().UTC().Format(time.RFC3339)

	mainID := typeid.NewReferenceID()
	styleID := typeid.NewReferenceID()
	colorID := typeid.NewReferenceID()
	subjectID := typeid.NewReferenceID()

	return &Board{
		ID:        boardID,
		Name:      "Untitled",
		Version:   1,
		Paradigm:  ParadigmCanvas,
		MainImage: &mainID,
		References: []Reference{
			{
				ID:            mainID,
				Thumbnail:     "/thumbnails/main.png",
				InfluenceType: InfluenceComposition,
				Strength:      influence.Derived(),
				Canvas:        &geom.Point{X: -240, Y: -60},
			},
			{
				ID:            styleID,
				Thumbnail:     "/thumbnails/style.png",
				InfluenceType: InfluenceStyle,
				Strength:      influence.Derived(),
				Canvas:        &geom.Point{X: 120, Y: -160},
				Orbital:       &geom.Polar{Angle: 45, Distance: 0.2},
			},
			{
				ID:            colorID,
				Thumbnail:     "/thumbnails/color.png",
				InfluenceType: InfluenceColor,
				Strength:      influence.Manual(35),
			},
			{
				ID:            subjectID,
				Thumbnail:     "/thumbnails/subject.png",
				InfluenceType: InfluenceSubject,
				Strength:      influence.Derived(),
			},
		},
		Viewports: map[Paradigm]ViewportSettings{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
