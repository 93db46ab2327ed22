package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refboard/refboard/internal/config"
	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/geom"
	"github.com/refboard/refboard/internal/influence"
	"github.com/refboard/refboard/internal/interact"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(config.DefaultSpatial())
	e.Resize(800, 600)
	e.SetBoard(document.NewEmptyBoard("board_test", "Test"))
	return e
}

func kinds(effects []interact.Effect) []string {
	out := make([]string, len(effects))
	for i, eff := range effects {
		out[i] = eff.Kind()
	}
	return out
}

func TestCanvasDragCommitsPosition(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))

	e.PointerDown(10, 10, interact.ButtonLeft, false)
	assert.Equal(t, interact.DraggingNode, e.Mode())

	e.PointerMove(50, 70)
	e.PointerUp(50, 70)

	assert.Equal(t, interact.Idle, e.Mode())
	assert.Equal(t, []string{"a"}, e.Selection())
	ref := e.Board().Reference("a")
	require.NotNil(t, ref.Canvas)
	assert.Equal(t, geom.Point{X: 40, Y: 60}, *ref.Canvas)
	assert.Equal(t, []string{"node.selected", "node.moved", "node.committed"}, kinds(e.DrainEffects()))
	assert.Empty(t, e.DrainEffects())
}

func TestCanvasDragSnapsToGrid(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))
	assert.True(t, e.ToggleGrid())

	e.PointerDown(10, 10, interact.ButtonLeft, false)
	e.PointerMove(43, 67)
	e.PointerUp(43, 67)

	assert.Equal(t, geom.Point{X: 40, Y: 60}, *e.Board().Reference("a").Canvas)
}

func TestClickWithoutMoveSelects(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))

	e.PointerDown(10, 10, interact.ButtonLeft, false)
	e.PointerUp(10, 10)

	assert.Equal(t, []string{"a"}, e.Selection())
	assert.Equal(t, geom.Point{}, *e.Board().Reference("a").Canvas)
	assert.Equal(t, []string{"node.selected", "node.committed"}, kinds(e.DrainEffects()))
}

func TestClickOnEmptySpaceClearsSelection(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))
	e.SetSelection([]string{"a"})

	e.PointerDown(500, 500, interact.ButtonLeft, false)

	assert.Empty(t, e.Selection())
	assert.Equal(t, interact.Idle, e.Mode())
}

func TestMiddleButtonPans(t *testing.T) {
	e := newTestEngine(t)

	e.PointerDown(100, 100, interact.ButtonMiddle, false)
	e.PointerMove(150, 130)
	e.PointerUp(150, 130)

	v := e.view()
	assert.Equal(t, 50.0, v.OffsetX)
	assert.Equal(t, 30.0, v.OffsetY)
	assert.Equal(t, document.ViewportSettings{OffsetX: 50, OffsetY: 30, Scale: 1},
		e.Board().Viewports[document.ParadigmCanvas])
}

func TestHitTestTopmostWins(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "under", Canvas: &geom.Point{X: 0, Y: 0}}))
	require.NoError(t, e.AddReference(document.Reference{ID: "over", Canvas: &geom.Point{X: 60, Y: 60}}))

	assert.Equal(t, "over", e.HitTest(100, 100))
	assert.Equal(t, "under", e.HitTest(10, 10))
	assert.Equal(t, "", e.HitTest(400, 400))
}

func TestOrbitalDropAtCenterSetsMainImage(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetParadigm(document.ParadigmOrbital))

	e.Drop(410, 300, `{"referenceId":"r1"}`)

	require.NotNil(t, e.Board().MainImage)
	assert.Equal(t, "r1", *e.Board().MainImage)
	assert.Empty(t, e.Board().References)
	assert.Equal(t, []string{"main.set"}, kinds(e.DrainEffects()))
}

func TestOrbitalDropOnRingPlacesReference(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetParadigm(document.ParadigmOrbital))

	e.Drop(550, 300, `{"referenceId":"r1","influenceType":"style"}`)

	ref := e.Board().Reference("r1")
	require.NotNil(t, ref)
	assert.Equal(t, document.InfluenceStyle, ref.InfluenceType)
	require.NotNil(t, ref.Orbital)
	assert.InDelta(t, 0, ref.Orbital.Angle, 1e-9)
	assert.InDelta(t, 0.5, ref.Orbital.Distance, 1e-9)

	effects := e.DrainEffects()
	require.Len(t, effects, 2)
	sc, ok := effects[1].(interact.StrengthChanged)
	require.True(t, ok)
	assert.Equal(t, 50, sc.Strength)
	assert.Equal(t, influence.ZoneMedium, sc.Zone)
}

func TestMalformedDropIsDiscarded(t *testing.T) {
	e := newTestEngine(t)

	e.Drop(100, 100, "not json")
	e.Drop(100, 100, `{"thumbnail":"x.png"}`)

	assert.Empty(t, e.Board().References)
	assert.Empty(t, e.DrainEffects())
}

func TestManualStrengthSurvivesOrbitalDrag(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetParadigm(document.ParadigmOrbital))
	require.NoError(t, e.AddReference(document.Reference{ID: "m", Orbital: &geom.Polar{Angle: 0, Distance: 0.5}}))
	require.NoError(t, e.SetManualStrength("m", 90))

	e.PointerDown(550, 300, interact.ButtonLeft, false)
	require.Equal(t, interact.DraggingNode, e.Mode())
	e.PointerMove(460, 300)
	e.PointerUp(460, 300)

	ref := e.Board().Reference("m")
	assert.InDelta(t, 0.2, ref.Orbital.Distance, 1e-9)
	assert.Equal(t, influence.Manual(90), ref.Strength)

	nodes := e.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, 90, nodes[0].Strength)
	assert.Equal(t, influence.SourceManual, nodes[0].Source)

	require.NoError(t, e.ClearManualStrength("m"))
	assert.Equal(t, 80, e.Nodes()[0].Strength)
}

func TestStrengthCommandsRejectUnknownReference(t *testing.T) {
	e := newTestEngine(t)
	assert.ErrorIs(t, e.SetManualStrength("missing", 10), ErrUnknownReference)
	assert.ErrorIs(t, e.ClearManualStrength("missing"), ErrUnknownReference)
}

func TestSetParadigmRejectsNonSpatial(t *testing.T) {
	e := newTestEngine(t)
	assert.ErrorIs(t, e.SetParadigm(document.ParadigmGraph), ErrNotSpatial)
	assert.Equal(t, document.ParadigmCanvas, e.Paradigm())
}

func TestMinimapClickCentersView(t *testing.T) {
	e := newTestEngine(t)

	e.MinimapClick(75, 50)

	v := e.view()
	assert.InDelta(t, 400, v.OffsetX, 1e-9)
	assert.InDelta(t, 300, v.OffsetY, 1e-9)
	assert.Equal(t, []string{"viewport.changed"}, kinds(e.DrainEffects()))
}

func TestResizeKeepsOrbitCentered(t *testing.T) {
	e := NewEngine(config.DefaultSpatial())
	e.Resize(800, 600)
	e.Resize(1000, 800)

	orbital := e.views[document.ParadigmOrbital]
	assert.Equal(t, 500.0, orbital.OffsetX)
	assert.Equal(t, 400.0, orbital.OffsetY)
	assert.Equal(t, 0.0, e.views[document.ParadigmCanvas].OffsetX)
}

func TestAddReferencePlacesInLargestGap(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Orbital: &geom.Polar{Angle: 0, Distance: 0.3}}))
	require.NoError(t, e.AddReference(document.Reference{ID: "b", Orbital: &geom.Polar{Angle: 90, Distance: 0.3}}))
	require.NoError(t, e.AddReference(document.Reference{ID: "c"}))

	ref := e.Board().Reference("c")
	require.NotNil(t, ref.Orbital)
	assert.Equal(t, geom.Polar{Angle: 225, Distance: 0.5}, *ref.Orbital)
	assert.Equal(t, influence.Derived(), ref.Strength)

	assert.Error(t, e.AddReference(document.Reference{ID: "a"}))
}

func TestAddReferenceAvoidsUnplacedNodes(t *testing.T) {
	e := newTestEngine(t)
	b := document.NewEmptyBoard("board_test", "Test")
	b.References = []document.Reference{
		{ID: "a", Strength: influence.Derived()},
		{ID: "b", Strength: influence.Derived()},
		{ID: "c", Strength: influence.Derived()},
	}
	e.SetBoard(b)
	require.NoError(t, e.SetParadigm(document.ParadigmOrbital))

	require.NoError(t, e.AddReference(document.Reference{ID: "d"}))

	angles := map[string]float64{}
	for _, n := range e.Nodes() {
		require.NotNil(t, n.Polar)
		angles[n.ID] = n.Polar.Angle
	}
	assert.InDelta(t, 0.0, angles["a"], 1e-9)
	assert.InDelta(t, 120.0, angles["b"], 1e-9)
	assert.InDelta(t, 240.0, angles["c"], 1e-9)
	assert.InDelta(t, 300.0, angles["d"], 1e-9)

	stored := e.Board().Reference("b").Orbital
	require.NotNil(t, stored)
	assert.InDelta(t, 120.0, stored.Angle, 1e-9)
}

func TestRemoveReferenceEndsDrag(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))

	e.PointerDown(10, 10, interact.ButtonLeft, false)
	e.RemoveReference("a")

	assert.Equal(t, interact.Idle, e.Mode())
	assert.Empty(t, e.Selection())
	assert.Nil(t, e.Board().Reference("a"))
	e.RemoveReference("a")
}

func TestUpdateBoardKeepsViewAndSelection(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))
	require.NoError(t, e.AddReference(document.Reference{ID: "b", Canvas: &geom.Point{X: 200, Y: 0}}))
	e.SetSelection([]string{"a", "b"})
	e.view().PanBy(10, 20)

	next := document.NewEmptyBoard("board_test", "Test")
	next.References = []document.Reference{{ID: "b", Canvas: &geom.Point{X: 300, Y: 0}}}
	data, err := json.Marshal(next)
	require.NoError(t, err)

	require.NoError(t, e.UpdateBoard(string(data)))

	assert.Equal(t, []string{"b"}, e.Selection())
	assert.Equal(t, 10.0, e.view().OffsetX)
	assert.Equal(t, "b", e.HitTest(320, 30))
}

func TestRenderJSON(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))

	var frame Frame
	require.NoError(t, json.Unmarshal([]byte(e.Render()), &frame))

	assert.Equal(t, document.ParadigmCanvas, frame.Paradigm)
	assert.Equal(t, "idle", frame.Mode)
	assert.Equal(t, geom.Matrix2D{1, 0, 0, 1, 0, 0}, frame.Transform)
	require.Len(t, frame.Nodes, 1)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 120, Height: 120}, frame.Nodes[0].Screen)
	assert.Equal(t, influence.ZoneMedium, frame.Nodes[0].Zone)
}

func TestZoneFollowsDistance(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "near", Orbital: &geom.Polar{Angle: 0, Distance: 0.334}}))
	require.NoError(t, e.AddReference(document.Reference{ID: "far", Orbital: &geom.Polar{Angle: 180, Distance: 0.664}}))
	require.NoError(t, e.AddReference(document.Reference{ID: "pinned", Strength: influence.Manual(80), Orbital: &geom.Polar{Angle: 90, Distance: 0.9}}))
	require.NoError(t, e.SetParadigm(document.ParadigmOrbital))

	nodes := map[string]NodeView{}
	for _, n := range e.Nodes() {
		nodes[n.ID] = n
	}

	assert.Equal(t, 67, nodes["near"].Strength)
	assert.Equal(t, influence.ZoneMedium, nodes["near"].Zone)
	assert.Equal(t, 34, nodes["far"].Strength)
	assert.Equal(t, influence.ZoneLow, nodes["far"].Zone)
	assert.Equal(t, 80, nodes["pinned"].Strength)
	assert.Equal(t, influence.ZoneHigh, nodes["pinned"].Zone)
}

func TestDrainEffectsJSON(t *testing.T) {
	e := newTestEngine(t)
	e.ZoomIn()

	var envs []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(e.DrainEffectsJSON()), &envs))
	require.Len(t, envs, 1)
	assert.Equal(t, "viewport.changed", envs[0].Type)
	assert.Equal(t, "[]", e.DrainEffectsJSON())
}

func TestMinimapState(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddReference(document.Reference{ID: "a", Canvas: &geom.Point{X: 0, Y: 0}}))

	mm := e.MinimapState()
	assert.Equal(t, 150.0, mm.Width)
	assert.InDelta(t, 75, mm.Nodes["a"].X, 1e-9)
	assert.InDelta(t, 50, mm.Nodes["a"].Y, 1e-9)
	assert.InDelta(t, 120, mm.Viewport.Width, 1e-9)
	assert.InDelta(t, 60, mm.Viewport.Height, 1e-9)
}

func TestSampleBoardRanking(t *testing.T) {
	e := NewEngine(config.DefaultSpatial())
	e.LoadSampleBoard("board_sample")

	ranked := e.Ranking()
	require.Len(t, ranked, 4)
	// the style reference sits at distance 0.2
	assert.Equal(t, 80, ranked[0].Strength)
	assert.Equal(t, influence.ZoneHigh, ranked[0].Zone)
}
