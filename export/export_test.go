package export

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/roadgeom/curve"
	"github.com/npillmayer/roadgeom/junction"
	"github.com/npillmayer/roadgeom/lanes"
	"github.com/npillmayer/roadgeom/road"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// straight builds a road of two straight sections from x=0 to x=200,
// climbing to z=10 on the first section.
func straight(t *testing.T) *road.Geometry {
	t.Helper()
	g := road.New(road.DefaultOptions())
	g.AddSection()
	require.NoError(t, g.Update(road.Request{PointStart: roadgeom.P3(0, 0, 0), PointEnd: roadgeom.P3(100, 0, 10)}, road.SolverLine))
	g.AddSection()
	require.NoError(t, g.Update(road.Request{PointEnd: roadgeom.P3(200, 0, 10)}, road.SolverLine))
	return g
}

// bend builds a road turning left by 90° with a clothoid triple.
func bend(t *testing.T) *road.Geometry {
	t.Helper()
	g := road.New(road.DefaultOptions())
	g.AddSection()
	require.NoError(t, g.Update(road.Request{
		PointStart: roadgeom.P3(200, 0, 10),
		PointEnd:   roadgeom.P3(260, 60, 10),
		HeadingEnd: math.Pi / 2,
	}, road.SolverClothoidTriple))
	return g
}

func star(t *testing.T, x float64, n int) *junction.Junction {
	t.Helper()
	j := junction.New(junction.DefaultOptions())
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		_, err := j.AddJoint(junction.Joint{
			ID:          i,
			Position:    roadgeom.Lift(roadgeom.P(x, 500)+roadgeom.Dir(theta).Scaled(20), 0),
			Heading:     theta + math.Pi,
			WidthsLeft:  []float64{3.5},
			WidthsRight: []float64{3.5},
		})
		require.NoError(t, err)
	}
	return j
}

func hasWarning(doc *Document, fragment string) bool {
	for _, w := range doc.Warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestExportNetwork(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	r2 := bend(t)
	n := Network{
		Roads: []Road{
			{ID: "r1", Geometry: straight(t), Lanes: lanes.NewTable(1, 1, 3.5, "driving")},
			{ID: "r2", Geometry: r2, Lanes: lanes.NewTable(1, 2, 3.5, "driving")},
		},
		Junctions: []Junction{{ID: "j1", Junction: star(t, 0, 3)}},
		Links: []RoadLink{{
			RoadIn: "r1", ContactIn: roadgeom.ContactEnd,
			RoadOut: "r2", ContactOut: roadgeom.ContactStart,
		}},
	}
	doc, err := Export(n)
	require.NoError(t, err)
	assert.Empty(t, doc.Warnings)
	require.Len(t, doc.Roads, 2)
	//
	r := doc.Roads[0]
	assert.InDelta(t, 200.0, r.Length, 1e-9)
	require.Len(t, r.Geometry, 2)
	assert.Equal(t, 0.0, r.Geometry[0].S)
	assert.InDelta(t, 100.0, r.Geometry[1].S, 1e-9)
	assert.InDelta(t, 100.0, r.Geometry[1].Pos.X(), 1e-9)
	require.Len(t, r.Elevation, 2)
	assert.InDelta(t, 100.0, r.Elevation[1].S, 1e-9)
	assert.InDelta(t, 10.0, r.Elevation[1].A, 1e-9)
	assert.InDelta(t, 0.1, r.Elevation[1].B, 1e-9)
	assert.Len(t, r.Reference, 201)
	//
	b := doc.Roads[1]
	require.Len(t, b.Geometry, 3, "triples are exported as three spirals")
	for i, rec := range b.Geometry {
		assert.Equal(t, curve.KindClothoid, rec.Kind)
		assert.InDelta(t, b.Length*float64(i)/3, rec.S, 1e-9)
		pts, h, _, err := r2.SampleCrossSection(rec.S, []float64{0})
		require.NoError(t, err)
		assert.InDelta(t, pts[0].X(), rec.Pos.X(), 1e-9)
		assert.InDelta(t, pts[0].Y(), rec.Pos.Y(), 1e-9)
		assert.InDelta(t, 0.0, roadgeom.NormalizeAngle(h-rec.Heading), 1e-9)
	}
	assert.InDelta(t, b.Geometry[0].CurvatureEnd, b.Geometry[1].CurvatureStart, 1e-12)
	//
	require.Len(t, doc.Junctions, 1)
	assert.True(t, doc.Junctions[0].Valid)
	assert.Greater(t, doc.Junctions[0].Area, 0.0)
	//
	require.Len(t, doc.LaneLinks, 1)
	assert.Equal(t, []int{1, -1}, doc.LaneLinks[0].IDsIn)
	assert.Equal(t, []int{1, -1}, doc.LaneLinks[0].IDsOut)
}

func TestExportIsSnapshot(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := straight(t)
	n := Network{Roads: []Road{{ID: "r1", Geometry: g}}}
	doc, err := Export(n)
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.Section(1).Elevation[0].S, "export must not shift live profiles")
	require.NoError(t, g.Update(road.Request{PointEnd: roadgeom.P3(300, 0, 10)}, road.SolverLine))
	assert.InDelta(t, 200.0, doc.Roads[0].Length, 1e-9)
}

func TestExportWarnings(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	broken := straight(t)
	err := broken.Update(road.Request{PointEnd: roadgeom.P3(100, 0, 10)}, road.SolverLine)
	require.Error(t, err)
	badLanes := lanes.NewTable(0, 1, 3.5, "driving")
	badLanes.Right[0].WidthEnd = -1
	n := Network{
		Roads: []Road{
			{ID: "ok", Geometry: straight(t), Lanes: badLanes},
			{ID: "broken", Geometry: broken},
			{ID: "empty"},
			{ID: "next", Geometry: bend(t), Lanes: lanes.NewTable(0, 1, 3.5, "driving")},
		},
		Junctions: []Junction{
			{ID: "lonely", Junction: star(t, 0, 1)},
			{ID: "a", Junction: star(t, 1000, 3)},
			{ID: "b", Junction: star(t, 1010, 3)},
		},
		Links: []RoadLink{
			{RoadIn: "ok", RoadOut: "broken"},
			{RoadIn: "ok", ContactIn: roadgeom.ContactEnd, RoadOut: "next", ContactOut: roadgeom.ContactStart},
		},
	}
	doc, err := Export(n)
	require.NoError(t, err)
	assert.True(t, hasWarning(doc, `road "broken": section 1 is invalid`), "%v", doc.Warnings)
	assert.True(t, hasWarning(doc, `road "empty" has no geometry`), "%v", doc.Warnings)
	assert.True(t, hasWarning(doc, `junction "lonely" has no closed boundary`), "%v", doc.Warnings)
	assert.True(t, hasWarning(doc, `junctions "a" and "b" overlap`), "%v", doc.Warnings)
	assert.True(t, hasWarning(doc, `road "broken" not exported`), "%v", doc.Warnings)
	assert.True(t, hasWarning(doc, `lane link "ok" → "next" refused`), "%v", doc.Warnings)
	assert.Len(t, doc.Roads, 2)
	assert.Len(t, doc.Junctions, 3)
	assert.Empty(t, doc.LaneLinks)
	assert.False(t, doc.Junctions[0].Valid)
}

func TestExportDuplicateIDs(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := Export(Network{Roads: []Road{{ID: "x"}, {ID: "x"}}})
	assert.True(t, errors.Is(err, ErrDuplicateID))
	_, err = Export(Network{Junctions: []Junction{{ID: "j"}, {ID: "j"}}})
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestFeatureCollection(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	doc, err := Export(Network{
		Roads: []Road{{ID: "r1", Geometry: straight(t)}},
		Junctions: []Junction{
			{ID: "j1", Junction: star(t, 0, 3)},
			{ID: "j2", Junction: star(t, 300, 1)},
		},
	})
	require.NoError(t, err)
	fc := doc.FeatureCollection()
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "r1", fc.Features[0].ID)
	assert.Equal(t, "road", fc.Features[0].Properties["kind"])
	_, ok := fc.Features[0].Geometry.(orb.LineString)
	assert.True(t, ok)
	assert.Equal(t, "j1", fc.Features[1].ID)
	poly, ok := fc.Features[1].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.True(t, poly[0].Closed())
	_, err = fc.MarshalJSON()
	assert.NoError(t, err)
}
