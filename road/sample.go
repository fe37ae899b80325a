package road

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/roadgeom/curve"
	"github.com/npillmayer/roadgeom/elevation"
	"github.com/paulmach/orb"
)

// SampleCrossSection evaluates the road at offset s and returns one world
// point per lateral offset in ts. Positive offsets are left of the road.
// The returned curvature is the larger of the plan-view curvature and the
// elevation curvature, for clients which adapt their sampling density.
//
// s is clamped to [0, TotalLength].
func (g *Geometry) SampleCrossSection(s float64, ts []float64) ([]mgl64.Vec3, float64, float64, error) {
	sec, ls, err := g.locate(s)
	if err != nil {
		return nil, 0, 0, err
	}
	pos, h, k := sec.evaluate(ls)
	normal := g.world.TransformDir(roadgeom.Dir(h).Normal())
	pos = g.world.Transform(pos)
	h = roadgeom.NormalizeAngle(g.world.Angle() + h)
	z := sec.HeightAt(ls)
	points := make([]mgl64.Vec3, len(ts))
	for i, t := range ts {
		points[i] = roadgeom.Lift(pos+normal.Scaled(t), z)
	}
	curvature := math.Max(math.Abs(k), math.Abs(sec.Elevation.CurvatureAt(ls)))
	return points, h, curvature, nil
}

// ClosestPointOnReferenceLine projects a world point onto the reference
// line of the road. It returns the point on the reference line, the heading
// there, and the Frenet coordinates (s,t) of p. t is positive for points
// left of the road. Heights are ignored for the search.
//
// The search is a coarse scan over the whole road, refined by a fine scan
// around the coarse minimum.
func (g *Geometry) ClosestPointOnReferenceLine(p mgl64.Vec3) (mgl64.Vec3, float64, float64, float64, error) {
	if _, _, err := g.locate(0); err != nil {
		return mgl64.Vec3{}, 0, 0, 0, err
	}
	target := roadgeom.XY(p)
	dist := func(s float64) float64 {
		pos, _ := g.referencePoint(s)
		return (target - pos).Abs()
	}
	best := scan(dist, 0, g.total, g.opts.CoarseStep)
	best = scan(dist, math.Max(0, best-g.opts.FineWindow), math.Min(g.total, best+g.opts.FineWindow), g.opts.FineStep)
	sec, ls, _ := g.locate(best)
	pos, h := g.referencePoint(best)
	offset := target - pos
	t := offset.Abs()
	if roadgeom.Dir(h).Cross(offset) < 0 {
		t = -t
	}
	return roadgeom.Lift(pos, sec.HeightAt(ls)), h, best, t, nil
}

// scan returns the offset in [from, to] minimizing f, testing offsets at
// multiples of step and the upper bound.
func scan(f func(float64) float64, from, to, step float64) float64 {
	if !(step > 0) {
		step = to - from
	}
	best, dmin := from, f(from)
	for s := from + step; ; s += step {
		if s > to {
			s = to
		}
		if d := f(s); d < dmin {
			best, dmin = s, d
		}
		if s >= to {
			break
		}
	}
	return best
}

// referencePoint returns world position and heading at road offset s.
func (g *Geometry) referencePoint(s float64) (roadgeom.Pair, float64) {
	sec, ls, err := g.locate(s)
	if err != nil {
		return roadgeom.Origin, 0
	}
	pos, h, _ := sec.evaluate(ls)
	return g.world.Transform(pos), roadgeom.NormalizeAngle(g.world.Angle() + h)
}

// ReferenceLine samples the reference line at offsets of at most step,
// including both ends, in world coordinates. Previews and debug overlays
// draw it.
func (g *Geometry) ReferenceLine(step float64) orb.LineString {
	if _, _, err := g.locate(0); err != nil {
		return nil
	}
	n := 1
	if step > 0 {
		n = int(math.Ceil(g.total / step))
		if n < 1 {
			n = 1
		}
	}
	ls := make(orb.LineString, 0, n+1)
	for i := 0; i <= n; i++ {
		pos, _ := g.referencePoint(g.total * float64(i) / float64(n))
		ls = append(ls, orb.Point{pos.X(), pos.Y()})
	}
	return ls
}

// Record is a section prepared for export. Offsets are cumulative from the
// start of the road, pose and heading are in world coordinates, and the
// elevation pieces carry absolute heights.
type Record struct {
	S         float64
	Pos       roadgeom.Pair
	Heading   float64
	Length    float64
	Kind      curve.Kind
	Curve     curve.Curve // in section coordinates
	Elevation elevation.Profile
	Valid     bool
}

// Records lists the solved sections of the road for export.
func (g *Geometry) Records() []Record {
	recs := make([]Record, 0, len(g.sections))
	acc := 0.0
	for _, sec := range g.sections {
		if sec.Curve == nil {
			continue
		}
		profile := sec.Elevation.Shift(acc)
		for i := range profile {
			profile[i].A += sec.Z0
		}
		recs = append(recs, Record{
			S:         acc,
			Pos:       g.world.Transform(sec.PointStart),
			Heading:   roadgeom.NormalizeAngle(g.world.Angle() + sec.HeadingStart),
			Length:    sec.Len,
			Kind:      sec.Curve.Kind(),
			Curve:     curve.Copy(sec.Curve),
			Elevation: profile,
			Valid:     sec.Valid,
		})
		acc += sec.Len
	}
	return recs
}
