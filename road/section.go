package road

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/roadgeom/curve"
	"github.com/npillmayer/roadgeom/elevation"
)

// Section is one piece of a road. Curve and Elevation are given in
// section-local coordinates, the boundary values in road coordinates.
//
// A section without a curve has never been solved successfully. If Valid
// is false, the last update failed and the section still carries the
// geometry of the most recent successful update.
type Section struct {
	Curve          curve.Curve
	Len            float64
	PointStart     roadgeom.Pair
	PointEnd       roadgeom.Pair
	HeadingStart   float64
	HeadingEnd     float64
	CurvatureStart float64
	CurvatureEnd   float64
	Elevation      elevation.Profile
	Transform      roadgeom.AT // section to road
	Z0             float64     // height at the start
	Valid          bool
}

// Length is the length of the section.
func (sec *Section) Length() float64 {
	return sec.Len
}

// SlopeAt returns the slope of the height profile at section offset s.
func (sec *Section) SlopeAt(s float64) float64 {
	return sec.Elevation.SlopeAt(s)
}

// HeightAt returns the absolute height at section offset s.
func (sec *Section) HeightAt(s float64) float64 {
	return sec.Z0 + sec.Elevation.Height(s)
}

// Clone returns a deep copy of a section.
func (sec *Section) Clone() *Section {
	c := *sec
	if sec.Curve != nil {
		c.Curve = curve.Copy(sec.Curve)
	}
	if sec.Elevation != nil {
		c.Elevation = sec.Elevation.Clone()
	}
	c.Transform = copyAT(sec.Transform)
	return &c
}

// evaluate returns position and heading in road coordinates, and the plan
// curvature, at section offset s.
func (sec *Section) evaluate(s float64) (roadgeom.Pair, float64, float64) {
	st := sec.Curve.Evaluate(curve.Clamp(sec.Curve, s))
	return sec.Transform.Transform(st.Pos), sec.Transform.Angle() + st.Heading, st.Curvature
}

func (sec *Section) String() string {
	return fmt.Sprintf("section{%s z0=%.4g valid=%v}", curve.AsString(sec.Curve), sec.Z0, sec.Valid)
}

// Update recomputes the last section from a request. Update is idempotent:
// repeating a call with identical arguments leaves the section unchanged.
//
// For the first section, the start constraints are taken from the request
// and fix the road's world transform on the first call. Every other section
// starts at the end of its predecessor and continues its heading, curvature
// and slope; the start constraints of the request are ignored.
//
// If no curve can be solved, the section is marked invalid, keeps its
// previous curve and profile, and the error is returned.
func (g *Geometry) Update(req Request, solver Solver) error {
	if len(g.sections) == 0 {
		tracer().Errorf("road: update without sections")
		return ErrEmptyGeometry
	}
	if g.world == nil {
		g.world = roadgeom.Frame(roadgeom.XY(req.PointStart), req.HeadingStart)
		tracer().Infof("road: world transform fixed at %v@%.4f", req.PointStart, req.HeadingStart)
	}
	i := len(g.sections) - 1
	sec := g.sections[i]
	toRoad := g.world.Inverse()
	rot := g.world.Angle()
	var start roadgeom.Pair
	var heading, k0, z0, slope float64
	var continuousStart bool
	if i == 0 {
		start = toRoad.Transform(roadgeom.XY(req.PointStart))
		heading, k0 = req.HeadingStart-rot, req.CurvatureStart
		z0, slope = req.PointStart.Z(), req.SlopeStart
		continuousStart = req.ConnectedStart
	} else {
		prev := g.sections[i-1]
		if prev.Curve == nil {
			err := fmt.Errorf("%w: predecessor of section #%d not solved", curve.ErrDegenerateGeometry, i)
			return g.refuse(sec, err)
		}
		start, heading, k0 = prev.PointEnd, prev.HeadingEnd, prev.CurvatureEnd
		z0, slope = prev.HeightAt(prev.Len), elevation.ExitSlope(prev)
		continuousStart = true
	}
	end := toRoad.Transform(roadgeom.XY(req.PointEnd))
	frame := roadgeom.Frame(start, heading)
	localEnd := frame.Inverse().Transform(end)
	localHeading := roadgeom.NormalizeAngle(req.HeadingEnd - rot - heading)
	c, err := solve(solver, localEnd, localHeading, k0, req.CurvatureEnd)
	if err != nil {
		return g.refuse(sec, err)
	}
	profile, err := elevation.Fit(elevation.Request{
		H0:              0,
		H1:              req.PointEnd.Z() - z0,
		Length:          c.Length(),
		M0:              slope,
		M1:              req.SlopeEnd,
		ContinuousStart: continuousStart,
		ContinuousEnd:   req.ConnectedEnd,
		DesignSpeed:     req.DesignSpeed,
	}, g.opts.Tuning)
	if err != nil {
		return g.refuse(sec, err)
	}
	first, last := c.Evaluate(0), curve.End(c)
	*sec = Section{
		Curve:          c,
		Len:            c.Length(),
		PointStart:     frame.Transform(first.Pos),
		PointEnd:       frame.Transform(last.Pos),
		HeadingStart:   heading + first.Heading,
		HeadingEnd:     heading + last.Heading,
		CurvatureStart: first.Curvature,
		CurvatureEnd:   last.Curvature,
		Elevation:      profile,
		Transform:      frame,
		Z0:             z0,
		Valid:          true,
	}
	g.recalcLength()
	tracer().Debugf("road: updated section #%d: %s", i, sec)
	return nil
}

func (g *Geometry) refuse(sec *Section, err error) error {
	sec.Valid = false
	g.recalcLength()
	tracer().Errorf("road: section update refused: %v", err)
	return err
}

// solve dispatches to the curve solvers. All curves start at the origin of
// the section frame, heading along the x-axis.
func solve(solver Solver, end roadgeom.Pair, heading, k0, k1 float64) (curve.Curve, error) {
	switch solver {
	case SolverLine:
		return curve.SolveLine(roadgeom.Origin, end)
	case SolverArc:
		return curve.SolveArc(roadgeom.Origin, 0, end)
	case SolverClothoid:
		return curve.FitClothoid(roadgeom.Origin, 0, end, heading)
	case SolverClothoidTriple:
		return curve.SolveClothoidTriple(roadgeom.Origin, 0, k0, end, heading, k1)
	case SolverParamCubic:
		return curve.FitParamCubic(roadgeom.Origin, 0, end, heading)
	}
	return nil, fmt.Errorf("%w: unknown solver %s", curve.ErrDegenerateGeometry, solver)
}

// Contact describes a road end in world coordinates. Heading points in
// the direction of the road, slope is measured in the same direction.
type Contact struct {
	Position  mgl64.Vec3
	Heading   float64
	Curvature float64
	Slope     float64
}

// Contact returns the state of the road at one of its ends.
func (g *Geometry) Contact(cp roadgeom.ContactPoint) (Contact, error) {
	s := 0.0
	if cp == roadgeom.ContactEnd {
		s = g.total
	}
	sec, ls, err := g.locate(s)
	if err != nil {
		return Contact{}, err
	}
	pos, h, k := sec.evaluate(ls)
	return Contact{
		Position:  roadgeom.Lift(g.world.Transform(pos), sec.HeightAt(ls)),
		Heading:   roadgeom.NormalizeAngle(g.world.Angle() + h),
		Curvature: k,
		Slope:     sec.SlopeAt(ls),
	}, nil
}

// locate finds the solved section covering road offset s, together with the
// section-local offset. s is clamped to [0, TotalLength].
func (g *Geometry) locate(s float64) (*Section, float64, error) {
	s = math.Max(0, math.Min(s, g.total))
	var found *Section
	acc, ls := 0.0, 0.0
	for _, sec := range g.sections {
		if sec.Curve == nil {
			continue
		}
		found, ls = sec, s-acc
		if s <= acc+sec.Len {
			break
		}
		acc += sec.Len
	}
	if found == nil {
		return nil, 0, ErrEmptyGeometry
	}
	return found, math.Max(0, math.Min(ls, found.Len)), nil
}
