package curve

import (
	"math"

	"github.com/npillmayer/roadgeom"
	"gonum.org/v1/gonum/integrate"
)

// ParamCubic is a pair of cubic polynomials
//
//	u(p) = U[0] + U[1]·p + U[2]·p² + U[3]·p³
//	v(p) = V[0] + V[1]·p + V[2]·p² + V[3]·p³
//
// in the frame of its start pose, with p ∈ [0,1] normalized by length:
// p = s/Len. Solved curves have U[0] = V[0] = 0.
type ParamCubic struct {
	From Pose
	U    [4]float64
	V    [4]float64
	Len  float64
}

// SolveParamCubic creates a parametric cubic from its coefficients.
func SolveParamCubic(from Pose, u, v [4]float64, length float64) (*ParamCubic, error) {
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, errorf(ErrDegenerateGeometry, "parametric cubic of length %g", length)
	}
	if err := checkFinite(from.Heading); err != nil {
		return nil, err
	}
	for i := 0; i < 4; i++ {
		if err := checkFinite(u[i] + v[i]); err != nil {
			return nil, err
		}
	}
	if u[1] == 0 && u[2] == 0 && u[3] == 0 && v[1] == 0 && v[2] == 0 && v[3] == 0 {
		return nil, errorf(ErrDegenerateGeometry, "parametric cubic collapses to a point")
	}
	return &ParamCubic{From: from, U: u, V: v, Len: length}, nil
}

// FitParamCubic finds the parametric cubic from p0 with heading h0 to p1
// with heading h1, with tangent lengths equal to the chord length. The
// length of the curve is computed numerically.
func FitParamCubic(p0 roadgeom.Pair, h0 float64, p1 roadgeom.Pair, h1 float64) (*ParamCubic, error) {
	if err := checkPoints(p0, p1); err != nil {
		return nil, err
	}
	if err := checkFinite(h0); err != nil {
		return nil, err
	}
	if err := checkFinite(h1); err != nil {
		return nil, err
	}
	end := (p1 - p0).Rotated(-h0) // end point in the local frame
	d := end.Abs()
	du1, dv1 := d*math.Cos(h1-h0), d*math.Sin(h1-h0)
	u := [4]float64{0, d, 3*end.X() - 2*d - du1, d + du1 - 2*end.X()}
	v := [4]float64{0, 0, 3*end.Y() - dv1, dv1 - 2*end.Y()}
	pc := &ParamCubic{From: Pose{Pos: p0, Heading: h0}, U: u, V: v}
	pc.Len = pc.arcLength()
	tracer().Debugf("fitted %s", AsString(pc))
	return pc, nil
}

// arcLength integrates the speed |(u'(p), v'(p))| over p ∈ [0,1].
func (pc *ParamCubic) arcLength() float64 {
	chord := math.Hypot(poly(pc.U, 1)-pc.U[0], poly(pc.V, 1)-pc.V[0])
	p, speed, _ := samples(1, intervals(chord), func(p float64) (float64, float64) {
		return math.Hypot(dpoly(pc.U, p), dpoly(pc.V, p)), 0
	})
	return integrate.Simpsons(p, speed)
}

// Kind is KindParamCubic.
func (pc *ParamCubic) Kind() Kind { return KindParamCubic }

// Length returns the length used for normalizing p.
func (pc *ParamCubic) Length() float64 { return pc.Len }

// Start returns the start pose.
func (pc *ParamCubic) Start() Pose { return pc.From }

// Evaluate returns the state at arc length s, with p = s/Len.
func (pc *ParamCubic) Evaluate(s float64) State {
	p := s / pc.Len
	local := roadgeom.P(poly(pc.U, p), poly(pc.V, p))
	du, dv := dpoly(pc.U, p), dpoly(pc.V, p)
	ddu, ddv := ddpoly(pc.U, p), ddpoly(pc.V, p)
	k := 0.0
	if sp := math.Hypot(du, dv); sp > 0 {
		// curvature does not depend on the parameterization
		k = (du*ddv - dv*ddu) / (sp * sp * sp)
	}
	return State{
		Pos:       pc.From.Pos + local.Rotated(pc.From.Heading),
		Heading:   pc.From.Heading + math.Atan2(dv, du),
		Curvature: k,
	}
}

func poly(c [4]float64, p float64) float64 {
	return c[0] + p*(c[1]+p*(c[2]+p*c[3]))
}

func dpoly(c [4]float64, p float64) float64 {
	return c[1] + p*(2*c[2]+3*p*c[3])
}

func ddpoly(c [4]float64, p float64) float64 {
	return 2*c[2] + 6*p*c[3]
}
