package curve

import (
	"math"

	"github.com/npillmayer/roadgeom"
)

// Arc is a curve of constant, non-zero curvature K. K is positive for arcs
// turning left.
type Arc struct {
	From Pose
	K    float64
	Len  float64
}

// SolveArc finds the arc starting at p0 with heading h0 and ending at p1.
//
// The center of the arc lies on the normal to the start heading at p0, at
// equal distance from p0 and p1. If p1 lies straight ahead of or behind p0,
// there is no such center and ErrDegenerateGeometry is returned.
func SolveArc(p0 roadgeom.Pair, h0 float64, p1 roadgeom.Pair) (*Arc, error) {
	if err := checkPoints(p0, p1); err != nil {
		return nil, err
	}
	if err := checkFinite(h0); err != nil {
		return nil, err
	}
	chord := p1 - p0
	n := roadgeom.Dir(h0).Normal() // normal at start
	if math.Abs(n.Dot(chord.Unit())) <= 1e-12 {
		return nil, errorf(ErrDegenerateGeometry, "arc %s → %s is straight", p0, p1)
	}
	// λ is the signed radius (positive: center to the left)
	lambda := chord.Dot(chord) / (2 * n.Dot(chord))
	center := p0 + n.Scaled(lambda)
	k := 1 / lambda
	a0 := (p0 - center).Angle()
	a1 := (p1 - center).Angle()
	var sweep float64
	if k > 0 {
		sweep = roadgeom.PositiveAngle(a1 - a0)
	} else {
		sweep = roadgeom.PositiveAngle(a0 - a1)
	}
	length := sweep * math.Abs(lambda)
	tracer().Debugf("arc from %s to %s: center %s, k=%g, l=%g", p0, p1, center, k, length)
	return &Arc{
		From: Pose{Pos: p0, Heading: h0},
		K:    k,
		Len:  length,
	}, nil
}

// Kind is KindArc.
func (a *Arc) Kind() Kind { return KindArc }

// Length returns the arc length.
func (a *Arc) Length() float64 { return a.Len }

// Start returns the start pose.
func (a *Arc) Start() Pose { return a.From }

// Evaluate returns the state at arc length s.
func (a *Arc) Evaluate(s float64) State {
	h0 := a.From.Heading
	h := h0 + a.K*s
	sin0, cos0 := math.Sincos(h0)
	sin1, cos1 := math.Sincos(h)
	d := roadgeom.P((sin1-sin0)/a.K, (cos0-cos1)/a.K)
	return State{
		Pos:       a.From.Pos + d,
		Heading:   h,
		Curvature: a.K,
	}
}
