package curve

import (
	"math"

	"github.com/npillmayer/roadgeom"
	"gonum.org/v1/gonum/integrate"
)

// Clothoid is an Euler spiral: its curvature changes linearly from K0 at
// the start to K1 at arc length Len.
type Clothoid struct {
	From Pose
	K0   float64
	K1   float64
	Len  float64
}

// SolveClothoid creates a clothoid starting at pose from, with curvature
// changing from k0 to k1 over length.
func SolveClothoid(from Pose, k0, k1, length float64) (*Clothoid, error) {
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, errorf(ErrDegenerateGeometry, "clothoid of length %g", length)
	}
	if err := checkFinite(from.Heading); err != nil {
		return nil, err
	}
	if math.IsNaN(k0) || math.IsNaN(k1) {
		return nil, errorf(ErrDegenerateGeometry, "clothoid with undefined curvature")
	}
	return &Clothoid{From: from, K0: k0, K1: k1, Len: length}, nil
}

// Kind is KindClothoid.
func (c *Clothoid) Kind() Kind { return KindClothoid }

// Length returns the arc length of the spiral.
func (c *Clothoid) Length() float64 { return c.Len }

// Start returns the start pose.
func (c *Clothoid) Start() Pose { return c.From }

// Sharpness is the rate of change of curvature, dk/ds.
func (c *Clothoid) Sharpness() float64 {
	return (c.K1 - c.K0) / c.Len
}

func (c *Clothoid) theta(s float64) float64 {
	return c.From.Heading + c.K0*s + 0.5*c.Sharpness()*s*s
}

// Evaluate returns the state at arc length s. The position is found by
// integrating the unit tangent with Simpson's rule.
func (c *Clothoid) Evaluate(s float64) State {
	d := simpson(s, func(u float64) roadgeom.Pair {
		return roadgeom.Dir(c.theta(u))
	})
	return State{
		Pos:       c.From.Pos + d,
		Heading:   c.theta(s),
		Curvature: c.K0 + c.Sharpness()*s,
	}
}

// simpson integrates a vector valued function over [0,s] by the composite
// Simpson rule. The interval count is a function of s only.
func simpson(s float64, f func(float64) roadgeom.Pair) roadgeom.Pair {
	if s <= 0 {
		return roadgeom.Origin
	}
	if s < 1e-12 {
		return f(0).Scaled(s)
	}
	u, fx, fy := samples(s, intervals(s), func(u float64) (float64, float64) {
		p := f(u)
		return p.X(), p.Y()
	})
	return roadgeom.P(integrate.Simpsons(u, fx), integrate.Simpsons(u, fy))
}

// samples evaluates f at n+1 equidistant locations in [0,s].
func samples(s float64, n int, f func(float64) (float64, float64)) ([]float64, []float64, []float64) {
	u := make([]float64, n+1)
	fx, fy := make([]float64, n+1), make([]float64, n+1)
	for i := range u {
		u[i] = s * float64(i) / float64(n)
		fx[i], fy[i] = f(u[i])
	}
	return u, fx, fy
}

// intervals returns an even number of Simpson intervals for a range of
// length s, with step width at most SimpsonStep.
func intervals(s float64) int {
	n := int(math.Ceil(s / SimpsonStep))
	if n < minIntervals {
		n = minIntervals
	}
	if n%2 == 1 {
		n++
	}
	return n
}

// FitClothoid finds a single clothoid starting at p0 with heading h0 and
// ending at p1 with heading h1 (G1 Hermite interpolation). The curvatures at
// both ends are free.
func FitClothoid(p0 roadgeom.Pair, h0 float64, p1 roadgeom.Pair, h1 float64) (*Clothoid, error) {
	if err := checkPoints(p0, p1); err != nil {
		return nil, err
	}
	if err := checkFinite(h0); err != nil {
		return nil, err
	}
	if err := checkFinite(h1); err != nil {
		return nil, err
	}
	chord := p1 - p0
	d := chord.Abs()
	phi0 := roadgeom.NormalizeAngle(h0 - chord.Angle())
	phi1 := roadgeom.NormalizeAngle(h1 - chord.Angle())
	delta := roadgeom.NormalizeAngle(h1 - h0)
	start := Pose{Pos: p0, Heading: h0}
	// the curvature of a cubic Hermite segment is a good first guess
	k0, k1 := hermiteCurvatures(d, phi0, phi1)
	build := func(x []float64) (*Clothoid, error) {
		L := x[2]
		if !(L > 0) || L > 10*MaxLength {
			return nil, errorf(ErrUnsolvableGeometry, "clothoid length %g out of range", L)
		}
		return &Clothoid{From: start, K0: x[0], K1: x[1], Len: L}, nil
	}
	res := func(x []float64) ([]float64, error) {
		c, err := build(x)
		if err != nil {
			return nil, err
		}
		end := End(c)
		r := end.Pos - p1
		turn := 0.5 * (c.K0 + c.K1) * c.Len
		return []float64{r.X(), r.Y(), turn - delta}, nil
	}
	x, err := newton(res, []float64{k0, k1, d})
	if err != nil {
		return nil, errorf(ErrUnsolvableGeometry, "no clothoid %s@%.4f → %s@%.4f: %v", p0, h0, p1, h1, err)
	}
	c, err := build(x)
	if err != nil {
		return nil, err
	}
	if c.Len > MaxLength {
		return nil, errorf(ErrUnsolvableGeometry, "clothoid length %g exceeds %g", c.Len, MaxLength)
	}
	tracer().Debugf("fitted %s", AsString(c))
	return c, nil
}

// hermiteCurvatures returns the end curvatures of the cubic y(x) on [0,d]
// with y(0) = y(d) = 0, y'(0) = tan(phi0) ≈ phi0 and y'(d) ≈ phi1.
func hermiteCurvatures(d, phi0, phi1 float64) (float64, float64) {
	return -(4*phi0 + 2*phi1) / d, (2*phi0 + 4*phi1) / d
}
