package curve

import (
	"github.com/npillmayer/roadgeom"
)

// ClothoidTriple is a chain of three clothoids with common length, matching
// curvature at the inner joints.
type ClothoidTriple struct {
	Parts [3]Clothoid
}

// SolveClothoidTriple finds three chained clothoids starting at p0 with
// heading h0 and curvature k0 and ending at p1 with heading h1 and
// curvature k1. The result is G2-continuous at both ends and at the inner
// joints.
//
// The heading turn from h0 to h1 is taken to be the one in (-π, π].
// ErrUnsolvableGeometry is returned if the iteration does not converge or
// the total length exceeds MaxLength.
func SolveClothoidTriple(p0 roadgeom.Pair, h0, k0 float64, p1 roadgeom.Pair, h1, k1 float64) (*ClothoidTriple, error) {
	if err := checkPoints(p0, p1); err != nil {
		return nil, err
	}
	for _, h := range []float64{h0, h1, k0, k1} {
		if err := checkFinite(h); err != nil {
			return nil, err
		}
	}
	chord := p1 - p0
	d := chord.Abs()
	delta := roadgeom.NormalizeAngle(h1 - h0)
	start := Pose{Pos: p0, Heading: h0}
	// x = (L, kA-kB); kA+kB is fixed by the heading condition
	//   L/6 * (k0 + 2kA + 2kB + k1) = delta
	build := func(x []float64) (*ClothoidTriple, error) {
		L, diff := x[0], x[1]
		if !(L > 0) || L > 10*MaxLength {
			return nil, errorf(ErrUnsolvableGeometry, "clothoid triple length %g out of range", L)
		}
		sum := (6*delta/L - k0 - k1) / 2
		kA, kB := (sum+diff)/2, (sum-diff)/2
		return chainTriple(start, L, k0, kA, kB, k1), nil
	}
	res := func(x []float64) ([]float64, error) {
		t, err := build(x)
		if err != nil {
			return nil, err
		}
		r := End(t).Pos - p1
		return []float64{r.X(), r.Y()}, nil
	}
	phi0 := roadgeom.NormalizeAngle(h0 - chord.Angle())
	phi1 := roadgeom.NormalizeAngle(h1 - chord.Angle())
	g0, g1 := hermiteCurvatures(d, phi0, phi1)
	guess := []float64{d, -(g1 - g0) / 3}
	x, err := newton(res, guess)
	if err != nil {
		tracer().Debugf("clothoid triple %s@%.4f → %s@%.4f failed: %v", p0, h0, p1, h1, err)
		return nil, errorf(ErrUnsolvableGeometry, "no clothoid triple %s → %s: %v", p0, p1, err)
	}
	t, err := build(x)
	if err != nil {
		return nil, err
	}
	if l := t.Length(); l > MaxLength {
		return nil, errorf(ErrUnsolvableGeometry, "clothoid triple length %g exceeds %g", l, MaxLength)
	}
	tracer().Debugf("solved %s", AsString(t))
	return t, nil
}

func chainTriple(start Pose, L, k0, kA, kB, k1 float64) *ClothoidTriple {
	t := &ClothoidTriple{}
	l := L / 3
	ks := [4]float64{k0, kA, kB, k1}
	from := start
	for i := 0; i < 3; i++ {
		t.Parts[i] = Clothoid{From: from, K0: ks[i], K1: ks[i+1], Len: l}
		from = End(&t.Parts[i]).Pose()
	}
	return t
}

// Kind is KindClothoidTriple.
func (t *ClothoidTriple) Kind() Kind { return KindClothoidTriple }

// Length returns the total length of the three spirals.
func (t *ClothoidTriple) Length() float64 {
	return t.Parts[0].Len + t.Parts[1].Len + t.Parts[2].Len
}

// Start returns the start pose.
func (t *ClothoidTriple) Start() Pose { return t.Parts[0].From }

// Evaluate returns the state at arc length s.
func (t *ClothoidTriple) Evaluate(s float64) State {
	for i := 0; i < 2; i++ {
		if s <= t.Parts[i].Len {
			return t.Parts[i].Evaluate(s)
		}
		s -= t.Parts[i].Len
	}
	if s > t.Parts[2].Len {
		s = t.Parts[2].Len
	}
	return t.Parts[2].Evaluate(s)
}
