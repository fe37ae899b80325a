// Package curve solves and evaluates plan-view road curves.
/*

Roads are described by a reference line, which is a chain of curves of
one of five kinds:

	Line            constant heading
	Arc             constant curvature
	Clothoid        curvature varying linearly with arc length (Euler spiral)
	ClothoidTriple  three chained clothoids, G2-continuous at both ends
	ParamCubic      parametric cubic polynomials u(p), v(p), p ∈ [0,1]

All curves are parameterized by arc length s and are evaluated with

	state := c.Evaluate(s)   // position, heading and curvature at s

Every curve carries the pose (position and heading) it starts with. A curve
solved in section-local coordinates (start at the origin, heading 0) will
evaluate in local coordinates, a curve solved in world coordinates will
evaluate in world coordinates.

Solving a curve is a boundary value problem. Solvers return
ErrDegenerateGeometry for inputs without a meaningful solution (coincident
points, an arc between points on a straight line) and ErrUnsolvableGeometry
if an iterative solver does not converge or produces an unreasonably long
curve (see MaxLength).

Clothoid positions are computed by integrating (cos θ(s), sin θ(s)) with
Simpson's rule. The number of intervals depends on s only (see SimpsonStep),
which makes results reproducible.

Clothoid triples are found by a damped Newton iteration. The three spirals
have equal length L/3. The heading condition at the end fixes the sum of the
two inner curvatures, leaving the total length L and the difference of the
inner curvatures as unknowns for the two position conditions. This is close
to the approach of

	E. Bertolazzi, M. Frego: On the G2 Hermite Interpolation Problem
	with clothoids. Journal of Computational and Applied Mathematics, 2018.

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package curve

import (
	"fmt"

	"github.com/npillmayer/roadgeom"
)

// AsString returns a curve as a (debugging) string, e.g.
//
//	clothoid (0,0)@0.0000 k=0.0000..0.0100 l=50.0000
func AsString(c Curve) string {
	if c == nil {
		return "<no curve>"
	}
	start := c.Start()
	s := fmt.Sprintf("%s %s@%.4f", c.Kind(), ptstring(start.Pos), start.Heading)
	switch cc := c.(type) {
	case *Arc:
		s += fmt.Sprintf(" k=%.4f", cc.K)
	case *Clothoid:
		s += fmt.Sprintf(" k=%.4f..%.4f", cc.K0, cc.K1)
	case *ClothoidTriple:
		s += fmt.Sprintf(" k=%.4f..%.4f..%.4f..%.4f",
			cc.Parts[0].K0, cc.Parts[1].K0, cc.Parts[2].K0, cc.Parts[2].K1)
	}
	return s + fmt.Sprintf(" l=%.4f", c.Length())
}

func ptstring(p roadgeom.Pair) string {
	return fmt.Sprintf("(%.4g,%.4g)", p.X(), p.Y())
}
