/*
Package roadgeom implements the plan-view primitives of a road network
editor: points, headings, affine frames and road-end contact points.

The geometry core lives in sub-packages:

	curve      plan-view curves (lines, arcs, spirals, parametric cubics)
	elevation  piecewise cubic height profiles
	road       road reference lines built from geometry sections
	junction   closed junction boundaries synthesized from road ends
	lanes      lane-to-lane topology between road ends
	export     snapshot pass producing records for a document writer

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package roadgeom

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'roadgeom'
func tracer() tracing.Trace {
	return tracing.Select("roadgeom")
}

// === Numeric Data Type =====================================================

// Deg2Rad is a constant for converting from DEG to RAD or vice versa
var Deg2Rad float64 = math.Pi / 180

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// NormalizeAngle reduces an angle to fit into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// PositiveAngle reduces an angle to fit into [0, 2π).
func PositiveAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// === Pair Data Type ========================================================

// Pair is a 2D point or vector in the plan view.
type Pair complex128

// Origin represents the frequently used constant (0,0).
var Origin = P(0, 0)

// P is a quick notation for contructing a pair from floats.
func P(x, y float64) Pair {
	return Pair(complex(x, y))
}

// Dir returns the unit vector pointing into direction heading (radians,
// counter-clockwise from the x-axis).
func Dir(heading float64) Pair {
	return P(math.Cos(heading), math.Sin(heading))
}

// Pretty Stringer for simple pairs.
func (p Pair) String() string {
	return fmt.Sprintf("(%g,%g)", real(p), imag(p))
}

// C returns a Pair as a complex number.
func (p Pair) C() complex128 {
	return complex128(p)
}

// X is the x-part of a pair.
func (p Pair) X() float64 {
	return real(p)
}

// Y is the y-part of a pair.
func (p Pair) Y() float64 {
	return imag(p)
}

// IsFinite is a predicate: are both parts of p finite numbers?
func (p Pair) IsFinite() bool {
	return !cmplx.IsNaN(p.C()) && !cmplx.IsInf(p.C())
}

// Equal compares two pairs, with tolerance Epsilon.
func (p Pair) Equal(p2 Pair) bool {
	return Is0(p.X()-p2.X()) && Is0(p.Y()-p2.Y())
}

// Abs is the euclidean length of p.
func (p Pair) Abs() float64 {
	return cmplx.Abs(p.C())
}

// Angle is the direction of p in radians.
func (p Pair) Angle() float64 {
	return cmplx.Phase(p.C())
}

// Dot is the scalar product of two vectors.
func (p Pair) Dot(q Pair) float64 {
	return p.X()*q.X() + p.Y()*q.Y()
}

// Cross is the z-component of the cross product p × q. It is positive if q
// points to the left of p.
func (p Pair) Cross(q Pair) float64 {
	return p.X()*q.Y() - p.Y()*q.X()
}

// Scaled returns a new pair scaled by factor a.
func (p Pair) Scaled(a float64) Pair {
	return P(p.X()*a, p.Y()*a)
}

// Unit returns p scaled to length 1. The null vector is returned unchanged.
func (p Pair) Unit() Pair {
	l := p.Abs()
	if Is0(l) {
		return p
	}
	return p.Scaled(1 / l)
}

// Normal returns p rotated counter-clockwise by 90°.
func (p Pair) Normal() Pair {
	return P(-p.Y(), p.X())
}

// Rotated returns a new pair rotated around origin by theta (counterclockwise).
func (p Pair) Rotated(theta float64) Pair {
	return Rotation(theta).Transform(p)
}

// === 3D points =============================================================

// P3 is a quick notation for constructing a 3D point.
func P3(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}

// XY projects a 3D point onto the plan view.
func XY(v mgl64.Vec3) Pair {
	return P(v.X(), v.Y())
}

// Lift places a plan-view point at height z.
func Lift(p Pair, z float64) mgl64.Vec3 {
	return mgl64.Vec3{p.X(), p.Y(), z}
}

// === Affine Transformations ================================================

// AT is an affine transform, a matrix type used for transforming vectors.
type AT []float64 // a 3x3 matrix, flattened by rows

// Internal constructor. Clients implicitely use this as a starting point for
// transform combinations.
func newAT() AT {
	return make([]float64, 9)
}

func (m AT) get(row, col int) float64 {
	return m[row*3+col]
}

func (m AT) set(row, col int, value float64) {
	m[row*3+col] = value
}

func (m AT) row(row int) []float64 {
	return m[row*3 : (row+1)*3]
}

func (m AT) col(col int) []float64 {
	return []float64{m[col], m[3+col], m[6+col]}
}

// Identity transform. Will transform a point onto itself.
func Identity() AT {
	m := newAT()
	m.set(0, 0, 1.0)
	m.set(1, 1, 1.0)
	m.set(2, 2, 1.0)
	return m
}

// Translation transform. Translate a point by (dx,dy).
func Translation(p Pair) AT {
	m := Identity()
	m.set(0, 2, p.X())
	m.set(1, 2, p.Y())
	return m
}

// Rotation transform. Rotate a point counter-clockwise around the origin.
// Argument is in radians.
func Rotation(theta float64) AT {
	m := newAT()
	sin, cos := math.Sincos(theta)
	m.set(0, 0, cos)
	m.set(0, 1, -sin)
	m.set(1, 0, sin)
	m.set(1, 1, cos)
	m.set(2, 2, 1.0)
	return m
}

// Frame is the transform from a local frame to its parent, where the local
// frame has its origin at origin and its x-axis pointing into direction
// heading.
func Frame(origin Pair, heading float64) AT {
	return Rotation(heading).Combine(Translation(origin))
}

// Debug Stringer for an affine transform.
func (m AT) String() string {
	return fmt.Sprintf("[%g,%g,%g|%g,%g,%g|%g,%g,%g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
}

func dotProd(vec1, vec2 []float64) float64 {
	return vec1[0]*vec2[0] + vec1[1]*vec2[1] + vec1[2]*vec2[2]
}

// Combine 2 affine transformation to a new one: first m, then n. Returns a new
// transformation without changing the argument(s).
func (m AT) Combine(n AT) AT {
	o := newAT()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			o.set(row, col, dotProd(n.row(row), m.col(col)))
		}
	}
	return o
}

// Inverse returns the inverse of an affine transform. Singular transforms
// (projections) are traced and return the identity.
func (m AT) Inverse() AT {
	a, b, c := m.get(0, 0), m.get(0, 1), m.get(0, 2)
	d, e, f := m.get(1, 0), m.get(1, 1), m.get(1, 2)
	det := a*e - b*d
	if Is0(det) {
		tracer().Errorf("inverse of singular transform %s", m)
		return Identity()
	}
	o := Identity()
	o.set(0, 0, e/det)
	o.set(0, 1, -b/det)
	o.set(1, 0, -d/det)
	o.set(1, 1, a/det)
	o.set(0, 2, (b*f-c*e)/det)
	o.set(1, 2, (c*d-a*f)/det)
	return o
}

// Angle returns the rotation part of a rigid transform.
func (m AT) Angle() float64 {
	return math.Atan2(m.get(1, 0), m.get(0, 0))
}

// Transform a 2D-point. The argument is unchanged and a new pair is returned.
func (m AT) Transform(p Pair) Pair {
	v := []float64{p.X(), p.Y(), 1.0}
	return P(dotProd(m.row(0), v), dotProd(m.row(1), v))
}

// TransformDir transforms a direction vector, i.e. ignores translation.
func (m AT) TransformDir(p Pair) Pair {
	v := []float64{p.X(), p.Y(), 0}
	return P(dotProd(m.row(0), v), dotProd(m.row(1), v))
}

// === Road ends =============================================================

// ContactPoint tells which end of a road meets a junction or another road.
type ContactPoint int8

// Road ends.
const (
	ContactStart ContactPoint = iota
	ContactEnd
)

func (cp ContactPoint) String() string {
	switch cp {
	case ContactStart:
		return "start"
	case ContactEnd:
		return "end"
	}
	return fmt.Sprintf("ContactPoint(%d)", int8(cp))
}
