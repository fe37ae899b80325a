/*
Package elevation fits piecewise cubic height profiles to road sections.

A profile is a sequence of pieces, each a cubic

	h(ds) = a + b·ds + c·ds² + d·ds³ ,   ds = s - s_piece

valid from its offset s_piece up to the offset of the next piece. Profiles
are fitted per geometry section in section-local arc length, starting at 0.
Pieces of one profile are continuous in height at their shared offsets.

Fit chooses between a flat profile, a straight ramp, cubic Hermite splines
which continue the slope of neighbouring sections, and a vertical curve of
parabola–line–parabola type, depending on which ends of a section are
connected.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package elevation

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'elevation'
func tracer() tracing.Trace {
	return tracing.Select("elevation")
}

// ErrInvalidRequest indicates a fitting request with a negative or undefined
// length or with undefined heights or slopes.
var ErrInvalidRequest = errors.New("invalid elevation request")

// Piece is a cubic polynomial for heights, starting at section offset S.
type Piece struct {
	S, A, B, C, D float64
}

// Height evaluates the piece at distance ds from its start.
func (p Piece) Height(ds float64) float64 {
	return p.A + ds*(p.B+ds*(p.C+ds*p.D))
}

// Slope is the derivative dh/ds at distance ds from the piece's start.
func (p Piece) Slope(ds float64) float64 {
	return p.B + ds*(2*p.C+3*ds*p.D)
}

// Curvature is the second derivative of the height at distance ds.
func (p Piece) Curvature(ds float64) float64 {
	return 2*p.C + 6*ds*p.D
}

func (p Piece) String() string {
	return fmt.Sprintf("[%.4g: %.6g %+.6g %+.6g %+.6g]", p.S, p.A, p.B, p.C, p.D)
}

// Profile is an ordered list of pieces, the first one starting at 0.
type Profile []Piece

// piece returns the piece covering s, together with the distance of s from
// the start of this piece. s is clamped to the start of the first piece.
func (pr Profile) piece(s float64) (Piece, float64) {
	if len(pr) == 0 {
		return Piece{}, 0
	}
	i := len(pr) - 1
	for i > 0 && s < pr[i].S {
		i--
	}
	ds := s - pr[i].S
	if ds < 0 {
		ds = 0
	}
	return pr[i], ds
}

// Height returns the height at section offset s.
func (pr Profile) Height(s float64) float64 {
	p, ds := pr.piece(s)
	return p.Height(ds)
}

// SlopeAt returns the analytic slope at section offset s, taken from the
// piece covering s.
func (pr Profile) SlopeAt(s float64) float64 {
	p, ds := pr.piece(s)
	return p.Slope(ds)
}

// CurvatureAt returns the second derivative of the height at offset s.
func (pr Profile) CurvatureAt(s float64) float64 {
	p, ds := pr.piece(s)
	return p.Curvature(ds)
}

// Shift returns a copy of the profile with all offsets moved by ds.
// Exporters use it to convert section offsets to road offsets.
func (pr Profile) Shift(ds float64) Profile {
	shifted := make(Profile, len(pr))
	for i, p := range pr {
		p.S += ds
		shifted[i] = p
	}
	return shifted
}

// Clone returns a copy of the profile.
func (pr Profile) Clone() Profile {
	return pr.Shift(0)
}

// Neighbor is a read-only view of the profile of an adjacent section.
type Neighbor interface {
	SlopeAt(s float64) float64
	Length() float64
}

// ExitSlope is the slope of a neighbouring section at its end.
func ExitSlope(n Neighbor) float64 {
	return n.SlopeAt(n.Length())
}

// Hermite returns the cubic with height h0 and slope m0 at 0, and height h1
// and slope m1 at length L. For L = 0 the constant h0 is returned.
func Hermite(h0, m0, h1, m1, L float64) Piece {
	if roadgeom.Is0(L) {
		return Piece{A: h0}
	}
	dh := (h1 - h0) / L
	return Piece{
		A: h0,
		B: m0,
		C: (3*dh - 2*m0 - m1) / L,
		D: (m0 + m1 - 2*dh) / (L * L),
	}
}

// Tuning holds the empirical constants for vertical curves. The length of
// a parabola blending slope m into a ramp of grade g is
//
//	max(|m|/SlopeDivisor, |g|) · v² / SpeedDivisor
//
// for design speed v.
type Tuning struct {
	SpeedDivisor float64
	SlopeDivisor float64
}

// DefaultTuning returns the constants in use by road editors so far.
func DefaultTuning() Tuning {
	return Tuning{SpeedDivisor: 120, SlopeDivisor: 10}
}

func (t Tuning) parabolaLength(m, grade, designSpeed float64) float64 {
	if t.SpeedDivisor == 0 || t.SlopeDivisor == 0 {
		return 0
	}
	return math.Max(math.Abs(m)/t.SlopeDivisor, math.Abs(grade)) * designSpeed * designSpeed / t.SpeedDivisor
}
