package curve

import (
	"math"

	"github.com/npillmayer/roadgeom"
)

// Line is a straight curve.
type Line struct {
	From Pose
	Len  float64
}

// SolveLine connects two points with a straight line. The heading of the
// line is the direction of the chord.
func SolveLine(p0, p1 roadgeom.Pair) (*Line, error) {
	if err := checkPoints(p0, p1); err != nil {
		return nil, err
	}
	chord := p1 - p0
	return &Line{
		From: Pose{Pos: p0, Heading: chord.Angle()},
		Len:  chord.Abs(),
	}, nil
}

// Kind is KindLine.
func (l *Line) Kind() Kind { return KindLine }

// Length returns the length of the line.
func (l *Line) Length() float64 { return l.Len }

// Start returns the start pose.
func (l *Line) Start() Pose { return l.From }

// Evaluate returns the state at arc length s.
func (l *Line) Evaluate(s float64) State {
	return State{
		Pos:     l.From.Pos + roadgeom.Dir(l.From.Heading).Scaled(s),
		Heading: l.From.Heading,
	}
}

// checkPoints validates the end points of a two-point boundary value problem.
func checkPoints(p0, p1 roadgeom.Pair) error {
	if !p0.IsFinite() || !p1.IsFinite() {
		return errorf(ErrDegenerateGeometry, "non-finite point %s or %s", p0, p1)
	}
	if (p1 - p0).Abs() <= roadgeom.Epsilon {
		return errorf(ErrDegenerateGeometry, "coincident points %s", p0)
	}
	return nil
}

func checkFinite(h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return errorf(ErrDegenerateGeometry, "non-finite value")
	}
	return nil
}
