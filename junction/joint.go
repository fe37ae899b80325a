/*
Package junction synthesizes the boundary of a junction from the ends of
the roads meeting there.

Each road end is described by a Joint. The boundary is built as a tour
around the junction: starting at the first joint, the right corner of the
current joint is connected to the left corner of the next joint by a
G2-continuous chain of three clothoids. The next joint is the one requiring
the sharpest right turn whose connecting edge does not cut through the
mouth of another road. Left turns count as right turns of more than 180
degrees; right turns of 270 degrees or more are not taken. If the tour closes at the first
joint, the boundary is a valid polygon. Otherwise the boundary degenerates
to stub edges across every joint's mouth, which is a normal state while a
junction is being edited.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package junction

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/roadgeom/road"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'junction'
func tracer() tracing.Trace {
	return tracing.Select("junction")
}

var (
	// ErrInvalidJoint is returned for joints with undefined coordinates or
	// malformed lane lists.
	ErrInvalidJoint = errors.New("invalid joint")
	// ErrNoJoints is returned when removing a joint from an empty junction.
	ErrNoJoints = errors.New("junction has no joints")
)

// Joint is the end of a road where it meets a junction. Heading points
// into the junction, slope is measured in the same direction. Lane widths
// are listed from the reference line outwards.
type Joint struct {
	ID           int
	IncomingRoad string // optional
	Contact      roadgeom.ContactPoint
	Position     mgl64.Vec3
	Heading      float64
	Curvature    float64
	Slope        float64
	WidthsLeft   []float64
	WidthsRight  []float64
	TypesLeft    []string
	TypesRight   []string
}

// Validate checks a joint for undefined values and inconsistent lane lists.
func (jt Joint) Validate() error {
	for _, v := range []float64{jt.Position.X(), jt.Position.Y(), jt.Position.Z(), jt.Heading, jt.Curvature, jt.Slope} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: joint %d has undefined geometry", ErrInvalidJoint, jt.ID)
		}
	}
	for _, w := range append(append([]float64{}, jt.WidthsLeft...), jt.WidthsRight...) {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: joint %d has lane width %g", ErrInvalidJoint, jt.ID, w)
		}
	}
	if len(jt.TypesLeft) > 0 && len(jt.TypesLeft) != len(jt.WidthsLeft) ||
		len(jt.TypesRight) > 0 && len(jt.TypesRight) != len(jt.WidthsRight) {
		return fmt.Errorf("%w: joint %d has lane types not matching widths", ErrInvalidJoint, jt.ID)
	}
	return nil
}

// normal is the unit vector to the left of the heading.
func (jt Joint) normal() roadgeom.Pair {
	return roadgeom.Dir(jt.Heading).Normal()
}

// LeftCorner is the outer edge of the left lanes, seen in the direction
// of the heading.
func (jt Joint) LeftCorner() mgl64.Vec3 {
	p := roadgeom.XY(jt.Position) + jt.normal().Scaled(sum(jt.WidthsLeft))
	return roadgeom.Lift(p, jt.Position.Z())
}

// RightCorner is the outer edge of the right lanes.
func (jt Joint) RightCorner() mgl64.Vec3 {
	p := roadgeom.XY(jt.Position) - jt.normal().Scaled(sum(jt.WidthsRight))
	return roadgeom.Lift(p, jt.Position.Z())
}

func (jt Joint) String() string {
	return fmt.Sprintf("joint#%d(%s %s %v@%.4f)", jt.ID, jt.IncomingRoad, jt.Contact,
		roadgeom.XY(jt.Position), jt.Heading)
}

func sum(ws []float64) float64 {
	s := 0.0
	for _, w := range ws {
		s += w
	}
	return s
}

// offsetCurvature is the curvature of a curve running parallel to one with
// curvature k, at lateral distance t (positive to the left).
func offsetCurvature(k, t float64) float64 {
	if roadgeom.Is0(k) {
		return 0
	}
	return 1 / (1/k - t)
}

// FromRoad derives a joint from the end of a road. Lane widths are given
// as seen in the direction of the road; for a road starting at the
// junction, heading and lanes are flipped so that the joint looks into the
// junction.
func FromRoad(id int, roadID string, g *road.Geometry, cp roadgeom.ContactPoint,
	widthsLeft, widthsRight []float64) (Joint, error) {
	//
	c, err := g.Contact(cp)
	if err != nil {
		return Joint{}, fmt.Errorf("%w: road %q: %v", ErrInvalidJoint, roadID, err)
	}
	jt := Joint{
		ID:           id,
		IncomingRoad: roadID,
		Contact:      cp,
		Position:     c.Position,
		Heading:      c.Heading,
		Curvature:    c.Curvature,
		Slope:        c.Slope,
		WidthsLeft:   widthsLeft,
		WidthsRight:  widthsRight,
	}
	if cp == roadgeom.ContactStart {
		jt.Heading = roadgeom.NormalizeAngle(c.Heading + math.Pi)
		jt.Curvature, jt.Slope = -c.Curvature, -c.Slope
		jt.WidthsLeft, jt.WidthsRight = widthsRight, widthsLeft
	}
	return jt, jt.Validate()
}
