/*
Package road holds the plan-view and elevation geometry of a single road.

A road geometry is an ordered stack of sections. Each section pairs a curve
in section-local coordinates with a height profile in section-local arc
length. Sections are chained: a section starts where its predecessor ends,
with the predecessor's heading, curvature and exit slope.

Clients edit roads interactively. While the end point of a road is dragged
around, Update is called on every pointer move and recomputes the last
section from scratch. Sections below the last one are never touched by
Update.

Coordinates are given in three systems:

	world    the coordinates of requests and samples
	road     fixed at the first update, origin at the road's start point,
	         x-axis along the start heading
	section  origin at the section's start point, x-axis along its start
	         heading

Heights are not transformed, only shifted per section.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package road

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/roadgeom/elevation"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'road'
func tracer() tracing.Trace {
	return tracing.Select("road")
}

// ErrEmptyGeometry is returned by operations on a road without (solved)
// sections.
var ErrEmptyGeometry = errors.New("road geometry has no sections")

// Request holds the boundary constraints of the last section of a road, in
// world coordinates. Slopes are measured in the direction of the road at
// the start, and into the section at the end.
type Request struct {
	PointStart     mgl64.Vec3
	PointEnd       mgl64.Vec3
	HeadingStart   float64
	HeadingEnd     float64
	CurvatureStart float64
	CurvatureEnd   float64
	SlopeStart     float64
	SlopeEnd       float64
	ConnectedStart bool // start is attached to another road
	ConnectedEnd   bool // end is attached to another road
	DesignSpeed    float64
}

// Solver selects the curve kind used for a section.
type Solver int8

// Available solvers.
const (
	SolverLine           Solver = iota // straight line, end heading ignored
	SolverArc                          // circular arc, end heading ignored
	SolverClothoid                     // single spiral, end curvature ignored
	SolverClothoidTriple               // G2 chain of three spirals
	SolverParamCubic                   // parametric cubic, curvatures ignored
)

func (s Solver) String() string {
	switch s {
	case SolverLine:
		return "line"
	case SolverArc:
		return "arc"
	case SolverClothoid:
		return "clothoid"
	case SolverClothoidTriple:
		return "clothoid-triple"
	case SolverParamCubic:
		return "param-cubic"
	}
	return fmt.Sprintf("Solver(%d)", int8(s))
}

// Options configures the numerical behaviour of a road geometry.
type Options struct {
	CoarseStep float64 // step width of the coarse closest-point scan
	FineStep   float64 // step width of the refining scan
	FineWindow float64 // half width of the refining scan window
	Tuning     elevation.Tuning
}

// DefaultOptions returns the options in use by road editors.
func DefaultOptions() Options {
	return Options{
		CoarseStep: 1,
		FineStep:   0.01,
		FineWindow: 1,
		Tuning:     elevation.DefaultTuning(),
	}
}

// Geometry is the geometry of one road. The zero value is not usable, use New.
type Geometry struct {
	sections []*Section
	world    roadgeom.AT // road to world, nil until the first update
	total    float64
	opts     Options
}

// New creates an empty road geometry.
func New(opts Options) *Geometry {
	return &Geometry{opts: opts}
}

// AddSection pushes a new, unsolved section. It will start at the end of
// the current last section.
func (g *Geometry) AddSection() *Section {
	sec := &Section{}
	g.sections = append(g.sections, sec)
	tracer().Infof("road: added section #%d", len(g.sections)-1)
	return sec
}

// RemoveLastSection pops the most recently added section.
func (g *Geometry) RemoveLastSection() error {
	if len(g.sections) == 0 {
		tracer().Errorf("road: cannot remove section from empty road")
		return ErrEmptyGeometry
	}
	g.sections[len(g.sections)-1] = nil
	g.sections = g.sections[:len(g.sections)-1]
	g.recalcLength()
	tracer().Infof("road: removed section #%d", len(g.sections))
	return nil
}

// Reset discards all sections and the world transform.
func (g *Geometry) Reset() {
	g.sections = nil
	g.world = nil
	g.total = 0
}

// Len returns the number of sections.
func (g *Geometry) Len() int {
	return len(g.sections)
}

// Section returns the i-th section.
func (g *Geometry) Section(i int) *Section {
	return g.sections[i]
}

// Sections returns the sections of the road, from start to end.
func (g *Geometry) Sections() []*Section {
	return g.sections
}

// TotalLength is the sum of all section lengths.
func (g *Geometry) TotalLength() float64 {
	return g.total
}

// Valid is true if the road has sections and all of them are valid.
func (g *Geometry) Valid() bool {
	if len(g.sections) == 0 {
		return false
	}
	for _, sec := range g.sections {
		if !sec.Valid {
			return false
		}
	}
	return true
}

// World returns the road-to-world transform, or the identity before the
// first update.
func (g *Geometry) World() roadgeom.AT {
	if g.world == nil {
		return roadgeom.Identity()
	}
	return g.world
}

// Clone returns a deep copy of the road geometry. Exporters work on clones.
func (g *Geometry) Clone() *Geometry {
	c := &Geometry{
		sections: make([]*Section, len(g.sections)),
		world:    copyAT(g.world),
		total:    g.total,
		opts:     g.opts,
	}
	for i, sec := range g.sections {
		c.sections[i] = sec.Clone()
	}
	return c
}

func (g *Geometry) recalcLength() {
	g.total = 0
	for _, sec := range g.sections {
		if sec.Curve != nil {
			g.total += sec.Len
		}
	}
}

func copyAT(m roadgeom.AT) roadgeom.AT {
	if m == nil {
		return nil
	}
	return append(roadgeom.AT(nil), m...)
}
