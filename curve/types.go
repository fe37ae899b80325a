package curve

import (
	"errors"
	"fmt"

	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'geometry'
func tracer() tracing.Trace {
	return tracing.Select("geometry")
}

// MaxLength is the sanity bound for the length of solved curves. Iterative
// solvers producing longer curves report ErrUnsolvableGeometry.
var MaxLength float64 = 10000

// SimpsonStep is the maximum step width for numerical integration of
// clothoids and parametric cubics.
var SimpsonStep float64 = 0.25

// minIntervals is the minimum number of Simpson intervals per integration.
const minIntervals = 16

var (
	// ErrDegenerateGeometry indicates constraints without a meaningful curve,
	// e.g. coincident points.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	// ErrUnsolvableGeometry indicates that an iterative solver did not find a
	// curve within its bounds.
	ErrUnsolvableGeometry = errors.New("unsolvable geometry")
	// ErrSingularSystem indicates a linear system without unique solution.
	ErrSingularSystem = errors.New("singular linear system")
)

// Kind tags the variant of a curve.
type Kind int8

// Curve kinds.
const (
	KindLine Kind = iota
	KindArc
	KindClothoid
	KindClothoidTriple
	KindParamCubic
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	case KindClothoid:
		return "clothoid"
	case KindClothoidTriple:
		return "clothoid-triple"
	case KindParamCubic:
		return "param-cubic"
	}
	return fmt.Sprintf("Kind(%d)", int8(k))
}

// Pose is a position together with a heading (radians).
type Pose struct {
	Pos     roadgeom.Pair
	Heading float64
}

// State is the result of evaluating a curve at some arc length.
type State struct {
	Pos       roadgeom.Pair
	Heading   float64
	Curvature float64
}

// Pose drops the curvature of a state.
func (st State) Pose() Pose {
	return Pose{Pos: st.Pos, Heading: st.Heading}
}

// Curve is the interface all curve kinds implement.
//
// Evaluate must be called with 0 ≤ s ≤ Length(); callers clamp.
type Curve interface {
	Kind() Kind
	Length() float64
	Start() Pose
	Evaluate(s float64) State
}

// End is a shortcut for evaluating a curve at its full length.
func End(c Curve) State {
	return c.Evaluate(c.Length())
}

// Clamp limits s to the parameter range of c.
func Clamp(c Curve, s float64) float64 {
	if s < 0 {
		return 0
	}
	if l := c.Length(); s > l {
		return l
	}
	return s
}

// Copy returns a deep copy of a curve. Curves are immutable after solving,
// but export snapshots must not share backing arrays with live geometry.
func Copy(c Curve) Curve {
	switch cc := c.(type) {
	case *Line:
		l := *cc
		return &l
	case *Arc:
		a := *cc
		return &a
	case *Clothoid:
		cl := *cc
		return &cl
	case *ClothoidTriple:
		t := *cc
		return &t
	case *ParamCubic:
		p := *cc
		return &p
	}
	return c
}
