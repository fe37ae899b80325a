package junction

import (
	"math"
	"sort"

	"github.com/akavel/polyclip-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/roadgeom/curve"
	"github.com/npillmayer/roadgeom/elevation"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Options configures boundary construction.
type Options struct {
	SamplesPerLeg int     // sampling intervals per clothoid of a connection
	MaxTurn       float64 // right turns must be smaller than this (radians), see rightTurn
}

// DefaultOptions returns the options in use by junction editors.
func DefaultOptions() Options {
	return Options{
		SamplesPerLeg: 5,
		MaxTurn:       270 * roadgeom.Deg2Rad,
	}
}

// Boundary is the outline of a junction.
//
// A valid boundary lists its vertices counter-clockwise, starting at the
// right corner of the first joint. The edges from the left corner of a
// joint to its right corner are the road mouths; they are implicit between
// the end of one connection and the start of the next.
//
// An invalid boundary has no vertices; Stubs holds the left and right
// corner of every joint.
type Boundary struct {
	Valid    bool
	Order    []int // joint indices in tour order
	Vertices []mgl64.Vec3
	Stubs    [][2]mgl64.Vec3
	Centroid mgl64.Vec3 // mean of the joint positions
}

// Contour returns the plan view of a valid boundary as a polyclip contour.
func (b Boundary) Contour() polyclip.Contour {
	if !b.Valid {
		return nil
	}
	c := make(polyclip.Contour, len(b.Vertices))
	for i, v := range b.Vertices {
		c[i] = polyclip.Point{X: v.X(), Y: v.Y()}
	}
	return c
}

// Polygon wraps the contour of a valid boundary.
func (b Boundary) Polygon() polyclip.Polygon {
	if !b.Valid {
		return nil
	}
	return polyclip.Polygon{b.Contour()}
}

// Ring returns the plan view of a valid boundary as a closed ring.
func (b Boundary) Ring() orb.Ring {
	if !b.Valid || len(b.Vertices) == 0 {
		return nil
	}
	r := make(orb.Ring, 0, len(b.Vertices)+1)
	for _, v := range b.Vertices {
		r = append(r, orb.Point{v.X(), v.Y()})
	}
	return append(r, r[0])
}

// Area is the plan-view area of a valid boundary, 0 otherwise.
func (b Boundary) Area() float64 {
	if r := b.Ring(); r != nil {
		return math.Abs(planar.Area(r))
	}
	return 0
}

// Contains tells if the plan view of p lies inside a valid boundary.
func (b Boundary) Contains(p mgl64.Vec3) bool {
	if !b.Valid {
		return false
	}
	return b.Contour().Contains(polyclip.Point{X: p.X(), Y: p.Y()})
}

// Overlaps tells if the plan views of two valid boundaries intersect.
func Overlaps(a, b Boundary) bool {
	if !a.Valid || !b.Valid {
		return false
	}
	if !a.Contour().BoundingBox().Overlaps(b.Contour().BoundingBox()) {
		return false
	}
	return a.Polygon().Construct(polyclip.INTERSECTION, b.Polygon()).NumVertices() > 0
}

// tour is the accumulator of boundary construction.
type tour struct {
	order    []int
	vertices []mgl64.Vec3
}

func (t tour) visited(i int) bool {
	for _, j := range t.order {
		if j == i {
			return true
		}
	}
	return false
}

// extend returns a new tour with joint next appended.
func (t tour) extend(next int, vertices []mgl64.Vec3) tour {
	order := make([]int, len(t.order), len(t.order)+1)
	copy(order, t.order)
	vs := make([]mgl64.Vec3, len(t.vertices), len(t.vertices)+len(vertices))
	copy(vs, t.vertices)
	return tour{order: append(order, next), vertices: append(vs, vertices...)}
}

// BuildBoundary constructs the boundary of a junction with the given
// joints. It never fails; if no closed tour is found, an invalid boundary
// with stubs is returned.
func BuildBoundary(joints []Joint, opts Options) Boundary {
	b := Boundary{Centroid: centroid(joints)}
	if len(joints) < 2 {
		tracer().Debugf("junction: %d joint(s), no boundary", len(joints))
		return degenerate(joints, b)
	}
	t := tour{order: []int{0}}
	current := 0
	for {
		closing := len(t.order) == len(joints)
		next, vertices, ok := step(joints, t, current, closing, b.Centroid, opts)
		if !ok {
			tracer().Debugf("junction: tour stuck at joint %d after %v", current, t.order)
			b.Order = t.order
			return degenerate(joints, b)
		}
		if closing {
			t = tour{order: t.order, vertices: append(t.vertices, vertices...)}
			break
		}
		t = t.extend(next, vertices)
		current = next
	}
	b.Valid = true
	b.Order = t.order
	b.Vertices = t.vertices
	tracer().Debugf("junction: closed boundary through %v with %d vertices", b.Order, len(b.Vertices))
	return b
}

type candidate struct {
	index int
	turn  float64
}

// step finds the joint following current and the vertices connecting them.
// When closing, the only candidate is joint 0.
func step(joints []Joint, t tour, current int, closing bool, center mgl64.Vec3, opts Options) (int, []mgl64.Vec3, bool) {
	a := joints[current]
	var candidates []candidate
	for i, jt := range joints {
		if closing && i != 0 || !closing && t.visited(i) {
			continue
		}
		turn := rightTurn(a, jt)
		if turn > opts.MaxTurn-2*math.Pi {
			candidates = append(candidates, candidate{index: i, turn: turn})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].turn > candidates[j].turn
	})
	from := roadgeom.XY(a.RightCorner())
	for _, c := range candidates {
		b := joints[c.index]
		to := roadgeom.XY(b.LeftCorner())
		if crossesMouth(joints, t, current, c.index, from, to, center) {
			tracer().Debugf("junction: %s → %s crosses another road", a, b)
			continue
		}
		vertices, err := connect(a, b, opts)
		if err != nil {
			tracer().Debugf("junction: %s → %s: %v", a, b, err)
			continue
		}
		return c.index, vertices, true
	}
	return 0, nil, false
}

// rightTurn is the change of heading from entering the junction at a to
// leaving it at b, positive to the right, in (-π, π]. A left turn by α
// equals a right turn by 2π-α, so joints clockwise of a rank lowest.
func rightTurn(a, b Joint) float64 {
	return roadgeom.NormalizeAngle(a.Heading - (b.Heading + math.Pi))
}

// crossesMouth tests the straight edge from → to against rays cast from
// the corners of every unvisited joint, in the direction of the joint's
// heading and as long as the joint's distance to the center.
func crossesMouth(joints []Joint, t tour, current, cand int, from, to roadgeom.Pair, center mgl64.Vec3) bool {
	for i, jt := range joints {
		if i == current || i == cand || t.visited(i) {
			continue
		}
		length := (roadgeom.XY(jt.Position) - roadgeom.XY(center)).Abs()
		ray := roadgeom.Dir(jt.Heading).Scaled(length)
		for _, corner := range []mgl64.Vec3{jt.LeftCorner(), jt.RightCorner()} {
			p := roadgeom.XY(corner)
			if segmentsIntersect(from, to, p, p+ray) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect tests two segments p0p1 and q0q1 for a proper
// intersection. Touching end points and parallel segments do not count.
func segmentsIntersect(p0, p1, q0, q1 roadgeom.Pair) bool {
	r, s := p1-p0, q1-q0
	d := r.Cross(s)
	if roadgeom.Is0(d) {
		return false
	}
	qp := q0 - p0
	u := qp.Cross(s) / d
	v := qp.Cross(r) / d
	return u > 0 && u < 1 && v > 0 && v < 1
}

// connection solves the edge from the right corner of a to the left
// corner of b. Its end curvatures are those of the outer lane edges.
func connection(a, b Joint) (*curve.ClothoidTriple, error) {
	from, to := roadgeom.XY(a.RightCorner()), roadgeom.XY(b.LeftCorner())
	k0 := offsetCurvature(a.Curvature, -sum(a.WidthsRight))
	k1 := -offsetCurvature(b.Curvature, sum(b.WidthsLeft))
	return curve.SolveClothoidTriple(from, a.Heading, k0, to, b.Heading+math.Pi, k1)
}

// connect samples the connection from a to b, including both end points.
func connect(a, b Joint, opts Options) ([]mgl64.Vec3, error) {
	c, err := connection(a, b)
	if err != nil {
		return nil, err
	}
	from, to := a.RightCorner(), b.LeftCorner()
	n := 3 * opts.SamplesPerLeg
	if n < 3 {
		n = 3
	}
	L := c.Length()
	height := elevation.Hermite(from.Z(), a.Slope, to.Z(), -b.Slope, L)
	vertices := make([]mgl64.Vec3, n+1)
	for i := 0; i <= n; i++ {
		s := L * float64(i) / float64(n)
		vertices[i] = roadgeom.Lift(c.Evaluate(s).Pos, height.Height(s))
	}
	return vertices, nil
}

func degenerate(joints []Joint, b Boundary) Boundary {
	b.Valid = false
	b.Vertices = nil
	b.Stubs = make([][2]mgl64.Vec3, len(joints))
	for i, jt := range joints {
		b.Stubs[i] = [2]mgl64.Vec3{jt.LeftCorner(), jt.RightCorner()}
	}
	return b
}

func centroid(joints []Joint) mgl64.Vec3 {
	var c mgl64.Vec3
	if len(joints) == 0 {
		return c
	}
	for _, jt := range joints {
		c = c.Add(jt.Position)
	}
	return c.Mul(1 / float64(len(joints)))
}
