package lanes

import (
	"fmt"

	"github.com/npillmayer/roadgeom"
)

// Lane is an entry of a road's lane table. A lane opening along the road
// has width 0 at its start, a closing lane width 0 at its end.
type Lane struct {
	ID         int
	Type       string
	WidthStart float64
	WidthEnd   float64
}

// Table is the lane table of a road.
type Table struct {
	Left  []Lane // outer → inner
	Right []Lane // inner → outer
}

// NewTable creates a table of left and right lanes with uniform width
// and type.
func NewTable(left, right int, width float64, typ string) Table {
	t := Table{Left: make([]Lane, left), Right: make([]Lane, right)}
	for i := range t.Left {
		t.Left[i] = Lane{ID: left - i, Type: typ, WidthStart: width, WidthEnd: width}
	}
	for i := range t.Right {
		t.Right[i] = Lane{ID: -(i + 1), Type: typ, WidthStart: width, WidthEnd: width}
	}
	return t
}

// EndDescriptor derives the descriptor of one end of the road.
func (t Table) EndDescriptor(cp roadgeom.ContactPoint) Descriptor {
	d := Descriptor{}
	width := func(l Lane) float64 {
		if cp == roadgeom.ContactEnd {
			return l.WidthEnd
		}
		return l.WidthStart
	}
	for _, l := range t.Left {
		d.IDsLeft = append(d.IDsLeft, l.ID)
		d.WidthsLeft = append(d.WidthsLeft, width(l))
		d.TypesLeft = append(d.TypesLeft, l.Type)
	}
	for _, l := range t.Right {
		d.IDsRight = append(d.IDsRight, l.ID)
		d.WidthsRight = append(d.WidthsRight, width(l))
		d.TypesRight = append(d.TypesRight, l.Type)
	}
	return d
}

// Widths returns the lane widths at one end of the road, from the reference
// line outwards, as needed for junction joints.
func (t Table) Widths(cp roadgeom.ContactPoint) (left, right []float64) {
	d := t.EndDescriptor(cp)
	return reversed(d.WidthsLeft), d.WidthsRight
}

func (t Table) String() string {
	return fmt.Sprintf("lanes{%d left, %d right}", len(t.Left), len(t.Right))
}
