/*
Package lanes computes lane-to-lane links between connected road ends.

Lanes are numbered as usual for road network descriptions: left lanes
carry positive ids counting outwards from the reference line, right lanes
negative ids counting outwards. A road end is described by a Descriptor,
listing left lanes from the outside in and right lanes from the inside out,
so that both lists together form a cross section from left to right.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package lanes

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'lanes'
func tracer() tracing.Trace {
	return tracing.Select("lanes")
}

var (
	// ErrMalformedDescriptor is returned for descriptors with negative
	// widths, inconsistent list lengths, wrongly signed or duplicate ids.
	ErrMalformedDescriptor = errors.New("malformed lane descriptor")
	// ErrUnknownPairID is returned if a pairing id is not a lane of its
	// descriptor.
	ErrUnknownPairID = errors.New("pairing lane not found")
)

// Descriptor describes the lanes at one end of a road.
type Descriptor struct {
	IDsLeft     []int // outer → inner, positive
	IDsRight    []int // inner → outer, negative
	WidthsLeft  []float64
	WidthsRight []float64
	TypesLeft   []string // optional
	TypesRight  []string // optional
}

// Validate checks a descriptor for consistency.
func (d Descriptor) Validate() error {
	if len(d.IDsLeft) != len(d.WidthsLeft) || len(d.IDsRight) != len(d.WidthsRight) {
		return fmt.Errorf("%w: %d/%d left and %d/%d right ids/widths", ErrMalformedDescriptor,
			len(d.IDsLeft), len(d.WidthsLeft), len(d.IDsRight), len(d.WidthsRight))
	}
	if len(d.TypesLeft) > 0 && len(d.TypesLeft) != len(d.IDsLeft) ||
		len(d.TypesRight) > 0 && len(d.TypesRight) != len(d.IDsRight) {
		return fmt.Errorf("%w: lane types do not match lanes", ErrMalformedDescriptor)
	}
	seen := make(map[int]bool, len(d.IDsLeft)+len(d.IDsRight))
	for i, id := range d.IDsLeft {
		if id <= 0 {
			return fmt.Errorf("%w: left lane id %d", ErrMalformedDescriptor, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate lane id %d", ErrMalformedDescriptor, id)
		}
		seen[id] = true
		if err := checkWidth(id, d.WidthsLeft[i]); err != nil {
			return err
		}
	}
	for i, id := range d.IDsRight {
		if id >= 0 {
			return fmt.Errorf("%w: right lane id %d", ErrMalformedDescriptor, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate lane id %d", ErrMalformedDescriptor, id)
		}
		seen[id] = true
		if err := checkWidth(id, d.WidthsRight[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkWidth(id int, w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: lane %d has width %g", ErrMalformedDescriptor, id, w)
	}
	return nil
}

// Orientation tells how two road ends meet.
type Orientation int8

// Orientations of connected road ends.
const (
	TailToHead Orientation = iota // end meets start, or start meets end
	HeadsOn                       // end meets end, or start meets start
)

func (o Orientation) String() string {
	switch o {
	case TailToHead:
		return "tail-to-head"
	case HeadsOn:
		return "heads-on"
	}
	return fmt.Sprintf("Orientation(%d)", int8(o))
}

// OrientationOf derives the orientation from the contact points of two
// connected road ends.
func OrientationOf(in, out roadgeom.ContactPoint) Orientation {
	if in == out {
		return HeadsOn
	}
	return TailToHead
}

// PairIDs names the lanes at which two road ends are aligned. An id of 0
// aligns at the reference line. A non-zero id is used at split roads: the
// lane becomes the innermost lane of its side, and the lanes between it
// and the reference line move to the opposite side.
type PairIDs struct {
	In, Out int
}

type lane struct {
	id    int
	width float64
}

// side is a list of lanes ordered from the pairing anchor outwards.
type side []lane

// sides splits a descriptor at its pairing lane and returns both sides
// ordered from the anchor outwards.
func sides(d Descriptor, pair int) (side, side, error) {
	seq := make([]lane, 0, len(d.IDsLeft)+len(d.IDsRight))
	for i, id := range d.IDsLeft {
		seq = append(seq, lane{id: id, width: d.WidthsLeft[i]})
	}
	for i, id := range d.IDsRight {
		seq = append(seq, lane{id: id, width: d.WidthsRight[i]})
	}
	split := len(d.IDsLeft)
	if pair != 0 {
		k := -1
		for i, l := range seq {
			if l.id == pair {
				k = i
				break
			}
		}
		switch {
		case k < 0:
			return nil, nil, fmt.Errorf("%w: lane %d", ErrUnknownPairID, pair)
		case k < len(d.IDsLeft):
			split = k + 1
		default:
			split = k
		}
	}
	left := make(side, 0, split)
	for i := split - 1; i >= 0; i-- {
		left = append(left, seq[i])
	}
	right := append(side{}, seq[split:]...)
	return left.open(), right.open(), nil
}

// open drops lanes of zero width.
func (s side) open() side {
	r := s[:0]
	for _, l := range s {
		if l.width > 0 {
			r = append(r, l)
		}
	}
	return r
}

// flip turns a descriptor around, as seen from the opposite direction.
func flip(d Descriptor) Descriptor {
	return Descriptor{
		IDsLeft:     reversed(d.IDsRight),
		IDsRight:    reversed(d.IDsLeft),
		WidthsLeft:  reversed(d.WidthsRight),
		WidthsRight: reversed(d.WidthsLeft),
		TypesLeft:   reversed(d.TypesRight),
		TypesRight:  reversed(d.TypesLeft),
	}
}

func reversed[T any](s []T) []T {
	r := make([]T, len(s))
	for i, x := range s {
		r[len(s)-1-i] = x
	}
	return r
}

// Link computes the lane links between the end of road in and the end of
// road out. It returns two lists of equal length; lane idsIn[i] connects
// to lane idsOut[i]. Left lanes are paired first, then right lanes, each
// side from the anchor outwards. If one side has more lanes than the other,
// the surplus lanes farthest from the anchor stay unlinked. Lanes of zero
// width are never linked.
//
// For heads-on connections, the lanes of out are seen in reverse.
func Link(in, out Descriptor, o Orientation, pair PairIDs) ([]int, []int, error) {
	if err := in.Validate(); err != nil {
		tracer().Errorf("lanes: incoming %v", err)
		return nil, nil, err
	}
	if err := out.Validate(); err != nil {
		tracer().Errorf("lanes: outgoing %v", err)
		return nil, nil, err
	}
	if o == HeadsOn {
		out = flip(out)
	}
	inLeft, inRight, err := sides(in, pair.In)
	if err != nil {
		return nil, nil, err
	}
	outLeft, outRight, err := sides(out, pair.Out)
	if err != nil {
		return nil, nil, err
	}
	var idsIn, idsOut []int
	for _, s := range [][2]side{{inLeft, outLeft}, {inRight, outRight}} {
		n := len(s[0])
		if len(s[1]) < n {
			n = len(s[1])
		}
		for i := 0; i < n; i++ {
			idsIn = append(idsIn, s[0][i].id)
			idsOut = append(idsOut, s[1][i].id)
		}
	}
	tracer().Debugf("lanes: %s link %v → %v", o, idsIn, idsOut)
	return idsIn, idsOut, nil
}
