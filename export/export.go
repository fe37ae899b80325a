/*
Package export prepares a road network for serialization.

Export takes a stable snapshot of all roads and junctions of a network and
converts it into flat records: geometry and elevation records with offsets
counted from the start of each road, junction outlines, and lane links
between connected roads. Problems with parts of the network are collected
as warnings; the rest of the network is exported anyway. Writing the
records in a particular file format is left to clients.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package export

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/roadgeom"
	"github.com/npillmayer/roadgeom/curve"
	"github.com/npillmayer/roadgeom/junction"
	"github.com/npillmayer/roadgeom/lanes"
	"github.com/npillmayer/roadgeom/road"
	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"
)

// tracer writes to trace with key 'export'
func tracer() tracing.Trace {
	return tracing.Select("export")
}

// ErrDuplicateID is returned if two roads or two junctions share an id.
var ErrDuplicateID = errors.New("duplicate id in network")

// ReferenceStep is the sampling distance for reference lines of roads.
var ReferenceStep float64 = 1

// Road is a road of a network.
type Road struct {
	ID       string
	Geometry *road.Geometry
	Lanes    lanes.Table
}

// Junction is a junction of a network.
type Junction struct {
	ID       string
	Junction *junction.Junction
}

// RoadLink connects the ends of two roads.
type RoadLink struct {
	RoadIn     string
	RoadOut    string
	ContactIn  roadgeom.ContactPoint
	ContactOut roadgeom.ContactPoint
	Pair       lanes.PairIDs
}

// Network is the input of an export.
type Network struct {
	Roads     []Road
	Junctions []Junction
	Links     []RoadLink
}

// GeometryRecord is a plan-view record. Only the fields of its kind are
// set: Curvature for arcs, CurvatureStart and CurvatureEnd for spirals,
// U and V for parametric cubics.
type GeometryRecord struct {
	S              float64
	Pos            roadgeom.Pair
	Heading        float64
	Length         float64
	Kind           curve.Kind
	Curvature      float64
	CurvatureStart float64
	CurvatureEnd   float64
	U, V           [4]float64
}

// ElevationRecord is a cubic height polynomial starting at road offset S.
type ElevationRecord struct {
	S, A, B, C, D float64
}

// RoadRecord holds the records of one road.
type RoadRecord struct {
	ID        string
	Length    float64
	Geometry  []GeometryRecord
	Elevation []ElevationRecord
	Reference orb.LineString
}

// JunctionRecord holds the outline of a junction.
type JunctionRecord struct {
	ID      string
	Valid   bool
	Outline []mgl64.Vec3
	Ring    orb.Ring
	Area    float64
}

// LaneLinkRecord lists the lane pairs linking two roads; lane IDsIn[i] of
// RoadIn continues as lane IDsOut[i] of RoadOut.
type LaneLinkRecord struct {
	RoadIn  string
	RoadOut string
	IDsIn   []int
	IDsOut  []int
}

// Document is the result of an export.
type Document struct {
	Roads     []RoadRecord
	Junctions []JunctionRecord
	LaneLinks []LaneLinkRecord
	Warnings  []string
}

func (doc *Document) warn(format string, args ...interface{}) {
	w := fmt.Sprintf(format, args...)
	tracer().Infof("export: %s", w)
	doc.Warnings = append(doc.Warnings, w)
}

// Export converts a network into a document. It works on a copy of the
// network, so the network may be edited again as soon as Export returns.
//
// Export fails only if ids are not unique. Roads with invalid geometry,
// junctions without a closed boundary, overlapping junctions and refused
// lane links are reported as warnings.
func Export(n Network) (*Document, error) {
	snap, err := snapshot(n)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	exported := make(map[string]Road, len(snap.Roads))
	for _, r := range snap.Roads {
		if rec, ok := exportRoad(doc, r); ok {
			doc.Roads = append(doc.Roads, rec)
			exported[r.ID] = r
		}
	}
	exportJunctions(doc, snap.Junctions)
	for _, l := range snap.Links {
		exportLink(doc, l, exported)
	}
	tracer().Infof("export: %d roads, %d junctions, %d lane links, %d warnings",
		len(doc.Roads), len(doc.Junctions), len(doc.LaneLinks), len(doc.Warnings))
	return doc, nil
}

func snapshot(n Network) (Network, error) {
	snap := Network{
		Roads:     make([]Road, len(n.Roads)),
		Junctions: make([]Junction, len(n.Junctions)),
		Links:     append([]RoadLink(nil), n.Links...),
	}
	ids := make(map[string]bool)
	for i, r := range n.Roads {
		if ids[r.ID] {
			return Network{}, fmt.Errorf("%w: road %q", ErrDuplicateID, r.ID)
		}
		ids[r.ID] = true
		snap.Roads[i] = Road{ID: r.ID, Lanes: cloneTable(r.Lanes)}
		if r.Geometry != nil {
			snap.Roads[i].Geometry = r.Geometry.Clone()
		}
	}
	ids = make(map[string]bool)
	for i, j := range n.Junctions {
		if ids[j.ID] {
			return Network{}, fmt.Errorf("%w: junction %q", ErrDuplicateID, j.ID)
		}
		ids[j.ID] = true
		snap.Junctions[i] = Junction{ID: j.ID}
		if j.Junction != nil {
			snap.Junctions[i].Junction = j.Junction.Clone()
		}
	}
	return snap, nil
}

func cloneTable(t lanes.Table) lanes.Table {
	return lanes.Table{
		Left:  append([]lanes.Lane(nil), t.Left...),
		Right: append([]lanes.Lane(nil), t.Right...),
	}
}

func exportRoad(doc *Document, r Road) (RoadRecord, bool) {
	g := r.Geometry
	if g == nil || g.TotalLength() == 0 {
		doc.warn("road %q has no geometry", r.ID)
		return RoadRecord{}, false
	}
	if !g.Valid() {
		for i, sec := range g.Sections() {
			if !sec.Valid {
				doc.warn("road %q: section %d is invalid", r.ID, i)
			}
		}
		return RoadRecord{}, false
	}
	rec := RoadRecord{ID: r.ID, Length: g.TotalLength(), Reference: g.ReferenceLine(ReferenceStep)}
	for _, sr := range g.Records() {
		rec.Geometry = append(rec.Geometry, geometryRecords(sr)...)
		for _, p := range sr.Elevation {
			rec.Elevation = append(rec.Elevation, ElevationRecord{S: p.S, A: p.A, B: p.B, C: p.C, D: p.D})
		}
	}
	return rec, true
}

// geometryRecords converts a section record. Clothoid triples are split
// into their three spirals.
func geometryRecords(sr road.Record) []GeometryRecord {
	base := GeometryRecord{S: sr.S, Pos: sr.Pos, Heading: sr.Heading, Length: sr.Length, Kind: sr.Kind}
	switch c := sr.Curve.(type) {
	case *curve.Arc:
		base.Curvature = c.K
	case *curve.Clothoid:
		base.CurvatureStart, base.CurvatureEnd = c.K0, c.K1
	case *curve.ParamCubic:
		base.U, base.V = c.U, c.V
	case *curve.ClothoidTriple:
		recs := make([]GeometryRecord, 0, 3)
		s := sr.S
		for _, part := range c.Parts {
			recs = append(recs, GeometryRecord{
				S:              s,
				Pos:            sr.Pos + part.From.Pos.Rotated(sr.Heading),
				Heading:        roadgeom.NormalizeAngle(sr.Heading + part.From.Heading),
				Length:         part.Len,
				Kind:           curve.KindClothoid,
				CurvatureStart: part.K0,
				CurvatureEnd:   part.K1,
			})
			s += part.Len
		}
		return recs
	}
	return []GeometryRecord{base}
}

func exportJunctions(doc *Document, js []Junction) {
	var valid []int
	for i, j := range js {
		rec := JunctionRecord{ID: j.ID}
		if j.Junction != nil {
			b := j.Junction.Boundary()
			rec.Valid = b.Valid
			if b.Valid {
				rec.Outline, rec.Ring, rec.Area = b.Vertices, b.Ring(), b.Area()
				if !b.Contains(b.Centroid) {
					doc.warn("junction %q: centre lies outside of its boundary", j.ID)
				}
			}
		}
		if !rec.Valid {
			doc.warn("junction %q has no closed boundary", j.ID)
		} else {
			valid = append(valid, i)
		}
		doc.Junctions = append(doc.Junctions, rec)
	}
	for x := 0; x < len(valid); x++ {
		for y := x + 1; y < len(valid); y++ {
			a, b := js[valid[x]], js[valid[y]]
			if junction.Overlaps(a.Junction.Boundary(), b.Junction.Boundary()) {
				doc.warn("junctions %q and %q overlap", a.ID, b.ID)
			}
		}
	}
}

func exportLink(doc *Document, l RoadLink, roads map[string]Road) {
	in, ok := roads[l.RoadIn]
	if !ok {
		doc.warn("lane link %q → %q: road %q not exported", l.RoadIn, l.RoadOut, l.RoadIn)
		return
	}
	out, ok := roads[l.RoadOut]
	if !ok {
		doc.warn("lane link %q → %q: road %q not exported", l.RoadIn, l.RoadOut, l.RoadOut)
		return
	}
	idsIn, idsOut, err := lanes.Link(
		in.Lanes.EndDescriptor(l.ContactIn),
		out.Lanes.EndDescriptor(l.ContactOut),
		lanes.OrientationOf(l.ContactIn, l.ContactOut),
		l.Pair)
	if err != nil {
		doc.warn("lane link %q → %q refused: %v", l.RoadIn, l.RoadOut, err)
		return
	}
	doc.LaneLinks = append(doc.LaneLinks, LaneLinkRecord{
		RoadIn:  l.RoadIn,
		RoadOut: l.RoadOut,
		IDsIn:   idsIn,
		IDsOut:  idsOut,
	})
}
