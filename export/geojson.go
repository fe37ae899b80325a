package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection returns the reference lines of all exported roads and
// the outlines of all valid junctions, for debug overlays. Coordinates are
// plan-view world coordinates.
func (doc *Document) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range doc.Roads {
		if len(r.Reference) < 2 {
			continue
		}
		f := geojson.NewFeature(r.Reference)
		f.ID = r.ID
		f.Properties["kind"] = "road"
		f.Properties["length"] = r.Length
		fc.Append(f)
	}
	for _, j := range doc.Junctions {
		if !j.Valid {
			continue
		}
		f := geojson.NewFeature(orb.Polygon{j.Ring})
		f.ID = j.ID
		f.Properties["kind"] = "junction"
		f.Properties["area"] = j.Area
		fc.Append(f)
	}
	return fc
}
