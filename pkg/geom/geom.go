// Package geom prepares arbitrary geographic inputs for imagery queries.
// Points become fixed-width squares, linestrings become corridor polygons,
// and oversized polygons are split until every piece fits under the
// provider's area limit. Offsets are computed in Web-Mercator and projected
// back to WGS84.
package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

const (
	// DefaultWidth is the corridor/square width in meters.
	DefaultWidth = 25.0
	// AreaLimit matches the provider's 1 km² per-polygon cap.
	AreaLimit = 1000 * 1000

	// sharpAngleThreshold marks the turns a corridor cannot miter across.
	sharpAngleThreshold = 45.0
	// maxChunkDepth caps the bisection recursion.
	maxChunkDepth = 250
	// maxMultiPolygonSize caps how many squares are grouped per feature.
	maxMultiPolygonSize = 8
)

// PointToSquare builds an axis-aligned square of the given width (meters)
// centered on pt.
func PointToSquare(pt orb.Point, width float64) orb.Polygon {
	half := width / 2
	center := project.WGS84.ToMercator(pt)

	ring := orb.Ring{
		project.Mercator.ToWGS84(orb.Point{center[0] - half, center[1] - half}),
		project.Mercator.ToWGS84(orb.Point{center[0] + half, center[1] - half}),
		project.Mercator.ToWGS84(orb.Point{center[0] + half, center[1] + half}),
		project.Mercator.ToWGS84(orb.Point{center[0] - half, center[1] + half}),
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// LineStringToPolygon buffers a linestring into a corridor polygon of the
// given width. Vertices closer than the width to their predecessor are
// dropped first. Turns sharper than 45° cannot be mitered, so the line is
// split there and the result is a MultiPolygon of corridor pieces; the joint
// vertex itself contributes a square so the pieces stay connected.
func LineStringToPolygon(ls orb.LineString, width float64) (orb.Geometry, error) {
	if len(ls) == 0 {
		return nil, fmt.Errorf("geom: empty linestring")
	}

	filtered := filterShortSegments(ls, width)
	if len(filtered) < 2 {
		return PointToSquare(filtered[0], width), nil
	}

	pieces := splitSharpAngles(filtered, sharpAngleThreshold)
	if len(pieces) == 1 {
		return corridor(pieces[0], width), nil
	}

	var mp orb.MultiPolygon
	for _, piece := range pieces {
		g, err := LineStringToPolygon(piece, width)
		if err != nil {
			return nil, err
		}
		switch poly := g.(type) {
		case orb.Polygon:
			mp = append(mp, poly)
		case orb.MultiPolygon:
			mp = append(mp, poly...)
		}
	}
	return mp, nil
}

// filterShortSegments drops vertices closer than min meters to the last kept
// vertex.
func filterShortSegments(ls orb.LineString, min float64) orb.LineString {
	if len(ls) < 2 {
		return ls
	}
	out := orb.LineString{ls[0]}
	prev := ls[0]
	for _, cur := range ls[1:] {
		if geo.Distance(prev, cur) < min {
			continue
		}
		out = append(out, cur)
		prev = cur
	}
	return out
}

// splitSharpAngles cuts a linestring wherever the bearing changes by more
// than threshold degrees. Joint vertices are emitted as their own one-point
// pieces since the corridor has no miter join.
func splitSharpAngles(ls orb.LineString, threshold float64) []orb.LineString {
	if len(ls) < 3 {
		return []orb.LineString{ls}
	}

	var lines []orb.LineString
	current := orb.LineString{ls[0], ls[1]}

	for i := 2; i < len(ls); i++ {
		theta := angularDelta(
			geo.Bearing(ls[i-2], ls[i-1]),
			geo.Bearing(ls[i-1], ls[i]),
		)
		if theta <= threshold {
			current = append(current, ls[i])
			continue
		}
		lines = append(lines, current)
		lines = append(lines, orb.LineString{ls[i-1]})
		current = orb.LineString{ls[i-1], ls[i]}
	}

	return append(lines, current)
}

// corridor offsets the line by half the width on each side and closes the
// ring: left side out, right side back.
func corridor(ls orb.LineString, width float64) orb.Polygon {
	half := width / 2
	merc := make([]orb.Point, len(ls))
	for i, p := range ls {
		merc[i] = project.WGS84.ToMercator(p)
	}

	n := 2 * len(ls)
	ring := make(orb.Ring, n+1)

	nx, ny := segmentNormal(merc[0], merc[1], half)
	ring[0] = project.Mercator.ToWGS84(orb.Point{merc[0][0] + nx, merc[0][1] + ny})
	ring[n-1] = project.Mercator.ToWGS84(orb.Point{merc[0][0] - nx, merc[0][1] - ny})

	for i := 1; i < len(merc); i++ {
		nx, ny := segmentNormal(merc[i-1], merc[i], half)
		ring[i] = project.Mercator.ToWGS84(orb.Point{merc[i][0] + nx, merc[i][1] + ny})
		ring[n-i-1] = project.Mercator.ToWGS84(orb.Point{merc[i][0] - nx, merc[i][1] - ny})
	}

	ring[n] = ring[0]
	return orb.Polygon{ring}
}

// segmentNormal returns the left-hand unit normal of the segment a→b scaled
// to half.
func segmentNormal(a, b orb.Point, half float64) (float64, float64) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	mag := math.Hypot(dx, dy)
	dx /= mag
	dy /= mag
	return -dy * half, dx * half
}

// ChunkByArea splits a polygon or multipolygon into pieces under limit m²,
// bisecting across the shorter dimension until every piece fits.
func ChunkByArea(g orb.Geometry, limit float64) []orb.Geometry {
	if math.Abs(geo.Area(g)) < limit {
		return []orb.Geometry{g}
	}

	var out []orb.Geometry
	for _, piece := range katana(g, limit, 0) {
		if mp, ok := piece.(orb.MultiPolygon); ok {
			for _, poly := range mp {
				out = append(out, poly)
			}
			continue
		}
		out = append(out, piece)
	}
	return out
}

// katana recursively bisects the geometry's bound across its shorter
// dimension and clips the geometry to each half.
func katana(g orb.Geometry, limit float64, depth int) []orb.Geometry {
	if math.Abs(geo.Area(g)) < limit || depth == maxChunkDepth {
		return []orb.Geometry{g}
	}

	b := g.Bound()
	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]

	var halves [2]orb.Bound
	if height >= width {
		mid := b.Min[1] + height/2
		halves[0] = orb.Bound{Min: b.Min, Max: orb.Point{b.Max[0], mid}}
		halves[1] = orb.Bound{Min: orb.Point{b.Min[0], mid}, Max: b.Max}
	} else {
		mid := b.Min[0] + width/2
		halves[0] = orb.Bound{Min: b.Min, Max: orb.Point{mid, b.Max[1]}}
		halves[1] = orb.Bound{Min: orb.Point{mid, b.Min[1]}, Max: b.Max}
	}

	var out []orb.Geometry
	for _, half := range halves {
		clipped := clip.Geometry(half, g)
		if clipped == nil {
			continue
		}
		out = append(out, katana(clipped, limit, depth+1)...)
	}
	return out
}

// Convert turns a feature of any supported geometry into one or more
// query-ready polygon features. Properties are carried over.
func Convert(feature *geojson.Feature, width float64) ([]*geojson.Feature, error) {
	switch g := feature.Geometry.(type) {
	case orb.Point:
		return []*geojson.Feature{newFeature(PointToSquare(g, width), feature.Properties)}, nil
	case orb.LineString:
		poly, err := LineStringToPolygon(g, width)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{newFeature(poly, feature.Properties)}, nil
	case orb.Polygon, orb.MultiPolygon:
		pieces := ChunkByArea(g, AreaLimit)
		features := make([]*geojson.Feature, 0, len(pieces))
		for _, piece := range pieces {
			features = append(features, newFeature(piece, feature.Properties))
		}
		return features, nil
	default:
		return nil, fmt.Errorf("geom: unsupported geometry type %s", feature.Geometry.GeoJSONType())
	}
}

func newFeature(g orb.Geometry, props geojson.Properties) *geojson.Feature {
	f := geojson.NewFeature(g)
	if len(props) > 0 {
		f.Properties = props.Clone()
	}
	return f
}

func angularDelta(a, b float64) float64 {
	delta := math.Abs(a - b)
	if delta > 180 {
		delta = 360 - delta
	}
	return delta
}
