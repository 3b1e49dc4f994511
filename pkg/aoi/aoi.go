// Package aoi loads and validates the areas of interest submitted to the
// imagery API. Inputs are GeoJSON files holding a Polygon Feature, a
// FeatureCollection of Polygon Features, or a bare geometry. Every polygon
// must stay under the provider's area limit; validation runs before any
// network call is made.
package aoi

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// MaxArea is the provider-imposed per-polygon limit in square meters (1 km²).
const MaxArea = 1000 * 1000

// ParseError reports input that is not usable GeoJSON.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "aoi: parse " + e.Path
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a polygon exceeding the provider area limit.
type ValidationError struct {
	Feature int
	Area    float64
	Limit   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("aoi: feature %d covers %.0f m², exceeding the %.0f m² limit",
		e.Feature, e.Area, e.Limit)
}

// Load reads and validates the GeoJSON file at path.
func Load(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	features, err := Parse(data)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return features, nil
}

// Parse decodes data as a FeatureCollection, a single Feature, or a bare
// geometry, and validates every polygon. Feature order is preserved.
func Parse(data []byte) ([]*geojson.Feature, error) {
	features, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, &ParseError{Reason: "no features"}
	}

	for i, f := range features {
		if err := validate(i, f.Geometry); err != nil {
			return nil, err
		}
	}
	return features, nil
}

// Decode parses GeoJSON into features without polygon validation. The
// convert command uses it to accept point and linestring inputs.
func Decode(data []byte) ([]*geojson.Feature, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		return fc.Features, nil
	}
	if f, err := geojson.UnmarshalFeature(data); err == nil {
		return []*geojson.Feature{f}, nil
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, &ParseError{Reason: "not valid GeoJSON", Err: err}
	}
	return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
}

func validate(index int, g orb.Geometry) error {
	switch geom := g.(type) {
	case orb.Polygon:
		return checkArea(index, geom)
	case orb.MultiPolygon:
		for _, poly := range geom {
			if err := checkArea(index, poly); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ParseError{Reason: fmt.Sprintf("feature %d has non-polygon geometry %s", index, g.GeoJSONType())}
	}
}

func checkArea(index int, poly orb.Polygon) error {
	area := math.Abs(geo.Area(poly))
	if area > MaxArea {
		return &ValidationError{Feature: index, Area: area, Limit: MaxArea}
	}
	return nil
}
