// Package export serializes query results as GeoJSON.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/robert-malhotra/go-imagery-client/pkg/imagery"
	"github.com/robert-malhotra/go-imagery-client/pkg/stitch"
)

// FileName is the conventional output name under the output directory.
const FileName = "frames.geojson"

// Points builds a FeatureCollection with one Point per frame, carrying the
// capture sequence and index as properties.
func Points(frames []imagery.Frame) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, frame := range frames {
		f := geojson.NewFeature(frame.Point())
		f.Properties = geojson.Properties{
			"sequence": frame.Sequence,
			"idx":      frame.Index,
		}
		fc.Append(f)
	}
	return fc
}

// Lines builds a FeatureCollection with one LineString per stitched path,
// identified by its position in the input.
func Lines(paths []stitch.Path) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, path := range paths {
		line := make(orb.LineString, 0, len(path))
		for _, frame := range path {
			line = append(line, frame.Point())
		}
		f := geojson.NewFeature(line)
		f.Properties = geojson.Properties{"id": i}
		fc.Append(f)
	}
	return fc
}

// Write marshals the collection to path, creating parent directories.
func Write(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
