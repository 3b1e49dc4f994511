package geom

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FromCSV reads lat/lon rows and converts each to a square query polygon.
// The header row must name a latitude column (lat/latitude) and a longitude
// column (lon/longitude); idField optionally names a column carried through
// as an "id" property. Without an id column the squares are grouped into
// MultiPolygon features of bounded cardinality to cut down on request count.
func FromCSV(r io.Reader, width float64, idField string) ([]*geojson.Feature, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("geom: read csv header: %w", err)
	}

	latIdx, lonIdx, idIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "lat", "latitude":
			latIdx = i
		case "lon", "longitude":
			lonIdx = i
		case strings.ToLower(idField):
			if idField != "" {
				idIdx = i
			}
		}
	}
	if latIdx < 0 || lonIdx < 0 {
		return nil, fmt.Errorf("geom: csv header has no lat/lon columns")
	}
	if idField != "" && idIdx < 0 {
		return nil, fmt.Errorf("geom: csv header has no %q column", idField)
	}

	var features []*geojson.Feature
	var squares []orb.Polygon
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("geom: read csv: %w", err)
		}
		line++

		lon, err := strconv.ParseFloat(strings.TrimSpace(row[lonIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("geom: csv line %d: bad longitude %q", line, row[lonIdx])
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[latIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("geom: csv line %d: bad latitude %q", line, row[latIdx])
		}

		square := PointToSquare(orb.Point{lon, lat}, width)
		if idIdx >= 0 {
			f := geojson.NewFeature(square)
			f.Properties = geojson.Properties{"id": row[idIdx]}
			features = append(features, f)
			continue
		}
		squares = append(squares, square)
	}

	if idIdx >= 0 {
		return features, nil
	}
	return groupSquares(squares, width), nil
}

// groupSquares packs squares into MultiPolygon features, keeping each group
// under both the hard cardinality cap and the provider area limit.
func groupSquares(squares []orb.Polygon, width float64) []*geojson.Feature {
	limit := maxMultiPolygonSize
	if byArea := int(AreaLimit/(width*width)) - 1; byArea < limit {
		limit = byArea
	}
	if limit < 2 {
		limit = 2
	}

	var features []*geojson.Feature
	for start := 0; start < len(squares); start += limit {
		end := start + limit
		if end > len(squares) {
			end = len(squares)
		}
		mp := make(orb.MultiPolygon, 0, end-start)
		mp = append(mp, squares[start:end]...)
		features = append(features, geojson.NewFeature(mp))
	}
	return features
}
