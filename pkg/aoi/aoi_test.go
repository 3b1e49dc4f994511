package aoi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareJSON returns a polygon ring around the origin, side in degrees.
// 0.001° at the equator is roughly 111 m.
func squareJSON(side float64) string {
	h := side / 2
	return fmt.Sprintf(`{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}`,
		-h, -h, h, -h, h, h, -h, h, -h, -h)
}

func TestParseFeatureCollection(t *testing.T) {
	data := fmt.Sprintf(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"one"},"geometry":%s},
		{"type":"Feature","properties":{"name":"two"},"geometry":%s}
	]}`, squareJSON(0.001), squareJSON(0.002))

	features, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "one", features[0].Properties["name"])
	assert.IsType(t, orb.Polygon{}, features[0].Geometry)
}

func TestParseSingleFeature(t *testing.T) {
	data := fmt.Sprintf(`{"type":"Feature","properties":{},"geometry":%s}`, squareJSON(0.001))

	features, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, features, 1)
}

func TestParseBareGeometry(t *testing.T) {
	features, err := Parse([]byte(squareJSON(0.001)))
	require.NoError(t, err)
	require.Len(t, features, 1)
}

func TestParseRejectsOversizedPolygon(t *testing.T) {
	// 0.05° is several kilometers on a side, far over 1 km².
	_, err := Parse([]byte(squareJSON(0.05)))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, verr.Feature)
	assert.Greater(t, verr.Area, float64(MaxArea))
}

func TestParseRejectsNonPolygon(t *testing.T) {
	data := `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}`

	_, err := Parse([]byte(data))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "Point")
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"hello": "world"}`))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.geojson")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.True(t, errors.Unwrap(perr) != nil)
}

func TestParseValidatesMultiPolygonParts(t *testing.T) {
	big := squareJSON(0.05)
	data := fmt.Sprintf(`{"type":"MultiPolygon","coordinates":[%s]}`, polygonCoords(big))

	_, err := Parse([]byte(data))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

// polygonCoords strips a polygon JSON down to its coordinates array.
func polygonCoords(polygon string) string {
	const prefix = `{"type":"Polygon","coordinates":`
	return polygon[len(prefix) : len(polygon)-1]
}
