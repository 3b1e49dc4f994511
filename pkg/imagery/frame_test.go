package imagery

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameUnmarshalKeepsExtraFields(t *testing.T) {
	data := []byte(`{
		"url": "https://imagery.example.com/keyframes/abc/0.jpg?sig=xyz",
		"timestamp": "2023-06-01T12:00:00.500Z",
		"sequence": "seq-1",
		"idx": 3,
		"position": {"lat": 37.77, "lon": -122.41},
		"azimuth": 182.5,
		"device": "bee"
	}`)

	var frame Frame
	require.NoError(t, json.Unmarshal(data, &frame))

	assert.Equal(t, "https://imagery.example.com/keyframes/abc/0.jpg?sig=xyz", frame.URL)
	assert.Equal(t, "seq-1", frame.Sequence)
	assert.Equal(t, 3, frame.Index)
	assert.Equal(t, 37.77, frame.Position.Lat)
	assert.Equal(t, -122.41, frame.Position.Lon)
	assert.Equal(t, time.Date(2023, 6, 1, 12, 0, 0, 500_000_000, time.UTC), frame.Timestamp.Time)

	require.Contains(t, frame.Extra, "azimuth")
	require.Contains(t, frame.Extra, "device")
	assert.NotContains(t, frame.Extra, "url")
}

func TestFrameMetadataExcludesURL(t *testing.T) {
	var frame Frame
	require.NoError(t, json.Unmarshal([]byte(`{
		"url": "https://imagery.example.com/a.jpg",
		"timestamp": "2023-06-01T12:00:00Z",
		"sequence": "seq-1",
		"idx": 0,
		"position": {"lat": 1, "lon": 2},
		"speed": 12.2
	}`), &frame))

	meta := frame.Metadata()
	assert.NotContains(t, meta, "url")
	assert.Contains(t, meta, "timestamp")
	assert.Contains(t, meta, "speed")
	assert.Equal(t, "seq-1", meta["sequence"])
}

func TestFrameMarshalRoundTrip(t *testing.T) {
	original := []byte(`{"url":"u","timestamp":"2023-06-01T12:00:00Z","sequence":"s","idx":1,"position":{"lat":1,"lon":2},"extra":"kept"}`)

	var frame Frame
	require.NoError(t, json.Unmarshal(original, &frame))

	data, err := json.Marshal(frame)
	require.NoError(t, err)

	var again Frame
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, frame.URL, again.URL)
	assert.Equal(t, frame.Sequence, again.Sequence)
	assert.True(t, frame.Timestamp.Equal(again.Timestamp.Time))
	assert.Contains(t, again.Extra, "extra")
}

func TestParseTimestampVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2023-06-01T10:30:00Z", time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"fractional", "2023-06-01T10:30:00.250Z", time.Date(2023, 6, 1, 10, 30, 0, 250_000_000, time.UTC)},
		{"zoneless", "2023-06-01T10:30:00", time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"zoneless fractional", "2023-06-01T10:30:00.25", time.Date(2023, 6, 1, 10, 30, 0, 250_000_000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("June 1st")
	assert.Error(t, err)
}

func testFrame(ts time.Time, seq string, idx int) Frame {
	return Frame{
		Timestamp: Timestamp{Time: ts},
		Sequence:  seq,
		Index:     idx,
	}
}

func TestSortByTime(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	frames := []Frame{
		testFrame(base.Add(2*time.Minute), "b", 0),
		testFrame(base, "a", 1),
		testFrame(base, "a", 0),
		testFrame(base.Add(time.Minute), "c", 0),
	}

	SortByTime(frames)

	assert.Equal(t, 0, frames[0].Index)
	assert.Equal(t, "a", frames[0].Sequence)
	assert.Equal(t, 1, frames[1].Index)
	assert.Equal(t, "c", frames[2].Sequence)
	assert.Equal(t, "b", frames[3].Sequence)
}

func TestFilterDayBounds(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC)

	frames := []Frame{
		testFrame(start.Add(-time.Second), "before", 0),
		testFrame(start, "first", 0),
		testFrame(end.Add(23*time.Hour), "last", 0),
		testFrame(end.Add(24*time.Hour), "after", 0),
	}

	kept := FilterDayBounds(frames, start, end)
	require.Len(t, kept, 2)
	assert.Equal(t, "first", kept[0].Sequence)
	assert.Equal(t, "last", kept[1].Sequence)
}
