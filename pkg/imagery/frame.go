// Package imagery defines the domain types returned by the imagery API.
package imagery

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/paulmach/orb"
)

// Position is the center coordinate of a captured frame.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Frame is a single image returned for one polygon query. It is immutable
// once fetched; provider fields we do not model are preserved in Extra so
// metadata sidecars round-trip them.
type Frame struct {
	URL       string
	Timestamp Timestamp
	Sequence  string
	Index     int
	Position  Position

	// Extra holds provider fields outside the modeled set.
	Extra map[string]json.RawMessage
}

type frameAlias struct {
	URL       string    `json:"url"`
	Timestamp Timestamp `json:"timestamp"`
	Sequence  string    `json:"sequence"`
	Index     int       `json:"idx"`
	Position  Position  `json:"position"`
}

var frameKeys = map[string]bool{
	"url":       true,
	"timestamp": true,
	"sequence":  true,
	"idx":       true,
	"position":  true,
}

// UnmarshalJSON decodes the modeled fields and stashes everything else in Extra.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var known frameAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.URL = known.URL
	f.Timestamp = known.Timestamp
	f.Sequence = known.Sequence
	f.Index = known.Index
	f.Position = known.Position
	f.Extra = nil
	for key, value := range raw {
		if frameKeys[key] {
			continue
		}
		if f.Extra == nil {
			f.Extra = make(map[string]json.RawMessage)
		}
		f.Extra[key] = value
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (f Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.metadata(true))
}

// Metadata returns the frame's provider fields minus the signed URL, suitable
// for writing as a sidecar next to the downloaded image.
func (f Frame) Metadata() map[string]any {
	return f.metadata(false)
}

func (f Frame) metadata(includeURL bool) map[string]any {
	out := map[string]any{
		"timestamp": f.Timestamp,
		"sequence":  f.Sequence,
		"idx":       f.Index,
		"position":  f.Position,
	}
	if includeURL {
		out["url"] = f.URL
	}
	for key, value := range f.Extra {
		out[key] = value
	}
	return out
}

// Point returns the frame center as an orb point (lon, lat order).
func (f Frame) Point() orb.Point {
	return orb.Point{f.Position.Lon, f.Position.Lat}
}

// SortByTime orders frames by capture time, then by sequence and index so
// ties within a capture sequence keep their recorded order.
func SortByTime(frames []Frame) {
	sort.SliceStable(frames, func(i, j int) bool {
		a, b := frames[i], frames[j]
		if !a.Timestamp.Equal(b.Timestamp.Time) {
			return a.Timestamp.Before(b.Timestamp.Time)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.Index < b.Index
	})
}

// FilterDayBounds keeps frames captured within [start, end + 24h). The
// provider buckets imagery by capture day, so the end day is inclusive.
func FilterDayBounds(frames []Frame, start, end time.Time) []Frame {
	upper := end.AddDate(0, 0, 1)
	out := frames[:0:0]
	for _, f := range frames {
		t := f.Timestamp.Time
		if t.Before(start) || !t.Before(upper) {
			continue
		}
		out = append(out, f)
	}
	return out
}
