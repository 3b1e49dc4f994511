// Package stitch connects time-ordered imagery frames into line paths. Two
// consecutive frames join the open path when they are close enough in space
// and time, and once a path has direction, when the bearing change at the
// joint stays under the angle threshold.
package stitch

import (
	"math"
	"time"

	"github.com/paulmach/orb/geo"

	"github.com/robert-malhotra/go-imagery-client/pkg/imagery"
)

// Default thresholds, matching the provider's capture cadence: frames a few
// seconds apart along a vehicle track.
const (
	DefaultMaxDistance = 20.0 // meters
	DefaultMaxLag      = 300 * time.Second
	DefaultMaxAngle    = 30.0 // degrees
)

// Thresholds bound when two consecutive frames belong to the same path.
type Thresholds struct {
	MaxDistance float64       // meters between consecutive frame centers
	MaxLag      time.Duration // capture-time gap between consecutive frames
	MaxAngle    float64       // degrees of bearing change at a path vertex
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDistance: DefaultMaxDistance,
		MaxLag:      DefaultMaxLag,
		MaxAngle:    DefaultMaxAngle,
	}
}

// Path is an ordered run of frames forming one line. Paths always hold at
// least two frames.
type Path []imagery.Frame

// Stitch walks the frames in capture order and greedily joins consecutive
// frames that satisfy the thresholds. Frames that end up alone are dropped;
// fewer than two input frames yields no paths. Re-stitching the frames of a
// returned path reproduces that path.
func Stitch(frames []imagery.Frame, t Thresholds) []Path {
	if len(frames) < 2 {
		return nil
	}

	ordered := make([]imagery.Frame, len(frames))
	copy(ordered, frames)
	imagery.SortByTime(ordered)

	var paths []Path
	current := Path{ordered[0]}
	for _, next := range ordered[1:] {
		if connects(current, next, t) {
			current = append(current, next)
			continue
		}
		if len(current) >= 2 {
			paths = append(paths, current)
		}
		current = Path{next}
	}
	if len(current) >= 2 {
		paths = append(paths, current)
	}
	return paths
}

func connects(path Path, next imagery.Frame, t Thresholds) bool {
	last := path[len(path)-1]

	if next.Timestamp.Sub(last.Timestamp.Time) > t.MaxLag {
		return false
	}
	if geo.Distance(last.Point(), next.Point()) > t.MaxDistance {
		return false
	}
	if len(path) >= 2 {
		prev := path[len(path)-2]
		inbound := geo.Bearing(prev.Point(), last.Point())
		outbound := geo.Bearing(last.Point(), next.Point())
		if angularDelta(inbound, outbound) > t.MaxAngle {
			return false
		}
	}
	return true
}

// angularDelta is the absolute difference between two bearings, wrapped so it
// never exceeds 180 degrees.
func angularDelta(a, b float64) float64 {
	delta := math.Abs(a - b)
	if delta > 180 {
		delta = 360 - delta
	}
	return delta
}
