package client

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-imagery-client/pkg/imagery"
)

// DefaultWorkers bounds concurrent polygon queries when the caller does not
// ask for a specific pool size.
const DefaultWorkers = 20

// QueryRange fetches frames for every (polygon, day) pair in
// [start, end] and returns them grouped per input feature, ordered by day.
// Requests run on a pool of at most workers goroutines; each request writes
// into its own slot, so scheduling order never affects output order. The
// first failure cancels the remaining requests.
func (c *Client) QueryRange(ctx context.Context, features []*geojson.Feature, start, end time.Time, workers int) ([][]imagery.Frame, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("client: end day %s before start day %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	days := daysBetween(start, end)
	slots := make([][]imagery.Frame, len(features)*len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for fi, feature := range features {
		for di, day := range days {
			slot := fi*len(days) + di
			geom := feature.Geometry
			day := day
			g.Go(func() error {
				frames, err := c.QueryPolygon(gctx, geom, day)
				if err != nil {
					return fmt.Errorf("query day %s: %w", day.Format("2006-01-02"), err)
				}
				slots[slot] = frames
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([][]imagery.Frame, len(features))
	for fi := range features {
		var frames []imagery.Frame
		for di := range days {
			frames = append(frames, slots[fi*len(days)+di]...)
		}
		frames = imagery.FilterDayBounds(frames, start, end)
		imagery.SortByTime(frames)
		results[fi] = frames
	}
	return results, nil
}

func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
