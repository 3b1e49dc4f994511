package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-imagery-client/auth"
	"github.com/robert-malhotra/go-imagery-client/pkg/aoi"
	"github.com/robert-malhotra/go-imagery-client/pkg/client"
	"github.com/robert-malhotra/go-imagery-client/pkg/downloader"
	"github.com/robert-malhotra/go-imagery-client/pkg/export"
	"github.com/robert-malhotra/go-imagery-client/pkg/imagery"
	"github.com/robert-malhotra/go-imagery-client/pkg/stitch"
)

var (
	geojsonFlag = &cli.StringFlag{
		Name:     "geojson",
		Aliases:  []string{"i"},
		Usage:    "Input GeoJSON file (Polygon Feature or FeatureCollection)",
		Required: true,
	}
	startDayFlag = &cli.TimestampFlag{
		Name:     "start_day",
		Aliases:  []string{"s"},
		Usage:    "First capture day to query (YYYY-MM-DD)",
		Required: true,
		Config:   cli.TimestampConfig{Layouts: []string{"2006-01-02"}},
	}
	endDayFlag = &cli.TimestampFlag{
		Name:     "end_day",
		Aliases:  []string{"e"},
		Usage:    "Last capture day to query, inclusive (YYYY-MM-DD)",
		Required: true,
		Config:   cli.TimestampConfig{Layouts: []string{"2006-01-02"}},
	}
	stitchFlag = &cli.BoolFlag{
		Name:    "stitch",
		Aliases: []string{"x"},
		Usage:   "Connect frames into line paths before writing output",
	}
	maxDistFlag = &cli.FloatFlag{
		Name:    "max_dist",
		Aliases: []string{"d"},
		Usage:   "Stitch: max meters between consecutive frames",
		Value:   stitch.DefaultMaxDistance,
	}
	maxLagFlag = &cli.FloatFlag{
		Name:    "max_lag",
		Aliases: []string{"l"},
		Usage:   "Stitch: max seconds between consecutive frames",
		Value:   stitch.DefaultMaxLag.Seconds(),
	}
	maxAngleFlag = &cli.FloatFlag{
		Name:    "max_angle",
		Aliases: []string{"z"},
		Usage:   "Stitch: max bearing change in degrees at a path vertex",
		Value:   stitch.DefaultMaxAngle,
	}
	outputDirFlag = &cli.StringFlag{
		Name:     "output_dir",
		Aliases:  []string{"o"},
		Usage:    "Directory for downloaded frames and exports",
		Required: true,
	}
	exportGeoJSONFlag = &cli.BoolFlag{
		Name:    "export_geojson",
		Aliases: []string{"g"},
		Usage:   "Also write the results as " + export.FileName,
	}
	authorizationFlag = &cli.StringFlag{
		Name:     "authorization",
		Aliases:  []string{"a"},
		Usage:    "API token: base64 of username:apiKey",
		Required: true,
		Sources:  cli.EnvVars("HIVEMAPPER_AUTHORIZATION"),
	}
	numThreadsFlag = &cli.IntFlag{
		Name:    "num_threads",
		Aliases: []string{"c"},
		Usage:   "Concurrent API queries and downloads",
		Value:   client.DefaultWorkers,
	}
	apiURLFlag = &cli.StringFlag{
		Name:  "url",
		Usage: "Imagery API base URL",
		Value: client.DefaultBaseURL,
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "HTTP client timeout (e.g. 30s, 1m)",
		Value: 30 * time.Second,
	}
)

func newQueryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Fetch imagery for a GeoJSON area and date range",
		Flags: []cli.Flag{
			geojsonFlag, startDayFlag, endDayFlag, stitchFlag,
			maxDistFlag, maxLagFlag, maxAngleFlag, outputDirFlag,
			exportGeoJSONFlag, authorizationFlag, numThreadsFlag,
			apiURLFlag, timeoutFlag,
		},
		Action: queryAction,
	}
}

func queryAction(ctx context.Context, cmd *cli.Command) error {
	configureLogging(cmd.Bool(verboseFlag.Name))

	start := cmd.Timestamp(startDayFlag.Name)
	end := cmd.Timestamp(endDayFlag.Name)
	if end.Before(start) {
		return fmt.Errorf("end_day %s is before start_day %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	features, err := aoi.Load(cmd.String(geojsonFlag.Name))
	if err != nil {
		return err
	}

	c, err := client.New(
		client.WithBaseURL(cmd.String(apiURLFlag.Name)),
		client.WithTimeout(cmd.Duration(timeoutFlag.Name)),
		client.WithTransport(&auth.TokenTransport{Token: cmd.String(authorizationFlag.Name)}),
		client.WithLogger(clientLogger{}),
	)
	if err != nil {
		return err
	}

	workers := int(cmd.Int(numThreadsFlag.Name))
	log.Debug().
		Int("features", len(features)).
		Int("workers", workers).
		Time("start", start).
		Time("end", end).
		Msg("querying imagery")

	perPolygon, err := c.QueryRange(ctx, features, start, end, workers)
	if err != nil {
		return err
	}

	total := 0
	for _, frames := range perPolygon {
		total += len(frames)
	}
	log.Info().Int("frames", total).Msg("query complete")
	if total == 0 {
		return nil
	}

	outputDir := cmd.String(outputDirFlag.Name)
	opts := downloader.Options{Workers: workers}

	if cmd.Bool(stitchFlag.Name) {
		thresholds := stitch.Thresholds{
			MaxDistance: cmd.Float(maxDistFlag.Name),
			MaxLag:      time.Duration(cmd.Float(maxLagFlag.Name) * float64(time.Second)),
			MaxAngle:    cmd.Float(maxAngleFlag.Name),
		}

		var paths []stitch.Path
		for _, frames := range perPolygon {
			paths = append(paths, stitch.Stitch(frames, thresholds)...)
		}
		log.Info().Int("paths", len(paths)).Msg("stitched frames")

		for i, path := range paths {
			dir := filepath.Join(outputDir, strconv.Itoa(i))
			if err := downloader.FetchFrames(ctx, path, dir, opts); err != nil {
				return err
			}
		}

		if cmd.Bool(exportGeoJSONFlag.Name) {
			if err := export.Write(filepath.Join(outputDir, export.FileName), export.Lines(paths)); err != nil {
				return err
			}
		}
	} else {
		var all []imagery.Frame
		for _, frames := range perPolygon {
			all = append(all, frames...)
		}

		opts.PreserveDirs = true
		if err := downloader.FetchFrames(ctx, all, outputDir, opts); err != nil {
			return err
		}

		if cmd.Bool(exportGeoJSONFlag.Name) {
			if err := export.Write(filepath.Join(outputDir, export.FileName), export.Points(all)); err != nil {
				return err
			}
		}
	}

	log.Info().Int("frames", total).Str("dir", outputDir).Msg("frames saved")
	return nil
}
