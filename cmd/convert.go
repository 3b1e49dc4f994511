package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-imagery-client/pkg/aoi"
	"github.com/robert-malhotra/go-imagery-client/pkg/export"
	"github.com/robert-malhotra/go-imagery-client/pkg/geom"
)

var (
	convertGeoJSONFlag = &cli.StringFlag{
		Name:    "geojson",
		Aliases: []string{"i"},
		Usage:   "Input GeoJSON file (points, linestrings, or polygons)",
	}
	convertCSVFlag = &cli.StringFlag{
		Name:  "csv",
		Usage: "Input CSV file with lat/lon columns",
	}
	convertOutputFlag = &cli.StringFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "Output GeoJSON file of query-ready polygons",
		Required: true,
	}
	convertWidthFlag = &cli.FloatFlag{
		Name:    "width",
		Aliases: []string{"w"},
		Usage:   "Square/corridor width in meters",
		Value:   geom.DefaultWidth,
	}
	convertIDFieldFlag = &cli.StringFlag{
		Name:    "id_field",
		Aliases: []string{"I"},
		Usage:   "CSV column carried through as an id property",
	}
)

func newConvertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Turn points, lines, or oversized polygons into query-ready areas",
		Flags: []cli.Flag{
			convertGeoJSONFlag, convertCSVFlag, convertOutputFlag,
			convertWidthFlag, convertIDFieldFlag,
		},
		Action: convertAction,
	}
}

func convertAction(ctx context.Context, cmd *cli.Command) error {
	configureLogging(cmd.Bool(verboseFlag.Name))

	geojsonPath := cmd.String(convertGeoJSONFlag.Name)
	csvPath := cmd.String(convertCSVFlag.Name)
	width := cmd.Float(convertWidthFlag.Name)

	var (
		converted []*geojson.Feature
		err       error
	)
	switch {
	case geojsonPath != "" && csvPath != "":
		return fmt.Errorf("pass either --geojson or --csv, not both")
	case geojsonPath != "":
		converted, err = convertGeoJSON(geojsonPath, width)
	case csvPath != "":
		converted, err = convertCSV(csvPath, width, cmd.String(convertIDFieldFlag.Name))
	default:
		return fmt.Errorf("one of --geojson or --csv is required")
	}
	if err != nil {
		return err
	}

	fc := geojson.NewFeatureCollection()
	for _, f := range converted {
		fc.Append(f)
	}

	outPath := cmd.String(convertOutputFlag.Name)
	if err := export.Write(outPath, fc); err != nil {
		return err
	}

	log.Info().Int("features", len(converted)).Str("path", outPath).Msg("wrote query polygons")
	return nil
}

func convertGeoJSON(path string, width float64) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	features, err := aoi.Decode(data)
	if err != nil {
		return nil, err
	}

	var out []*geojson.Feature
	for _, f := range features {
		converted, err := geom.Convert(f, width)
		if err != nil {
			return nil, err
		}
		out = append(out, converted...)
	}
	return out, nil
}

func convertCSV(path string, width float64, idField string) ([]*geojson.Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return geom.FromCSV(f, width, idField)
}
