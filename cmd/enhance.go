package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-imagery-client/pkg/enhance"
)

var (
	enhanceInputFlag = &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Image to enhance",
		Required: true,
	}
	enhanceOutputFlag = &cli.StringFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "Destination for the enhanced image",
		Required: true,
	}
	enhanceSmartFlag = &cli.BoolFlag{
		Name:  "smart",
		Usage: "Derive the clip limit from the image's brightness spread",
	}
	enhanceXPctFlag = &cli.IntFlag{
		Name:  "x_pct",
		Usage: "CLAHE tile width as a percentage of image width",
		Value: enhance.DefaultXPercent,
	}
	enhanceYPctFlag = &cli.IntFlag{
		Name:  "y_pct",
		Usage: "CLAHE tile height as a percentage of image height",
		Value: enhance.DefaultYPercent,
	}
	enhanceBinsFlag = &cli.IntFlag{
		Name:  "bins",
		Usage: "CLAHE histogram bins",
		Value: enhance.DefaultBins,
	}
	enhanceClipFlag = &cli.FloatFlag{
		Name:  "clip",
		Usage: "CLAHE contrast clip limit",
		Value: enhance.DefaultClip,
	}
)

func newEnhanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "enhance",
		Usage: "Apply CLAHE contrast enhancement to a downloaded frame (requires ImageMagick)",
		Flags: []cli.Flag{
			enhanceInputFlag, enhanceOutputFlag, enhanceSmartFlag,
			enhanceXPctFlag, enhanceYPctFlag, enhanceBinsFlag, enhanceClipFlag,
		},
		Action: enhanceAction,
	}
}

func enhanceAction(ctx context.Context, cmd *cli.Command) error {
	configureLogging(cmd.Bool(verboseFlag.Name))

	in := cmd.String(enhanceInputFlag.Name)
	out := cmd.String(enhanceOutputFlag.Name)

	if cmd.Bool(enhanceSmartFlag.Name) {
		if err := enhance.SmartCLAHE(ctx, in, out); err != nil {
			return err
		}
	} else {
		params := enhance.Params{
			XPercent: int(cmd.Int(enhanceXPctFlag.Name)),
			YPercent: int(cmd.Int(enhanceYPctFlag.Name)),
			Bins:     int(cmd.Int(enhanceBinsFlag.Name)),
			Clip:     cmd.Float(enhanceClipFlag.Name),
		}
		if err := enhance.CLAHE(ctx, in, out, params); err != nil {
			return err
		}
	}

	log.Info().Str("input", in).Str("output", out).Msg("enhanced image")
	return nil
}
