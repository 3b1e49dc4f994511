// Package enhance applies contrast-limited adaptive histogram equalization
// (CLAHE) to downloaded imagery by shelling out to ImageMagick.
package enhance

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Stock CLAHE parameters.
const (
	DefaultXPercent = 15
	DefaultYPercent = 30
	DefaultBins     = 512
	DefaultClip     = 1.0
)

// Params configures a CLAHE pass. Tile dimensions are expressed as
// percentages of the image size.
type Params struct {
	XPercent int
	YPercent int
	Bins     int
	Clip     float64
}

// DefaultParams returns the stock CLAHE parameters.
func DefaultParams() Params {
	return Params{
		XPercent: DefaultXPercent,
		YPercent: DefaultYPercent,
		Bins:     DefaultBins,
		Clip:     DefaultClip,
	}
}

// CLAHE runs ImageMagick's -clahe operator on inPath, writing to outPath.
func CLAHE(ctx context.Context, inPath, outPath string, p Params) error {
	spec := fmt.Sprintf("%dx%d%%+%d+%s", p.XPercent, p.YPercent, p.Bins,
		strconv.FormatFloat(p.Clip, 'f', -1, 64))
	cmd := exec.CommandContext(ctx, "convert", inPath, "-clahe", spec, outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("enhance: convert -clahe: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Stats holds grayscale brightness statistics for one image.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// BrightnessStats reads grayscale brightness statistics via
// `magick <in> -colorspace gray -verbose info:`.
func BrightnessStats(ctx context.Context, inPath string) (Stats, error) {
	cmd := exec.CommandContext(ctx, "magick", inPath, "-colorspace", "gray", "-verbose", "info:")
	out, err := cmd.Output()
	if err != nil {
		return Stats{}, fmt.Errorf("enhance: magick info: %w", err)
	}
	return parseStats(string(out))
}

// parseStats extracts min/max/mean/median lines from ImageMagick's verbose
// info output. Lines look like "min: 0 (0)".
func parseStats(out string) (Stats, error) {
	var stats Stats
	seen := 0

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) < 2 {
			continue
		}
		key := strings.TrimSuffix(fields[0], ":")
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		switch key {
		case "min":
			stats.Min = value
		case "max":
			stats.Max = value
		case "mean":
			stats.Mean = value
		case "median":
			stats.Median = value
		default:
			continue
		}
		seen++
	}
	if seen < 4 {
		return stats, fmt.Errorf("enhance: incomplete brightness statistics")
	}
	return stats, nil
}

// SmartCLAHE derives the clip limit from the image's own brightness spread,
// clip = (max-min)/median, falling back to the mean for degenerate images.
func SmartCLAHE(ctx context.Context, inPath, outPath string) error {
	stats, err := BrightnessStats(ctx, inPath)
	if err != nil {
		return err
	}

	p := DefaultParams()
	if stats.Median > 0 {
		p.Clip = (stats.Max - stats.Min) / stats.Median
	} else {
		p.Clip = stats.Mean
	}
	return CLAHE(ctx, inPath, outPath, p)
}
