package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInfo = `Image:
  Filename: frame.jpg
  Format: JPEG (Joint Photographic Experts Group JFIF format)
  Geometry: 2048x1536+0+0
  Colorspace: Gray
  Channel statistics:
    Pixels: 3145728
    Gray:
      min: 12 (0.0470588)
      max: 243 (0.952941)
      mean: 104.387 (0.409361)
      median: 98 (0.384314)
      standard deviation: 41.2 (0.161569)
`

func TestParseStats(t *testing.T) {
	stats, err := parseStats(sampleInfo)
	require.NoError(t, err)

	assert.Equal(t, 12.0, stats.Min)
	assert.Equal(t, 243.0, stats.Max)
	assert.InDelta(t, 104.387, stats.Mean, 1e-6)
	assert.Equal(t, 98.0, stats.Median)
}

func TestParseStatsIncomplete(t *testing.T) {
	_, err := parseStats("min: 3 (0.01)\nmax: 200 (0.78)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}

func TestParseStatsEmpty(t *testing.T) {
	_, err := parseStats("")
	assert.Error(t, err)
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 15, p.XPercent)
	assert.Equal(t, 30, p.YPercent)
	assert.Equal(t, 512, p.Bins)
	assert.Equal(t, 1.0, p.Clip)
}
