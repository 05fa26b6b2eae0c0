package charts

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG")

func TestHistogramLogAxes(t *testing.T) {
	values := []float64{0, 0, 120, 450, 1000, 2500, 9000, 40000, math.NaN(), 310000}
	c, err := Histogram(values, Options{
		Title:    "Existing Zoning Sqft",
		XLabel:   "Existing Zoning Sqft",
		LogX:     true,
		LogY:     true,
		Rotation: 70,
	})
	require.NoError(t, err)
	// two zeros and a NaN cannot sit on a log axis
	assert.Equal(t, 3, c.Dropped)
	assert.InDelta(t, 70*math.Pi/180, c.Plot.X.Tick.Label.Rotation, 1e-9)

	out, err := c.Render()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, pngMagic))
}

func TestHistogramLinear(t *testing.T) {
	c, err := Histogram([]float64{-5, 0, 1, 2, 3}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Dropped)
}

func TestHistogramNoValues(t *testing.T) {
	_, err := Histogram([]float64{0, -1}, Options{LogX: true})
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestScatter(t *testing.T) {
	c, err := Scatter([]float64{1960, 1961, 1962}, []float64{2e7, math.NaN(), 2.2e7}, Options{
		XLabel: "Year",
		YLabel: "Total Urban Population",
		Format: "svg",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Dropped)

	out, err := c.Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")

	_, err = Scatter([]float64{1}, []float64{1, 2}, Options{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestBarPositionalLabels(t *testing.T) {
	c, err := Bar([]float64{5.2, math.NaN(), -1.1}, []string{"Athens", "Paris"}, Options{
		Title:    "Is there a Host Country Advantage?",
		YLabel:   "% Change of Host Country Medal Count",
		Rotation: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Dropped)

	ticks := c.Plot.X.Tick.Marker.Ticks(c.Plot.X.Min, c.Plot.X.Max)
	var labels []string
	for _, tk := range ticks {
		if tk.Label != "" {
			labels = append(labels, tk.Label)
		}
	}
	assert.Equal(t, []string{"Athens", "Paris"}, labels)

	out, err := c.Render()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, pngMagic))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, "png", FormatFor("a.png"))
	assert.Equal(t, "svg", FormatFor("a.SVG"))
	assert.Equal(t, "png", FormatFor("a"))
}
