package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/danthegoodman1/tabula/gologger"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

var (
	logger = gologger.NewLogger()

	ErrNoValues       = errors.New("no plottable values")
	ErrLengthMismatch = errors.New("x and y have different lengths")
	ErrRender         = errors.New("render failed")
)

const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
	HistogramBins = 10
)

type (
	Options struct {
		Title  string
		XLabel string
		YLabel string
		LogX   bool
		LogY   bool
		// Rotation of the x tick labels, in degrees
		Rotation float64
		Width    vg.Length
		Height   vg.Length
		// Format is png, svg, pdf or eps. Defaults to png.
		Format string
	}

	// Chart is a built plot waiting to be rendered.
	Chart struct {
		Plot *plot.Plot
		// Dropped counts values that could not be drawn, like non-positive
		// values on a log axis or NaNs.
		Dropped int

		opts Options
	}
)

// FormatFor picks the image format from a file name, png when unknown.
func FormatFor(name string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")); ext {
	case "svg", "pdf", "eps", "png":
		return ext
	default:
		return "png"
	}
}

func newChart(opts Options) *Chart {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	if opts.LogX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if opts.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if opts.Rotation != 0 {
		p.X.Tick.Label.Rotation = opts.Rotation * math.Pi / 180
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}
	return &Chart{Plot: p, opts: opts}
}

// finite drops NaN and infinite values, and non-positive ones when positive is set.
func finite(values []float64, positive bool) (plotter.Values, int) {
	kept := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || (positive && v <= 0) {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(values) - len(kept)
}

// Histogram bins values into HistogramBins bins. With LogX, values <= 0
// cannot be placed on the axis and are dropped.
func Histogram(values []float64, opts Options) (*Chart, error) {
	c := newChart(opts)
	kept, dropped := finite(values, opts.LogX)
	c.Dropped = dropped
	if dropped > 0 {
		logger.Debug().Int("dropped", dropped).Msg("dropped values the histogram cannot draw")
	}
	if len(kept) == 0 {
		return nil, ErrNoValues
	}

	h, err := plotter.NewHist(kept, HistogramBins)
	if err != nil {
		return nil, fmt.Errorf("error in plotter.NewHist: %w", err)
	}
	h.LogY = opts.LogY
	c.Plot.Add(h)
	return c, nil
}

// Scatter draws (xs[i], ys[i]) points, skipping pairs with a missing value.
func Scatter(xs, ys []float64, opts Options) (*Chart, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(xs), len(ys))
	}
	c := newChart(opts)

	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) ||
			(opts.LogX && x <= 0) || (opts.LogY && y <= 0) {
			c.Dropped++
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return nil, ErrNoValues
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("error in plotter.NewScatter: %w", err)
	}
	c.Plot.Add(s)
	return c, nil
}

// Bar draws one bar per value, left to right. Missing values draw as
// zero-height bars. labels apply by position: a missing label is blank and
// extra labels are ignored.
func Bar(values []float64, labels []string, opts Options) (*Chart, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	c := newChart(opts)

	bars := make(plotter.Values, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.Dropped++
			continue
		}
		bars[i] = v
	}

	b, err := plotter.NewBarChart(bars, vg.Points(15))
	if err != nil {
		return nil, fmt.Errorf("error in plotter.NewBarChart: %w", err)
	}
	c.Plot.Add(b)

	names := make([]string, len(values))
	copy(names, labels)
	c.Plot.NominalX(names...)
	return c, nil
}

// Render draws the chart into an image of the configured format.
func (c *Chart) Render() (out []byte, err error) {
	width, height := c.opts.Width, c.opts.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	format := c.opts.Format
	if format == "" {
		format = "png"
	}

	// log scales panic on values they cannot place
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrRender, r)
		}
	}()

	wt, err := c.Plot.WriterTo(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("error in WriterTo: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("error in WriteTo: %w", err)
	}
	return buf.Bytes(), nil
}
