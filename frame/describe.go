package frame

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoValues = errors.New("column has no values")

type (
	// Summary holds the statistics of one numeric column, NaNs excluded.
	Summary struct {
		Column string
		Count  int
		Mean   float64
		Std    float64
		Min    float64
		Q25    float64
		Q50    float64
		Q75    float64
		Max    float64
	}
)

func Describe(df dataframe.DataFrame, col string) (Summary, error) {
	raw, err := Floats(df, col)
	if err != nil {
		return Summary{}, err
	}

	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("%w: %q", ErrNoValues, col)
	}
	sort.Float64s(values)

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = math.NaN()
	}
	return Summary{
		Column: col,
		Count:  len(values),
		Mean:   mean,
		Std:    std,
		Min:    floats.Min(values),
		Q25:    quantile(values, 0.25),
		Q50:    quantile(values, 0.5),
		Q75:    quantile(values, 0.75),
		Max:    floats.Max(values),
	}, nil
}

// quantile interpolates linearly between the closest ranks of sorted.
// gonum's stat.Quantile estimators place the ranks differently.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func (s Summary) String() string {
	var b strings.Builder
	rows := []struct {
		name string
		v    float64
	}{
		{"count", float64(s.Count)},
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.Q25},
		{"50%", s.Q50},
		{"75%", s.Q75},
		{"max", s.Max},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%-6s %14.6f\n", r.name, r.v)
	}
	fmt.Fprintf(&b, "Name: %s, dtype: float64", s.Column)
	return b.String()
}
