package exercises

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/tabula/charts"
	"github.com/danthegoodman1/tabula/frame"
)

const ZoningColumn = "Existing Zoning Sqft"

// ZoningHistogram summarizes Existing Zoning Sqft and plots its histogram on
// log axes, tick labels rotated 70 degrees.
func ZoningHistogram(ctx context.Context, env Env, in Inputs) (Outcome, error) {
	df, err := readFrame(ctx, env, in, "filings")
	if err != nil {
		return Outcome{}, err
	}

	summary, err := frame.Describe(df, ZoningColumn)
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Describe: %w", err)
	}

	values, err := frame.Floats(df, ZoningColumn)
	if err != nil {
		return Outcome{}, err
	}
	chart, err := charts.Histogram(values, charts.Options{
		XLabel:   ZoningColumn,
		YLabel:   "Frequency",
		LogX:     true,
		LogY:     true,
		Rotation: 70,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Histogram: %w", err)
	}

	primary, err := frame.Select(df, ZoningColumn)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Text: summary.String(), Primary: primary, Chart: chart}, nil
}
