package exercises

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/tabula/charts"
	"github.com/danthegoodman1/tabula/frame"
	"github.com/rs/zerolog"
)

var editionColumns = []string{"Edition", "Grand Total", "City", "Country"}

// ConcatWeather puts the quarterly max and monthly mean temperatures side by
// side on their month index. Months without a quarterly max are NaN.
func ConcatWeather(ctx context.Context, env Env, in Inputs) (Outcome, error) {
	weatherMax, err := readFrame(ctx, env, in, "max")
	if err != nil {
		return Outcome{}, err
	}
	weatherMean, err := readFrame(ctx, env, in, "mean")
	if err != nil {
		return Outcome{}, err
	}

	weather, err := frame.ConcatColumns(weatherMax, weatherMean)
	if err != nil {
		return Outcome{}, fmt.Errorf("error in ConcatColumns: %w", err)
	}
	return Outcome{Text: frame.Format(weather), Primary: weather}, nil
}

// HostCountry merges the host of each edition with the medal change, sorts
// by edition and plots the change as bars labelled with the host city.
func HostCountry(ctx context.Context, env Env, in Inputs) (Outcome, error) {
	editions, err := readFrame(ctx, env, in, "editions")
	if err != nil {
		return Outcome{}, err
	}
	editions, err = frame.Select(editions, editionColumns...)
	if err != nil {
		return Outcome{}, err
	}

	hosts, err := readFrame(ctx, env, in, "hosts")
	if err != nil {
		return Outcome{}, err
	}
	reshaped, err := readFrame(ctx, env, in, "reshaped")
	if err != nil {
		return Outcome{}, err
	}

	merged, err := frame.Merge(reshaped, hosts)
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Merge: %w", err)
	}
	influence, err := frame.SetIndexSorted(merged, "Edition")
	if err != nil {
		return Outcome{}, err
	}

	change, err := frame.Floats(influence, "Change")
	if err != nil {
		return Outcome{}, err
	}
	cities, err := frame.Strings(editions, "City")
	if err != nil {
		return Outcome{}, err
	}
	if len(cities) != len(change) {
		zerolog.Ctx(ctx).Warn().Int("bars", len(change)).Int("labels", len(cities)).Msg("city labels do not line up with bars")
	}

	chart, err := charts.Bar(change, cities, charts.Options{
		Title:    "Is there a Host Country Advantage?",
		YLabel:   "% Change of Host Country Medal Count",
		Rotation: 90,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Bar: %w", err)
	}
	return Outcome{Text: frame.Format(influence), Primary: influence, Chart: chart}, nil
}
