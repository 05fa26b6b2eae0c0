package exercises

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/danthegoodman1/tabula/charts"
	"github.com/danthegoodman1/tabula/datastore"
	"github.com/danthegoodman1/tabula/frame"
	"github.com/danthegoodman1/tabula/gologger"
	"github.com/danthegoodman1/tabula/parquet_accumulator"
	"github.com/danthegoodman1/tabula/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"
)

const DefaultHeadRows = 5

var (
	logger = gologger.NewLogger()

	Exercises = make(map[string]ExerciseFunc)
	register  sync.Once

	ErrMissingInput = errors.New("missing input in catalog")
)

type (
	// Env is everything a run reads from and writes to. Plots and Exports
	// may be nil, in which case charts are built but not stored and nothing
	// is exported.
	Env struct {
		Data    datastore.DataStore
		Plots   datastore.DataStore
		Exports datastore.DataStore
		// CensusDBURL overrides the census database in Data
		CensusDBURL string
		// HeadRows is how many rows head() prints, DefaultHeadRows when 0
		HeadRows int
	}

	// Outcome is what an exercise produced, before anything is stored.
	Outcome struct {
		Text string
		// Primary is the table the exercise is about, exported when asked
		Primary dataframe.DataFrame
		Chart   *charts.Chart
	}

	ExerciseFunc func(ctx context.Context, env Env, in Inputs) (Outcome, error)

	// Inputs are an exercise's catalog inputs
	Inputs map[string]string

	Result struct {
		Exercise       string
		RunID          string
		Text           string
		Rows           int
		PlotLocation   string `json:",omitempty"`
		ExportLocation string `json:",omitempty"`
		// Values the chart could not draw
		DroppedValues int `json:",omitempty"`
		DurationMS    int64
	}
)

func RegisterExercises() {
	register.Do(func() {
		Exercises["flat-files"] = FlatFiles
		Exercises["multiple-files"] = MultipleFiles
		Exercises["histogram"] = ZoningHistogram
		Exercises["concat-columns"] = ConcatWeather
		Exercises["host-country"] = HostCountry
		Exercises["chunked-load"] = ChunkedLoad
		Exercises["result-set"] = CensusResultSet
	})
}

func (env Env) headRows() int {
	if env.HeadRows <= 0 {
		return DefaultHeadRows
	}
	return env.HeadRows
}

func (in Inputs) get(key string) (string, error) {
	p, ok := in[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingInput, key)
	}
	return p, nil
}

// readFrame loads a catalog input from the data store: NDJSON for .ndjson
// and .jsonl, tab separated for .tsv, otherwise CSV.
func readFrame(ctx context.Context, env Env, in Inputs, key string, opts ...frame.Option) (dataframe.DataFrame, error) {
	name, err := in.get(key)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	rc, err := env.Data.Open(ctx, name)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error opening %s: %w", name, err)
	}
	defer rc.Close()

	var df dataframe.DataFrame
	if isNDJSON(name) {
		df, err = frame.ReadNDJSON(rc)
	} else {
		opts = append([]frame.Option{frame.WithDelimiter(frame.DelimiterFor(name))}, opts...)
		df, err = frame.ReadCSV(rc, opts...)
	}
	if err != nil {
		return df, fmt.Errorf("error reading %s: %w", name, err)
	}
	zerolog.Ctx(ctx).Debug().Str("input", name).Int("rows", df.Nrow()).Msg("read input")
	return df, nil
}

// Run runs the named exercise, then stores its chart and export.
func Run(ctx context.Context, name string, env Env) (*Result, error) {
	RegisterExercises()

	catalog, err := GetCatalog()
	if err != nil {
		return nil, fmt.Errorf("error in GetCatalog: %w", err)
	}
	entry, err := catalog.Get(name)
	if err != nil {
		return nil, err
	}
	ex, ok := Exercises[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExercise, name)
	}

	runID := utils.GenKSortedID("")
	ctx = gologger.WithRunID(ctx, runID)
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("exercise", name).Msg("running exercise")

	start := time.Now()
	out, err := ex(ctx, env, entry.Inputs)
	if err != nil {
		observeRun(name, "error", time.Since(start))
		return nil, fmt.Errorf("error running %s: %w", name, err)
	}

	res := &Result{
		Exercise: name,
		RunID:    runID,
		Text:     out.Text,
		Rows:     out.Primary.Nrow(),
	}

	if out.Chart != nil {
		res.DroppedValues = out.Chart.Dropped
		if env.Plots != nil {
			res.PlotLocation, err = storeChart(ctx, env.Plots, fmt.Sprintf("%s_%s.png", name, runID), out.Chart)
			if err != nil {
				observeRun(name, "error", time.Since(start))
				return nil, err
			}
		}
	}

	if env.Exports != nil && out.Primary.Ncol() > 0 {
		res.ExportLocation, err = storeExport(ctx, env.Exports, name+".parquet", out.Primary)
		if err != nil {
			observeRun(name, "error", time.Since(start))
			return nil, err
		}
	}

	elapsed := time.Since(start)
	res.DurationMS = elapsed.Milliseconds()
	observeRun(name, "ok", elapsed)
	logger.Info().Str("exercise", name).Int("rows", res.Rows).Int64("durationMS", res.DurationMS).Msg("ran exercise")
	return res, nil
}

func storeChart(ctx context.Context, store datastore.DataStore, fileName string, c *charts.Chart) (string, error) {
	b, err := c.Render()
	if err != nil {
		return "", fmt.Errorf("error rendering chart: %w", err)
	}
	if err := store.Put(ctx, fileName, bytes.NewReader(b)); err != nil {
		return "", fmt.Errorf("error storing chart: %w", err)
	}
	return store.Location(fileName), nil
}

func storeExport(ctx context.Context, store datastore.DataStore, fileName string, df dataframe.DataFrame) (string, error) {
	var b bytes.Buffer
	psa, err := parquet_accumulator.WriteFrame(df, &b)
	if err != nil {
		return "", fmt.Errorf("error in WriteFrame: %w", err)
	}
	byteLen := b.Len()
	if err := store.Put(ctx, fileName, &b); err != nil {
		return "", fmt.Errorf("error storing export: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Strs("columns", psa.GetColumnNames()).Int("bytes", byteLen).Msg("exported primary table")
	return store.Location(fileName), nil
}

func isNDJSON(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".ndjson" || ext == ".jsonl"
}
