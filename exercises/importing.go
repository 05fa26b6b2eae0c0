package exercises

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danthegoodman1/tabula/charts"
	"github.com/danthegoodman1/tabula/frame"
	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"
)

const (
	PopulationChunkSize = 1000
	CountryCodeColumn   = "CountryCode"
	PopulationCountry   = "CEB"
	TotalPopColumn      = "Total Population"
	UrbanPctColumn      = "Urban population (% of total)"
	UrbanPopColumn      = "Total Urban Population"
)

var ErrNoMatchingRows = errors.New("no rows matched")

// FlatFiles prints the head of the titanic passenger list.
func FlatFiles(ctx context.Context, env Env, in Inputs) (Outcome, error) {
	df, err := readFrame(ctx, env, in, "titanic")
	if err != nil {
		return Outcome{}, err
	}
	head, err := frame.Head(df, env.headRows())
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Head: %w", err)
	}
	return Outcome{Text: frame.Format(head), Primary: df}, nil
}

// MultipleFiles reads the bronze, silver and gold medal tables and prints
// the head of gold.
func MultipleFiles(ctx context.Context, env Env, in Inputs) (Outcome, error) {
	medals := map[string]dataframe.DataFrame{}
	for _, key := range []string{"bronze", "silver", "gold"} {
		df, err := readFrame(ctx, env, in, key)
		if err != nil {
			return Outcome{}, err
		}
		medals[key] = df
	}
	zerolog.Ctx(ctx).Debug().
		Int("bronze", medals["bronze"].Nrow()).
		Int("silver", medals["silver"].Nrow()).
		Msg("read medal tables")

	gold := medals["gold"]
	head, err := frame.Head(gold, env.headRows())
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Head: %w", err)
	}
	return Outcome{Text: frame.Format(head), Primary: gold}, nil
}

// ChunkedLoad reads the world population file a chunk at a time, keeps the
// CEB rows of each chunk with their urban population derived, and scatters
// urban population by year.
func ChunkedLoad(ctx context.Context, env Env, in Inputs) (Outcome, error) {
	name, err := in.get("population")
	if err != nil {
		return Outcome{}, err
	}
	rc, err := env.Data.Open(ctx, name)
	if err != nil {
		return Outcome{}, fmt.Errorf("error opening %s: %w", name, err)
	}
	defer rc.Close()

	data, chunks, err := accumulateUrbanPopulation(rc, PopulationChunkSize)
	if err != nil {
		return Outcome{}, err
	}
	zerolog.Ctx(ctx).Debug().Int("chunks", chunks).Int("rows", data.Nrow()).Msg("aggregated chunks")

	years, err := frame.Floats(data, "Year")
	if err != nil {
		return Outcome{}, err
	}
	urban, err := frame.Floats(data, UrbanPopColumn)
	if err != nil {
		return Outcome{}, err
	}
	chart, err := charts.Scatter(years, urban, charts.Options{
		XLabel: "Year",
		YLabel: UrbanPopColumn,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Scatter: %w", err)
	}

	head, err := frame.Head(data, env.headRows())
	if err != nil {
		return Outcome{}, fmt.Errorf("error in Head: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s rows from %d chunks\n", data.Nrow(), PopulationCountry, chunks)
	b.WriteString(frame.Format(head))
	return Outcome{Text: b.String(), Primary: data, Chart: chart}, nil
}

// accumulateUrbanPopulation returns the combined filtered chunks and how many
// chunks were read.
func accumulateUrbanPopulation(r io.Reader, chunkSize int) (dataframe.DataFrame, int, error) {
	cr, err := frame.NewChunkReader(r, chunkSize)
	if err != nil {
		return dataframe.DataFrame{}, 0, err
	}

	var data dataframe.DataFrame
	for {
		chunk, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return data, cr.Chunks(), fmt.Errorf("error reading chunk %d: %w", cr.Chunks(), err)
		}

		ceb, err := frame.FilterEq(chunk, CountryCodeColumn, PopulationCountry)
		if err != nil {
			return data, cr.Chunks(), fmt.Errorf("error in FilterEq: %w", err)
		}
		if ceb.Nrow() == 0 {
			continue
		}
		ceb, err = frame.DeriveScaledProduct(ceb, TotalPopColumn, UrbanPctColumn, 0.01, UrbanPopColumn)
		if err != nil {
			return data, cr.Chunks(), fmt.Errorf("error in DeriveScaledProduct: %w", err)
		}
		data, err = frame.Append(data, ceb)
		if err != nil {
			return data, cr.Chunks(), fmt.Errorf("error in Append: %w", err)
		}
	}

	if data.Nrow() == 0 {
		return data, cr.Chunks(), fmt.Errorf("%w: %s == %s", ErrNoMatchingRows, CountryCodeColumn, PopulationCountry)
	}
	return data, cr.Chunks(), nil
}
