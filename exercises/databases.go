package exercises

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danthegoodman1/tabula/datastore"
	"github.com/danthegoodman1/tabula/frame"
	"github.com/danthegoodman1/tabula/sqldb"
	"github.com/danthegoodman1/tabula/table"
	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"
)

const CensusTable = "census"

// CensusResultSet reflects the census table, fetches every row and prints
// the first row whole, by position and by name.
func CensusResultSet(ctx context.Context, env Env, in Inputs) (Outcome, error) {
	url, cleanup, err := censusURL(ctx, env, in)
	if err != nil {
		return Outcome{}, err
	}
	defer cleanup()

	db, _, err := sqldb.Open(ctx, url)
	if err != nil {
		return Outcome{}, fmt.Errorf("error opening census db: %w", err)
	}
	defer db.Close()

	census, err := table.Reflect(ctx, db, CensusTable)
	if err != nil {
		return Outcome{}, err
	}
	results, err := table.FetchAll(ctx, db, census.Select())
	if err != nil {
		return Outcome{}, fmt.Errorf("error fetching census: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Int("rows", results.Len()).Msg("fetched census")

	firstRow, err := results.First()
	if err != nil {
		return Outcome{}, err
	}
	byPosition, err := firstRow.At(0)
	if err != nil {
		return Outcome{}, err
	}
	byName, err := firstRow.Get("state")
	if err != nil {
		return Outcome{}, err
	}

	primary, err := resultFrame(results)
	if err != nil {
		return Outcome{}, err
	}

	var b strings.Builder
	fmt.Fprintln(&b, firstRow.String())
	fmt.Fprintln(&b, byPosition)
	fmt.Fprintln(&b, byName)
	return Outcome{Text: b.String(), Primary: primary}, nil
}

// censusURL finds the census database: the configured URL, the file in a
// disk store, or a local copy of the file in any other store.
func censusURL(ctx context.Context, env Env, in Inputs) (string, func(), error) {
	noop := func() {}
	if env.CensusDBURL != "" {
		return env.CensusDBURL, noop, nil
	}
	name, err := in.get("census")
	if err != nil {
		return "", noop, err
	}
	if _, ok := env.Data.(*datastore.DiskDataStore); ok {
		return "sqlite:///" + env.Data.Location(name), noop, nil
	}

	rc, err := env.Data.Open(ctx, name)
	if err != nil {
		return "", noop, fmt.Errorf("error opening %s: %w", name, err)
	}
	defer rc.Close()

	f, err := os.CreateTemp("", "census-*.sqlite")
	if err != nil {
		return "", noop, fmt.Errorf("error in os.CreateTemp: %w", err)
	}
	cleanup := func() {
		os.Remove(f.Name())
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		cleanup()
		return "", noop, fmt.Errorf("error copying %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("error closing %s: %w", f.Name(), err)
	}
	return "sqlite:///" + f.Name(), cleanup, nil
}

func resultFrame(rs table.ResultSet) (dataframe.DataFrame, error) {
	records := make([][]string, 0, rs.Len()+1)
	records = append(records, rs.Columns)
	for _, row := range rs.Rows {
		rec := make([]string, len(row.ColVals))
		for i, v := range row.ColVals {
			if v == nil {
				rec[i] = "NaN"
				continue
			}
			rec[i] = fmt.Sprint(v)
		}
		records = append(records, rec)
	}
	return frame.FromRecords(records)
}
