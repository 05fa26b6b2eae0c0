package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Format prints every row of df with a leading row number, columns aligned.
// Missing cells print as NaN.
func Format(df dataframe.DataFrame) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	names := df.Names()
	fmt.Fprintln(w, "\t"+strings.Join(names, "\t"))

	cols := make([][]string, len(names))
	for i, name := range names {
		cols[i] = cellStrings(df.Col(name))
	}
	for row := 0; row < df.Nrow(); row++ {
		cells := make([]string, 0, len(names)+1)
		cells = append(cells, strconv.Itoa(row))
		for i := range names {
			cells = append(cells, cols[i][row])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()

	fmt.Fprintf(&b, "\n[%d rows x %d columns]\n", df.Nrow(), df.Ncol())
	return b.String()
}

func cellStrings(s series.Series) []string {
	if s.Type() != series.Float {
		return s.Records()
	}
	out := make([]string, s.Len())
	for i, v := range s.Float() {
		if math.IsNaN(v) {
			out[i] = "NaN"
			continue
		}
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}

// FromRecords loads rows of text, the first being the header, detecting
// column types.
func FromRecords(records [][]string) (dataframe.DataFrame, error) {
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return df, fmt.Errorf("error in dataframe.LoadRecords: %w", df.Err)
	}
	return df, nil
}
