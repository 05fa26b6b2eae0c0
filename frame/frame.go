// Package frame holds the table operations the exercises call. Every
// transformation is a gota call; this package only adapts arguments and
// turns gota's embedded Err into a returned error.
package frame

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/danthegoodman1/tabula/derive"
	"github.com/danthegoodman1/tabula/gologger"
	"github.com/danthegoodman1/tabula/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	logger = gologger.NewLogger()

	ErrNoSuchColumn    = errors.New("no such column")
	ErrNoCommonColumns = errors.New("no common columns to merge on")
	ErrIndexMismatch   = errors.New("index columns have different types")
	ErrBadHeadSize     = errors.New("head size must be positive")
)

// nanValues are read as missing, empty cells included.
var nanValues = []string{"", "NA", "NaN", "<nil>"}

type (
	options struct {
		delimiter rune
		types     map[string]series.Type
	}

	Option func(*options)
)

func WithDelimiter(d rune) Option {
	return func(o *options) {
		o.delimiter = d
	}
}

// WithTypes pins the types of the named columns instead of detecting them.
func WithTypes(types map[string]series.Type) Option {
	return func(o *options) {
		o.types = types
	}
}

// DelimiterFor picks tab for .tsv files and comma otherwise.
func DelimiterFor(name string) rune {
	if strings.EqualFold(path.Ext(name), ".tsv") {
		return '\t'
	}
	return ','
}

func buildOptions(opts []Option) []dataframe.LoadOption {
	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}
	loadOpts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.WithDelimiter(o.delimiter),
		dataframe.NaNValues(nanValues),
	}
	if len(o.types) > 0 {
		loadOpts = append(loadOpts, dataframe.WithTypes(o.types))
	}
	return loadOpts
}

// ReadCSV reads delimited text with a header row.
func ReadCSV(r io.Reader, opts ...Option) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, buildOptions(opts)...)
	if df.Err != nil {
		return df, fmt.Errorf("error in dataframe.ReadCSV: %w", df.Err)
	}
	return df, nil
}

// Head returns the first n rows, or all of them when there are fewer.
func Head(df dataframe.DataFrame, n int) (dataframe.DataFrame, error) {
	if n <= 0 {
		return df, ErrBadHeadSize
	}
	if df.Nrow() <= n {
		return df, nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	head := df.Subset(idx)
	if head.Err != nil {
		return head, fmt.Errorf("error in Subset: %w", head.Err)
	}
	return head, nil
}

func hasColumn(df dataframe.DataFrame, col string) error {
	if !utils.ContainsString(df.Names(), col) {
		return fmt.Errorf("%w: %q", ErrNoSuchColumn, col)
	}
	return nil
}

// Select keeps cols, in the given order.
func Select(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	for _, col := range cols {
		if err := hasColumn(df, col); err != nil {
			return df, err
		}
	}
	sel := df.Select(cols)
	if sel.Err != nil {
		return sel, fmt.Errorf("error in Select: %w", sel.Err)
	}
	return sel, nil
}

// FilterEq keeps the rows whose col equals value. A frame with no matching
// rows keeps its columns and types.
func FilterEq(df dataframe.DataFrame, col string, value string) (dataframe.DataFrame, error) {
	if err := hasColumn(df, col); err != nil {
		return df, err
	}

	matches := 0
	for _, v := range df.Col(col).Records() {
		if v == value {
			matches++
		}
	}
	if matches == 0 {
		return emptyLike(df), nil
	}

	filtered := df.Filter(dataframe.F{
		Colname:    col,
		Comparator: series.Eq,
		Comparando: value,
	})
	if filtered.Err != nil {
		return filtered, fmt.Errorf("error in Filter: %w", filtered.Err)
	}
	return filtered, nil
}

func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	cols := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		cols = append(cols, series.New([]string{}, df.Col(name).Type(), name))
	}
	return dataframe.New(cols...)
}

// DeriveScaledProduct adds the integer column name = int(a * b * factor).
func DeriveScaledProduct(df dataframe.DataFrame, a, b string, factor float64, name string) (dataframe.DataFrame, error) {
	derive.RegisterFunctions()

	for _, col := range []string{a, b} {
		if err := hasColumn(df, col); err != nil {
			return df, err
		}
	}

	plan := derive.DerivePlan{
		Func: "scaledProduct",
		Args: []string{a, b, fmt.Sprint(factor)},
		As:   name,
	}
	values := make([]int, 0, df.Nrow())
	for i, row := range df.Maps() {
		v, err := derive.DeriveRow(row, plan)
		if err != nil {
			return df, fmt.Errorf("error deriving %s for row %d: %w", name, i, err)
		}
		values = append(values, v.(int))
	}

	mutated := df.Mutate(series.New(values, series.Int, name))
	if mutated.Err != nil {
		return mutated, fmt.Errorf("error in Mutate: %w", mutated.Err)
	}
	return mutated, nil
}

// Append stacks chunk under acc, matching columns by name. An accumulator
// with no columns adopts the chunk.
// Columns whose types differ are widened on both sides first, since RBind
// would convert the chunk to the accumulator's type.
func Append(acc, chunk dataframe.DataFrame) (dataframe.DataFrame, error) {
	if acc.Ncol() == 0 {
		return chunk, nil
	}

	types := make(map[string]series.Type, acc.Ncol())
	for _, name := range acc.Names() {
		if !utils.ContainsString(chunk.Names(), name) {
			continue
		}
		types[name] = widenType(acc.Col(name).Type(), chunk.Col(name).Type())
	}
	acc, err := castColumns(acc, types)
	if err != nil {
		return acc, err
	}
	chunk, err = castColumns(chunk, types)
	if err != nil {
		return chunk, err
	}

	combined := acc.RBind(chunk)
	if combined.Err != nil {
		return combined, fmt.Errorf("error in RBind: %w", combined.Err)
	}
	return combined, nil
}

// ConcatColumns puts b beside a, aligned on each frame's first (index)
// column. Rows are the sorted union of both indexes; cells an input had no
// row for are missing (NaN).
func ConcatColumns(a, b dataframe.DataFrame) (dataframe.DataFrame, error) {
	if a.Ncol() == 0 || b.Ncol() == 0 {
		return a, fmt.Errorf("%w: index column", ErrNoSuchColumn)
	}
	index := a.Names()[0]
	bIndex := b.Names()[0]
	if a.Col(index).Type() != b.Col(bIndex).Type() {
		return a, fmt.Errorf("%w: %s vs %s", ErrIndexMismatch, a.Col(index).Type(), b.Col(bIndex).Type())
	}
	if bIndex != index {
		b = b.Rename(index, bIndex)
		if b.Err != nil {
			return b, fmt.Errorf("error in Rename: %w", b.Err)
		}
	}

	joined := a.OuterJoin(b, index)
	if joined.Err != nil {
		return joined, fmt.Errorf("error in OuterJoin: %w", joined.Err)
	}
	return SetIndexSorted(joined, index)
}

// CommonColumns lists the column names of a that b also has, in a's order.
func CommonColumns(a, b dataframe.DataFrame) []string {
	var common []string
	bNames := b.Names()
	for _, name := range a.Names() {
		if utils.ContainsString(bNames, name) {
			common = append(common, name)
		}
	}
	return common
}

// Merge inner joins a and b on every column name they share.
func Merge(a, b dataframe.DataFrame) (dataframe.DataFrame, error) {
	keys := CommonColumns(a, b)
	if len(keys) == 0 {
		return a, ErrNoCommonColumns
	}
	logger.Debug().Strs("keys", keys).Msg("merging on common columns")

	merged := a.InnerJoin(b, keys...)
	if merged.Err != nil {
		return merged, fmt.Errorf("error in InnerJoin: %w", merged.Err)
	}
	return merged, nil
}

// SetIndexSorted orders the rows by col, ascending.
func SetIndexSorted(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	if err := hasColumn(df, col); err != nil {
		return df, err
	}
	sorted := df.Arrange(dataframe.Sort(col))
	if sorted.Err != nil {
		return sorted, fmt.Errorf("error in Arrange: %w", sorted.Err)
	}
	return sorted, nil
}

// Floats returns a column as float64s, NaN where missing.
func Floats(df dataframe.DataFrame, col string) ([]float64, error) {
	if err := hasColumn(df, col); err != nil {
		return nil, err
	}
	return df.Col(col).Float(), nil
}

// Strings returns a column's values as text.
func Strings(df dataframe.DataFrame, col string) ([]string, error) {
	if err := hasColumn(df, col); err != nil {
		return nil, err
	}
	return df.Col(col).Records(), nil
}

// widenType is the narrowest type holding values of both a and b. Bools
// mixed with anything else become strings.
func widenType(a, b series.Type) series.Type {
	switch {
	case a == b:
		return a
	case a == series.String || b == series.String:
		return series.String
	case a == series.Bool || b == series.Bool:
		return series.String
	default:
		// int and float
		return series.Float
	}
}

// castColumns converts the named columns of df whose type differs. Cells
// go through their text form, so missing values stay missing.
func castColumns(df dataframe.DataFrame, types map[string]series.Type) (dataframe.DataFrame, error) {
	for _, name := range df.Names() {
		t, ok := types[name]
		col := df.Col(name)
		if !ok || col.Type() == t {
			continue
		}
		df = df.Mutate(series.New(col.Records(), t, name))
		if df.Err != nil {
			return df, fmt.Errorf("error casting %s to %s: %w", name, t, df.Err)
		}
	}
	return df, nil
}
