package table

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/danthegoodman1/tabula/utils"
)

var (
	ErrNoSuchColumn    = errors.New("no such column")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmptyResult     = errors.New("empty result set")
	ErrBadTableName    = utils.PermError("bad table name")
)

type (
	// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
	Queryer interface {
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	}

	// Table is a reflected table: its name and its columns in declared order.
	Table struct {
		Name    string
		Columns []string
	}

	Row struct {
		// The list of column names, same order as ColVals
		ColNames []string
		// The list of column values, same order as ColNames
		ColVals []any
	}

	ResultSet struct {
		Columns []string
		Rows    []Row
	}
)

func quoteIdent(s string) string {
	return `"` + s + `"`
}

// Reflect loads a table's column names from the database without reading
// any of its rows.
func Reflect(ctx context.Context, q Queryer, name string) (Table, error) {
	if !utils.IsIdentifier(name) {
		return Table{}, fmt.Errorf("%w: %q", ErrBadTableName, name)
	}
	rows, err := q.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name)+" LIMIT 0")
	if err != nil {
		return Table{}, fmt.Errorf("error reflecting table %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Table{}, fmt.Errorf("error in rows.Columns: %w", err)
	}
	return Table{Name: name, Columns: cols}, nil
}

// Select builds a statement selecting every reflected column.
func (t Table) Select() string {
	quoted := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = quoteIdent(c)
	}
	return "SELECT " + strings.Join(quoted, ", ") + " FROM " + quoteIdent(t.Name)
}

// FetchAll executes query and reads every row into memory.
func FetchAll(ctx context.Context, q Queryer, query string, args ...any) (ResultSet, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return ResultSet{}, fmt.Errorf("error in QueryContext: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return ResultSet{}, fmt.Errorf("error in rows.Columns: %w", err)
	}

	rs := ResultSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultSet{}, fmt.Errorf("error in rows.Scan: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, Row{ColNames: cols, ColVals: vals})
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}

func (rs ResultSet) Len() int {
	return len(rs.Rows)
}

func (rs ResultSet) First() (Row, error) {
	if len(rs.Rows) == 0 {
		return Row{}, ErrEmptyResult
	}
	return rs.Rows[0], nil
}

// At returns the value in column position i.
func (r Row) At(i int) (any, error) {
	if i < 0 || i >= len(r.ColVals) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(r.ColVals))
	}
	return r.ColVals[i], nil
}

// Get returns the value of the named column.
func (r Row) Get(name string) (any, error) {
	i := utils.IndexOfString(r.ColNames, name)
	if i == -1 {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchColumn, name)
	}
	return r.ColVals[i], nil
}

// String renders the row as a tuple, e.g. ('Illinois', 'M', 0, 89600, 95012).
func (r Row) String() string {
	parts := make([]string, len(r.ColVals))
	for i, v := range r.ColVals {
		parts[i] = FormatValue(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FormatValue quotes strings and prints NULL for nil.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", `\'`) + "'"
	default:
		return fmt.Sprint(val)
	}
}
