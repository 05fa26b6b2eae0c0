package parquet_accumulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xitongsys/parquet-go/writer"
)

var ErrNoColumns = errors.New("frame has no columns")

// zero values standing in for a column's type when accumulating the schema
func sampleFor(t series.Type) any {
	switch t {
	case series.Int:
		return 0
	case series.Float:
		return 0.0
	case series.Bool:
		return false
	default:
		return ""
	}
}

// WriteFrame writes df as parquet to w. Column names become sanitized field
// names and missing cells become nulls.
func WriteFrame(df dataframe.DataFrame, w io.Writer) (ParquetSchemaAccumulator, error) {
	psa := NewParquetAccumulator()
	names := df.Names()
	if len(names) == 0 {
		return psa, ErrNoColumns
	}

	samples := make([]any, len(names))
	for i, name := range names {
		samples[i] = sampleFor(df.Col(name).Type())
	}
	psa.WriteRow(names, samples)

	parquetSchema, err := psa.GetSchemaString()
	if err != nil {
		return psa, fmt.Errorf("error in GetSchemaString: %w", err)
	}

	pw, err := writer.NewJSONWriterFromWriter(parquetSchema, w, 4)
	if err != nil {
		return psa, fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
	}

	cols := make([]series.Series, len(names))
	fields := make([]string, len(names))
	for i, name := range names {
		cols[i] = df.Col(name)
		fields[i], _ = psa.FieldName(name)
	}

	for row := 0; row < df.Nrow(); row++ {
		rowMap := make(map[string]any, len(names))
		for i, col := range cols {
			rowMap[fields[i]] = col.Elem(row).Val()
		}
		b, err := json.Marshal(rowMap)
		if err != nil {
			return psa, fmt.Errorf("error in json.Marshal for row %d: %w", row, err)
		}
		if err := pw.Write(string(b)); err != nil {
			return psa, fmt.Errorf("error writing row %d: %w", row, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return psa, fmt.Errorf("error in WriteStop: %w", err)
	}
	return psa, nil
}
