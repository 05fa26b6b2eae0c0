package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var ErrBadChunkSize = errors.New("chunk size must be positive")

type (
	// ChunkReader reads a delimited file size rows at a time. Types are
	// detected per chunk and only ever widen (int to float to string): a
	// chunk narrower than what came before is cast up, a wider one widens
	// the running types. Types passed with WithTypes stay fixed.
	ChunkReader struct {
		r      *csv.Reader
		size   int
		header []string
		opts   []Option
		types  map[string]series.Type
		done   bool
		chunks int
	}
)

func NewChunkReader(r io.Reader, size int, opts ...Option) (*ChunkReader, error) {
	if size <= 0 {
		return nil, ErrBadChunkSize
	}

	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(r)
	cr.Comma = o.delimiter

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	types := make(map[string]series.Type, len(o.types))
	for name, t := range o.types {
		types[name] = t
	}

	return &ChunkReader{
		r:      cr,
		size:   size,
		header: header,
		opts:   opts,
		types:  types,
	}, nil
}

// Next returns the next chunk, or io.EOF once the file is exhausted.
func (c *ChunkReader) Next() (dataframe.DataFrame, error) {
	if c.done {
		return dataframe.DataFrame{}, io.EOF
	}

	records := [][]string{c.header}
	for len(records)-1 < c.size {
		rec, err := c.r.Read()
		if errors.Is(err, io.EOF) {
			c.done = true
			break
		}
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("error reading chunk %d: %w", c.chunks, err)
		}
		records = append(records, rec)
	}
	if len(records) == 1 {
		return dataframe.DataFrame{}, io.EOF
	}

	df := dataframe.LoadRecords(records, buildOptions(c.opts)...)
	if df.Err != nil {
		return df, fmt.Errorf("error in dataframe.LoadRecords for chunk %d: %w", c.chunks, df.Err)
	}

	for _, name := range df.Names() {
		t, seen := c.types[name]
		if !seen {
			c.types[name] = df.Col(name).Type()
			continue
		}
		c.types[name] = widenType(t, df.Col(name).Type())
	}
	df, err := castColumns(df, c.types)
	if err != nil {
		return df, fmt.Errorf("error casting chunk %d: %w", c.chunks, err)
	}
	c.chunks++
	logger.Debug().Int("chunk", c.chunks).Int("rows", df.Nrow()).Msg("read chunk")

	return df, nil
}

// Chunks is the number of chunks returned so far.
func (c *ChunkReader) Chunks() int {
	return c.chunks
}
