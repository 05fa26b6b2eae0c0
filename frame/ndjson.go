package frame

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/danthegoodman1/gojsonutils"
	"github.com/go-gota/gota/dataframe"
)

var (
	ErrNotFlatMap = errors.New("not a flat map")
	ErrNotObject  = errors.New("line was not a JSON object")
	ErrNoRows     = errors.New("no JSON objects")
)

// flattenSep joins nested keys, gojsonutils' default.
const flattenSep = "__"

// ReadNDJSON reads one JSON object per line. Nested objects are flattened
// into "__" joined column names. Columns keep the order their keys first
// appear in the input.
func ReadNDJSON(r io.Reader) (dataframe.DataFrame, error) {
	var (
		rows     []map[string]any
		colnames []string
		seen     = map[string]bool{}
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var raw any
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("error in json.Unmarshal on line %d: %w", line, err)
		}
		jsonMap, ok := raw.(map[string]any)
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("line %d: %w", line, ErrNotObject)
		}
		flat, err := gojsonutils.Flatten(jsonMap, nil)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("error flattening line %d: %w", line, err)
		}
		flatMap, ok := flat.(map[string]any)
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("line %d: %w", line, ErrNotFlatMap)
		}

		order, err := keyOrder(text)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("error reading keys on line %d: %w", line, err)
		}
		for _, key := range orderedKeys(flatMap, order) {
			if !seen[key] {
				seen[key] = true
				colnames = append(colnames, key)
			}
		}
		rows = append(rows, flatMap)
	}
	if err := scanner.Err(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error scanning NDJSON: %w", err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, ErrNoRows
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, colnames)
	for _, row := range rows {
		record := make([]string, len(colnames))
		for i, col := range colnames {
			if v, ok := row[col]; ok && v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		records = append(records, record)
	}

	df := dataframe.LoadRecords(records, dataframe.HasHeader(true), dataframe.NaNValues(nanValues))
	if df.Err != nil {
		return df, fmt.Errorf("error in dataframe.LoadRecords: %w", df.Err)
	}
	return df, nil
}

// keyOrder lists every key path of a JSON document in the order written.
func keyOrder(doc string) (map[string]int, error) {
	var keys []string
	dec := json.NewDecoder(strings.NewReader(doc))
	if err := walkKeys(dec, "", &keys); err != nil {
		return nil, err
	}
	order := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, ok := order[k]; !ok {
			order[k] = i
		}
	}
	return order, nil
}

func walkKeys(dec *json.Decoder, prefix string, keys *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch tok {
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			path, _ := keyTok.(string)
			if prefix != "" {
				path = prefix + flattenSep + path
			}
			*keys = append(*keys, path)
			if err := walkKeys(dec, path, keys); err != nil {
				return err
			}
		}
		_, err = dec.Token()
		return err
	case json.Delim('['):
		for dec.More() {
			if err := walkKeys(dec, prefix, keys); err != nil {
				return err
			}
		}
		_, err = dec.Token()
		return err
	}
	return nil
}

// orderedKeys sorts the keys of row by where they were written, keys the
// walk did not see go last in name order.
func orderedKeys(row map[string]any, order map[string]int) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, iok := order[keys[i]]
		pj, jok := order[keys[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
