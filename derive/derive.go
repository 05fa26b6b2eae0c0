package derive

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
)

type (
	DerivePlan struct {
		Func string
		Args []string
		As   string
	}

	DeriveFunc func(row map[string]any, args []string) (any, error)
)

var (
	Functions = make(map[string]DeriveFunc)
	register  sync.Once

	ErrFuncNotFound = errors.New("derive function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrBadArg            = errors.New("bad argument")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")
	ErrMissingValue      = errors.New("missing value")
)

var dateLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	time.RFC3339,
	"2006-01-02",
}

func RegisterFunctions() {
	register.Do(func() {
		// scaledProduct(a, b, factor) = int(a * b * factor), truncated toward zero
		Functions["scaledProduct"] = func(row map[string]any, args []string) (any, error) {
			if len(args) < 3 {
				return nil, ErrMissingArgs
			}
			a, err := numeric(row, args[0])
			if err != nil {
				return nil, err
			}
			b, err := numeric(row, args[1])
			if err != nil {
				return nil, err
			}
			factor, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return nil, fmt.Errorf("factor %q: %w", args[2], ErrBadArg)
			}
			return int(a * b * factor), nil
		}
		Functions["toYear"] = func(row map[string]any, args []string) (any, error) {
			t, err := parseTime(row, args)
			if err != nil {
				return nil, fmt.Errorf("error in parseTime: %w", err)
			}

			return t.Year(), nil
		}
		Functions["toMonth"] = func(row map[string]any, args []string) (any, error) {
			t, err := parseTime(row, args)
			if err != nil {
				return nil, fmt.Errorf("error in parseTime: %w", err)
			}

			return int(t.Month()), nil
		}
		Functions["toDay"] = func(row map[string]any, args []string) (any, error) {
			t, err := parseTime(row, args)
			if err != nil {
				return nil, fmt.Errorf("error in parseTime: %w", err)
			}

			return t.Day(), nil
		}
	})
}

func DeriveRow(row map[string]any, plan DerivePlan) (any, error) {
	f, ok := Functions[plan.Func]
	if !ok {
		return nil, ErrFuncNotFound
	}

	v, err := f(row, plan.Args)
	if err != nil {
		return nil, fmt.Errorf("error processing derive function %s: %w", plan.Func, err)
	}
	return v, nil
}

func numeric(row map[string]any, key string) (float64, error) {
	value, exists := row[key]
	if !exists {
		return 0, ErrMissingColumns
	}

	var f float64
	switch v := value.(type) {
	case nil:
		return 0, fmt.Errorf("column %s: %w", key, ErrMissingValue)
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, ErrInvalidColumnType
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("column %s: %w", key, ErrMissingValue)
	}
	return f, nil
}

func parseTime(row map[string]any, args []string) (t time.Time, err error) {
	if len(args) == 0 {
		err = ErrMissingArgs
		return
	}

	key := args[0]

	value, exists := row[key]
	if !exists {
		err = ErrMissingColumns
		return
	}

	switch v := value.(type) {
	case string:
		for _, layout := range dateLayouts {
			if t, err = time.Parse(layout, v); err == nil {
				return
			}
		}
		err = fmt.Errorf("error in time.Parse for %q: %w", v, ErrInvalidColumnType)
	case float64:
		// unix millis
		t = time.UnixMilli(int64(v)).UTC()
	default:
		err = ErrInvalidColumnType
	}
	return
}
