package storage

import (
	"fmt"
	"strconv"
	"time"

	"bankmarketing/pkg/records"
)

// CoerceRows converts text cells in place to the Go types drivers bind for
// each column kind: int -> int64, float -> float64, date -> time.Time when
// dates is true. Empty text becomes nil. Non-text cells are left as they are.
func CoerceRows(kinds []string, rows [][]any, dates bool) error {
	for r, row := range rows {
		if len(row) != len(kinds) {
			return fmt.Errorf("row %d: %d cells for %d columns", r, len(row), len(kinds))
		}
		for i, v := range row {
			s, ok := v.(string)
			if !ok {
				continue
			}
			cell, err := coerce(kinds[i], s, dates)
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", r, i, err)
			}
			row[i] = cell
		}
	}
	return nil
}

func coerce(kind, s string, dates bool) (any, error) {
	if s == "" && kind != "text" {
		return nil, nil
	}
	switch kind {
	case "int":
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse int %q: %w", s, err)
		}
		return n, nil
	case "float":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", s, err)
		}
		return f, nil
	case "date":
		if !dates {
			return s, nil
		}
		t, err := time.Parse(records.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", s, err)
		}
		return t, nil
	default:
		return s, nil
	}
}
