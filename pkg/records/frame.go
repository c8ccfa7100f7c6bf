package records

import "fmt"

// Frame is a typed working table for one projection. Cells start as the raw
// string values selected from a Table; transforms may replace them with int,
// sql.NullString or other values understood by Format and DBValue.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// Select builds a Frame holding the given columns of t, in the given order.
// Every column must exist in t; otherwise a *SchemaMismatchError is returned.
func Select(t *Table, cols []string) (*Frame, error) {
	pos := make([]int, len(cols))
	for i, c := range cols {
		j, ok := t.Index(c)
		if !ok {
			return nil, &SchemaMismatchError{Source: t.Source, Want: cols, Got: t.Header}
		}
		pos[i] = j
	}

	f := &Frame{
		Columns: append([]string(nil), cols...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for r, row := range t.Rows {
		out := make([]any, len(pos))
		for i, j := range pos {
			out[i] = row[j]
		}
		f.Rows[r] = out
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Index returns the position of column name.
func (f *Frame) Index(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// MustIndex is Index with an error for absent columns.
func (f *Frame) MustIndex(name string) (int, error) {
	i, ok := f.Index(name)
	if !ok {
		return -1, fmt.Errorf("column %q not in frame %v", name, f.Columns)
	}
	return i, nil
}

// SetColumn writes vals into column name, appending the column when it does
// not exist yet. len(vals) must equal Len().
func (f *Frame) SetColumn(name string, vals []any) error {
	if len(vals) != len(f.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(vals), len(f.Rows))
	}
	if i, ok := f.Index(name); ok {
		for r := range f.Rows {
			f.Rows[r][i] = vals[r]
		}
		return nil
	}
	f.Columns = append(f.Columns, name)
	for r := range f.Rows {
		f.Rows[r] = append(f.Rows[r], vals[r])
	}
	return nil
}

// Project returns a new Frame with only cols, in that order. Cells are shared
// with f.
func (f *Frame) Project(cols []string) (*Frame, error) {
	pos := make([]int, len(cols))
	for i, c := range cols {
		j, ok := f.Index(c)
		if !ok {
			return nil, &SchemaMismatchError{Source: "projection", Want: cols, Got: f.Columns}
		}
		pos[i] = j
	}
	out := &Frame{
		Columns: append([]string(nil), cols...),
		Rows:    make([][]any, len(f.Rows)),
	}
	for r, row := range f.Rows {
		v := make([]any, len(pos))
		for i, j := range pos {
			v[i] = row[j]
		}
		out.Rows[r] = v
	}
	return out, nil
}

// StringRow formats row r for text output.
func (f *Frame) StringRow(r int) []string {
	row := f.Rows[r]
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = Format(v)
	}
	return out
}

// DBRows returns all rows with cells converted by DBValue, ready for a bulk
// loader.
func (f *Frame) DBRows() [][]any {
	out := make([][]any, len(f.Rows))
	for r, row := range f.Rows {
		v := make([]any, len(row))
		for i, c := range row {
			v[i] = DBValue(c)
		}
		out[r] = v
	}
	return out
}
