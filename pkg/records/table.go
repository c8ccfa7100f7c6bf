// Package records defines the in-memory tables that flow through the ETL
// pipeline.
//
// Two shapes exist:
//
//   - Table holds raw text cells exactly as decoded from a CSV source, with
//     the header taken from the first line. The unified input of a run is a
//     Table built by appending every per-archive Table in read order.
//   - Frame holds typed cells ([]any) for a projection. Transforms rewrite a
//     Frame in place, and emitters format it back to text with Format.
package records

import (
	"fmt"
	"sort"
	"strings"
)

// Table is a header plus rows of raw text cells, in read order.
type Table struct {
	// Source names where the rows came from (archive path or "unified").
	Source string

	// Header lists the column names exactly as read.
	Header []string

	// Rows holds one []string per data line, aligned with Header.
	Rows [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column name in the header.
func (t *Table) Index(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Append adds the rows of other to t, preserving order.
//
// An empty t adopts other's header. Otherwise both headers must contain the
// same set of column names; when the order differs, other's cells are
// realigned to t's header. A different column set, or a header naming a
// column more than once, yields a *SchemaMismatchError.
func (t *Table) Append(other Table) error {
	if rep := Repeated(other.Header); len(rep) > 0 {
		return &SchemaMismatchError{Source: other.Source, Want: t.Header, Got: other.Header, Repeated: rep}
	}
	if t.Header == nil {
		t.Header = append([]string(nil), other.Header...)
		t.Rows = append(t.Rows, other.Rows...)
		return nil
	}

	if !sameSet(t.Header, other.Header) {
		return &SchemaMismatchError{Source: other.Source, Want: t.Header, Got: other.Header}
	}

	if equalOrder(t.Header, other.Header) {
		t.Rows = append(t.Rows, other.Rows...)
		return nil
	}

	pos := make([]int, len(t.Header))
	for i, h := range t.Header {
		j, _ := other.Index(h)
		pos[i] = j
	}
	for _, row := range other.Rows {
		aligned := make([]string, len(pos))
		for i, j := range pos {
			aligned[i] = row[j]
		}
		t.Rows = append(t.Rows, aligned)
	}
	return nil
}

// SchemaMismatchError reports a column set that differs from the expected
// one, either between archives or between a table and a column selection.
type SchemaMismatchError struct {
	Source   string
	Want     []string
	Got      []string
	Repeated []string // column names Got lists more than once
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Repeated) > 0 {
		return fmt.Sprintf("schema mismatch in %s: repeated=[%s]", e.Source, strings.Join(e.Repeated, ","))
	}
	missing := Missing(e.Want, e.Got)
	extra := Missing(e.Got, e.Want)
	var b strings.Builder
	fmt.Fprintf(&b, "schema mismatch in %s", e.Source)
	if len(missing) > 0 {
		fmt.Fprintf(&b, ": missing=[%s]", strings.Join(missing, ","))
	}
	if len(extra) > 0 {
		fmt.Fprintf(&b, ": unexpected=[%s]", strings.Join(extra, ","))
	}
	return b.String()
}

// Missing returns the names in want that are absent from got, sorted.
func Missing(want, got []string) []string {
	have := make(map[string]struct{}, len(got))
	for _, g := range got {
		have[g] = struct{}{}
	}
	var out []string
	for _, w := range want {
		if _, ok := have[w]; !ok {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// Repeated returns the names that occur more than once in header, sorted.
func Repeated(header []string) []string {
	seen := make(map[string]int, len(header))
	var out []string
	for _, h := range header {
		seen[h]++
		if seen[h] == 2 {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return len(Missing(a, b)) == 0 && len(Missing(b, a)) == 0
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
