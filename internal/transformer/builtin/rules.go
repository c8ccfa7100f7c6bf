package builtin

import (
	"database/sql"
	"strings"

	"bankmarketing/pkg/records"
)

// Replace substitutes every occurrence of Old with New in Field. Missing
// values stay missing.
type Replace struct {
	Field string
	Old   string
	New   string
}

func (r Replace) Apply(f *records.Frame) error {
	i, err := f.MustIndex(r.Field)
	if err != nil {
		return err
	}
	for _, row := range f.Rows {
		switch v := row[i].(type) {
		case string:
			row[i] = strings.ReplaceAll(v, r.Old, r.New)
		case sql.NullString:
			if v.Valid {
				row[i] = sql.NullString{String: strings.ReplaceAll(v.String, r.Old, r.New), Valid: true}
			}
		}
	}
	return nil
}

// NullIf marks cells of Field equal to Value as missing.
type NullIf struct {
	Field string
	Value string
}

func (n NullIf) Apply(f *records.Frame) error {
	i, err := f.MustIndex(n.Field)
	if err != nil {
		return err
	}
	for _, row := range f.Rows {
		if s, ok := text(row[i]); ok && s == n.Value {
			row[i] = sql.NullString{}
		}
	}
	return nil
}

// Binary encodes Field as 1 when it equals Truthy exactly and 0 otherwise,
// missing values included.
type Binary struct {
	Field  string
	Truthy string
}

func (b Binary) Apply(f *records.Frame) error {
	i, err := f.MustIndex(b.Field)
	if err != nil {
		return err
	}
	for _, row := range f.Rows {
		if s, ok := text(row[i]); ok && s == b.Truthy {
			row[i] = 1
		} else {
			row[i] = 0
		}
	}
	return nil
}
