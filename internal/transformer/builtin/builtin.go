// Package builtin contains the column rules used by bank-marketing
// projections and a factory that builds them from pipeline configuration.
package builtin

import (
	"database/sql"
	"fmt"

	"bankmarketing/internal/config"
	"bankmarketing/internal/transformer"
)

// text returns the string held by a cell. ok is false for missing values.
func text(v any) (s string, ok bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case sql.NullString:
		return t.String, t.Valid
	case nil:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

// Build constructs the transformer chain for one table.
func Build(ts []config.Transform) (transformer.Chain, error) {
	chain := make(transformer.Chain, 0, len(ts))
	for i, t := range ts {
		o := t.Options
		switch t.Kind {
		case "replace":
			chain = append(chain, Replace{
				Field: o.String("field", ""),
				Old:   o.String("old", ""),
				New:   o.String("new", ""),
			})
		case "null_if":
			chain = append(chain, NullIf{
				Field: o.String("field", ""),
				Value: o.String("value", ""),
			})
		case "binary":
			chain = append(chain, Binary{
				Field:  o.String("field", ""),
				Truthy: o.String("truthy", ""),
			})
		case "contact_date":
			chain = append(chain, ContactDate{
				MonthField: o.String("month_field", "month"),
				DayField:   o.String("day_field", "day"),
				Year:       o.Int("year", DefaultYear),
				Target:     o.String("target", "last_contact_date"),
			})
		default:
			return nil, fmt.Errorf("transform[%d]: unknown kind %q", i, t.Kind)
		}
	}
	return chain, nil
}

// Projections builds one Projection per configured table, in order.
func Projections(tables []config.Table) ([]transformer.Projection, error) {
	out := make([]transformer.Projection, 0, len(tables))
	for _, t := range tables {
		chain, err := Build(t.Transform)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		out = append(out, transformer.Projection{
			Name:    t.Name,
			File:    t.File,
			Select:  t.Select,
			Steps:   chain,
			Columns: t.Contract.Columns(),
		})
	}
	return out, nil
}
