// Package schema describes the shape of output tables: ordered, typed,
// optionally nullable fields. Contracts drive the output column order of a
// projection and the DDL generated for database sinks.
package schema

// Field is one output column.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "int" | "float" | "text" | "date"
	Nullable bool   `json:"nullable,omitempty"`
}

// Contract is the ordered field list of one output table.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Columns returns the field names in order.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Kinds returns the normalized field types in order.
func (c Contract) Kinds() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = NormalizeKind(f.Type)
	}
	return out
}

// NormalizeKind maps loosely written type names onto the small set used by
// DDL builders and loaders: int, float, date, text.
func NormalizeKind(t string) string {
	switch t {
	case "int", "integer", "bigint", "int8", "int4", "bool", "boolean":
		return "int"
	case "float", "double", "real", "numeric", "decimal":
		return "float"
	case "date":
		return "date"
	default:
		return "text"
	}
}
