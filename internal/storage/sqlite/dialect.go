package sqlite

import (
	"strings"

	"bankmarketing/internal/ddl"
)

func sqliteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// MapType maps a contract kind to a SQLite storage class. Dates are stored as
// ISO-8601 text.
func MapType(kind string) string {
	switch kind {
	case "int":
		return "INTEGER"
	case "float":
		return "REAL"
	default:
		return "TEXT"
	}
}

var dialect = ddl.Dialect{
	QuoteIdent:  sqliteIdent,
	MapType:     MapType,
	IfNotExists: true,
}
