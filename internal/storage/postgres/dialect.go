package postgres

import (
	"strings"

	"bankmarketing/internal/ddl"
)

// pgIdent quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// MapType maps a contract kind to a Postgres column type.
func MapType(kind string) string {
	switch kind {
	case "int":
		return "BIGINT"
	case "float":
		return "DOUBLE PRECISION"
	case "date":
		return "DATE"
	default:
		return "TEXT"
	}
}

var dialect = ddl.Dialect{
	QuoteIdent:  pgIdent,
	MapType:     MapType,
	IfNotExists: true,
}
