package mysql

import (
	"strings"

	"bankmarketing/internal/ddl"
)

func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// MapType maps a contract kind to a MySQL column type.
func MapType(kind string) string {
	switch kind {
	case "int":
		return "BIGINT"
	case "float":
		return "DOUBLE"
	case "date":
		return "DATE"
	default:
		return "TEXT"
	}
}

var dialect = ddl.Dialect{
	QuoteIdent:  myIdent,
	MapType:     MapType,
	IfNotExists: true,
}
