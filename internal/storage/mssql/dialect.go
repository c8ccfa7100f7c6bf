package mssql

import (
	"fmt"
	"strings"

	"bankmarketing/internal/ddl"
)

// msIdent quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// MapType maps a contract kind to a SQL Server column type.
func MapType(kind string) string {
	switch kind {
	case "int":
		return "BIGINT"
	case "float":
		return "FLOAT"
	case "date":
		return "DATE"
	default:
		return "NVARCHAR(MAX)"
	}
}

// guard wraps CREATE TABLE in an OBJECT_ID check; T-SQL has no
// CREATE TABLE IF NOT EXISTS.
func guard(_, quoted, stmt string) string {
	lit := strings.ReplaceAll(quoted, "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND", lit, stmt)
}

var dialect = ddl.Dialect{
	QuoteIdent: msIdent,
	MapType:    MapType,
	Guard:      guard,
}
