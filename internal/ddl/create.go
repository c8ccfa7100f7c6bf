// Package ddl defines a small model for SQL DDL and renders CREATE TABLE
// statements from it. Each storage backend supplies a Dialect with its
// identifier quoting, type mapping and existence guard.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures the per-backend differences in generated DDL.
type Dialect struct {
	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(string) string

	// MapType maps a normalized contract kind (int, float, date, text) to a
	// column type.
	MapType func(kind string) string

	// IfNotExists renders CREATE TABLE IF NOT EXISTS.
	IfNotExists bool

	// Guard, when set, wraps the CREATE TABLE statement, for dialects that
	// lack IF NOT EXISTS. It receives the unquoted and quoted table names.
	Guard func(fqn, quoted, stmt string) string
}

// QuoteFQN quotes every dot-separated segment of name.
func (d Dialect) QuoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// BuildCreateTableSQL renders a deterministic CREATE TABLE statement.
//
// Rules:
//   - t.FQN must be non-empty.
//   - Each column must have a non-empty Name and SQLType.
//   - Primary-key columns are always NOT NULL and are rendered as a separate
//     PRIMARY KEY clause in column order.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		def := d.QuoteIdent(name) + " " + typ
		if !c.Nullable || c.PrimaryKey {
			def += " NOT NULL"
		}
		cols = append(cols, def)
		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if d.IfNotExists {
		create += "IF NOT EXISTS "
	}
	quoted := d.QuoteFQN(fqn)
	stmt := fmt.Sprintf("%s%s (\n  %s\n);", create, quoted, strings.Join(cols, ",\n  "))
	if d.Guard != nil {
		stmt = d.Guard(fqn, quoted, stmt)
	}
	return stmt, nil
}
