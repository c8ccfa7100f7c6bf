package ddl

import "bankmarketing/internal/schema"

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, DATE)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table").
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// FromContract maps an output contract onto a table definition using the
// dialect's type mapping. Column order follows the contract.
func FromContract(fqn string, c schema.Contract, d Dialect) TableDef {
	cols := make([]ColumnDef, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = ColumnDef{
			Name:     f.Name,
			SQLType:  d.MapType(schema.NormalizeKind(f.Type)),
			Nullable: f.Nullable,
		}
	}
	return TableDef{FQN: fqn, Columns: cols}
}
