// Package all wires every built-in storage backend into the storage registry.
// It exists for side effects only: importing it runs each backend's init,
// which registers its factory and DDL dialect.
//
//	import _ "bankmarketing/internal/storage/all"
//
// Kinds made available: "postgres", "mssql", "mysql", "sqlite".
package all

import (
	_ "bankmarketing/internal/storage/mssql"
	_ "bankmarketing/internal/storage/mysql"
	_ "bankmarketing/internal/storage/postgres"
	_ "bankmarketing/internal/storage/sqlite"
)
