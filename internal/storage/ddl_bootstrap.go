package storage

import (
	"context"
	"fmt"
	"sync"

	"bankmarketing/internal/ddl"
	"bankmarketing/internal/schema"
)

var (
	ddlMu    sync.RWMutex
	dialects = map[string]ddl.Dialect{}
)

// RegisterDDL registers (or replaces) the DDL dialect for a storage kind. It
// is typically called from backend packages' init functions.
func RegisterDDL(kind string, d ddl.Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

func dialectFor(kind string) (ddl.Dialect, error) {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return ddl.Dialect{}, fmt.Errorf("no DDL dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// EnsureTable creates table from contract c when it does not exist yet.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, c schema.Contract) error {
	d, err := dialectFor(kind)
	if err != nil {
		return err
	}
	stmt, err := ddl.BuildCreateTableSQL(ddl.FromContract(table, c, d), d)
	if err != nil {
		return fmt.Errorf("build DDL for %s: %w", table, err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply DDL for %s: %w", table, err)
	}
	return nil
}

// ClearTable deletes every row of table so a reload replaces it.
func ClearTable(ctx context.Context, kind string, repo Repository, table string) error {
	d, err := dialectFor(kind)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, "DELETE FROM "+d.QuoteFQN(table)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	return nil
}
