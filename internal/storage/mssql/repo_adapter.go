package mssql

import (
	"context"

	"bankmarketing/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, kinds: cfg.Kinds, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("mssql", dialect)
}

// wrappedRepo adapts *Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	kinds   []string
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }

// CopyFrom binds text cells to BIGINT/FLOAT/DATE values before the bulk copy.
func (w *wrappedRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(w.kinds) > 0 {
		if err := storage.CoerceRows(w.kinds, rows, true); err != nil {
			return 0, err
		}
	}
	return w.Repository.CopyFrom(ctx, columns, rows)
}
