package postgres

import (
	"context"

	"bankmarketing/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adapts *Repository to storage.Repository: it owns the close
// function and binds text cells to the column kinds before COPY.
type wrappedRepo struct {
	*Repository
	kinds   []string
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func (w *wrappedRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(w.kinds) > 0 {
		if err := storage.CoerceRows(w.kinds, rows, true); err != nil {
			return 0, err
		}
	}
	return w.Repository.CopyFrom(ctx, columns, rows)
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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
	storage.RegisterDDL("postgres", dialect)
}
