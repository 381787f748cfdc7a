// Package mssql wires the SQL Server backend into the storage factory.
package mssql

import (
	"context"

	"maude/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Store = (*wrappedRepo)(nil)

// Close implements storage.Store.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
