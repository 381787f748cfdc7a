package mysql

import (
	"context"

	"maude/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Store = (*wrappedRepo)(nil)

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}

// wrappedRepo adapts *mysql.Repository to storage.Store and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() { w.closeFn() }
