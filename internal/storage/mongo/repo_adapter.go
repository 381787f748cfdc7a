package mongo

import (
	"context"

	"maude/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Store = (*wrappedRepo)(nil)

// Close disconnects the client.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("mongo", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		db, _ := cfg.Options["database"].(string)
		r, closeFn, err := newRepository(ctx, Config{URI: cfg.DSN, Database: db})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
