// Package postgres implements the record store on Postgres using pgx v5. The
// pool is opened with pgxpool and exposed to the shared SQL store through
// pgx's database/sql adapter.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"maude/internal/storage"
)

// Config holds Postgres store configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Dialect is the Postgres flavour of the shared SQL store.
var Dialect = storage.Dialect{
	Name:      "postgres",
	Bind:      func(n int) string { return "$" + strconv.Itoa(n) },
	Returning: "RETURNING id",
	Schema: storage.Schema(storage.Types{
		ID:          "id BIGSERIAL PRIMARY KEY",
		Text:        "TEXT",
		Long:        "TEXT",
		Hash:        "TEXT",
		CreateIndex: storage.IndexIfNotExists,
	}),
}

// Repository is a Postgres-backed storage.Store.
type Repository struct {
	*storage.SQLStore
}

// NewRepository connects, ensures the schema and returns a Close function
// for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	close := func() {
		_ = db.Close()
		pool.Close()
	}
	r := &Repository{SQLStore: storage.NewSQLStore(db, Dialect)}
	if err := r.EnsureSchema(ctx); err != nil {
		close()
		return nil, nil, err
	}
	return r, close, nil
}
