// Package sqlite implements the record store on SQLite through the pure-Go
// modernc driver. Every Insert batch runs in one transaction; SQLite has no
// bulk-load API, but transactions keep throughput acceptable for MAUDE-sized
// pulls.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"maude/internal/storage"

	_ "modernc.org/sqlite"
)

// Dialect is the SQLite flavour of the shared SQL store.
var Dialect = storage.Dialect{
	Name: "sqlite",
	Bind: storage.QuestionMark,
	Schema: storage.Schema(storage.Types{
		ID:          "id INTEGER PRIMARY KEY AUTOINCREMENT",
		Text:        "TEXT",
		Long:        "TEXT",
		Hash:        "TEXT",
		CreateIndex: storage.IndexIfNotExists,
	}),
}

// Repository is a SQLite-backed storage.Store.
type Repository struct {
	*storage.SQLStore
}

// Open opens dsn with the SQLite driver. A single connection is used so an
// in-memory database is shared by every statement.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// New wraps an open database. The schema is not created.
func New(db *sql.DB) *Repository {
	return &Repository{SQLStore: storage.NewSQLStore(db, Dialect)}
}

// NewRepository opens a SQLite database, enables foreign keys and ensures the
// schema, returning the Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := Open(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Enable foreign keys; ignore error if the driver doesn't support it.
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	r := New(db)
	if err := r.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return r, func() { _ = db.Close() }, nil
}
