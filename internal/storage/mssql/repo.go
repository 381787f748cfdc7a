// Package mssql implements the record store on Microsoft SQL Server through
// go-mssqldb. New event ids are read back with an OUTPUT clause.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"maude/internal/storage"
)

// Config holds MSSQL store configuration.
type Config struct {
	DSN string
}

// Dialect is the SQL Server flavour of the shared SQL store.
var Dialect = storage.Dialect{
	Name:   "mssql",
	Bind:   func(n int) string { return "@p" + strconv.Itoa(n) },
	Output: "OUTPUT INSERTED.id",
	Schema: storage.Schema(storage.Types{
		ID:   "id BIGINT IDENTITY(1,1) PRIMARY KEY",
		Text: "NVARCHAR(1024)",
		Long: "NVARCHAR(MAX)",
		Hash: "VARCHAR(64)",
		CreateTable: func(table, body string) string {
			return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (\n%s\n)", table, table, body)
		},
		CreateIndex: func(name, table, column string) string {
			return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s') CREATE INDEX %s ON %s (%s)",
				name, name, table, column)
		},
	}),
}

// Repository is an MSSQL-backed storage.Store.
type Repository struct {
	*storage.SQLStore
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	r := &Repository{SQLStore: storage.NewSQLStore(db, Dialect)}
	if err := r.EnsureSchema(ctx); err != nil {
		close()
		return nil, nil, err
	}
	return r, close, nil
}
