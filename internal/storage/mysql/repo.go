// Package mysql implements the record store on MySQL through
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"maude/internal/storage"
)

// Config holds MySQL store configuration.
type Config struct {
	// DSN uses the driver format: user:password@tcp(host:3306)/dbname
	DSN string
}

// Dialect is the MySQL flavour of the shared SQL store. Inline REFERENCES
// clauses are not enforced by MySQL, so the event_id index is declared
// explicitly.
var Dialect = storage.Dialect{
	Name: "mysql",
	Bind: storage.QuestionMark,
	Schema: storage.Schema(storage.Types{
		ID:          "id BIGINT AUTO_INCREMENT PRIMARY KEY",
		Text:        "VARCHAR(1024)",
		Long:        "LONGTEXT",
		Hash:        "VARCHAR(64)",
		InlineIndex: true,
	}),
}

// Repository is a MySQL-backed storage.Store.
type Repository struct {
	*storage.SQLStore
}

// NewRepository validates the DSN, connects, ensures the schema and returns a
// Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	if dc.Params == nil {
		dc.Params = map[string]string{}
	}
	if _, ok := dc.Params["charset"]; !ok {
		dc.Params["charset"] = "utf8mb4"
	}
	db, err := sql.Open("mysql", dc.FormatDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	close := func() { _ = db.Close() }
	r := &Repository{SQLStore: storage.NewSQLStore(db, Dialect)}
	if err := r.EnsureSchema(ctx); err != nil {
		close()
		return nil, nil, err
	}
	return r, close, nil
}
