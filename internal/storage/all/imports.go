// Package all wires every built-in storage backend into the storage factory.
//
// Importing it for side effects makes these kinds available to storage.New:
//
//   - "sqlite"   (maude/internal/storage/sqlite)
//   - "postgres" (maude/internal/storage/postgres)
//   - "mysql"    (maude/internal/storage/mysql)
//   - "mssql"    (maude/internal/storage/mssql)
//   - "mongo"    (maude/internal/storage/mongo)
//
// A binary that needs only a subset can import the backends directly.
package all

import (
	_ "maude/internal/storage/mongo"
	_ "maude/internal/storage/mssql"
	_ "maude/internal/storage/mysql"
	_ "maude/internal/storage/postgres"
	_ "maude/internal/storage/sqlite"
)
