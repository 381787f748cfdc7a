package sqlite

// Config holds SQLite store configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:maude.db?cache=shared"
	//   ":memory:"
	DSN string
}
