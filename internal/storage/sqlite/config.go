package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:campaign.db?_pragma=busy_timeout(5000)"
	//   "campaign.db"
	DSN string

	// Table is the target table name for inserts. "main.client" style names
	// are accepted and quoted per segment.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
