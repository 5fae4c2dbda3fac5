// Package migrations contains dialect-aware Go database migrations. Go
// migrations are used instead of SQL files because the schemas differ by
// driver (BLOB/REAL vs BYTEA/TIMESTAMPTZ and friends).
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}
