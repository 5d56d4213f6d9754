package dialect

import (
	"context"
	"strings"
)

// Dialect names.
const (
	SQL      = "sql"
	SQLite   = "sqlite"
	MySQL    = "mysql"
	Postgres = "postgres"
)

// Row is a single result row keyed by column name.
type Row = map[string]any

// Quoter exposes the dialect quoting primitives of a connection.
type Quoter interface {
	// Quote renders a Go value as an SQL literal.
	Quote(v any) string
	// QuoteColumnName quotes a column identifier.
	QuoteColumnName(name string) string
	// QuoteTableName quotes a table identifier.
	QuoteTableName(name string) string
}

// ExecQuerier sends rendered statements to a database.
type ExecQuerier interface {
	// Execute runs a query and returns all result rows.
	Execute(ctx context.Context, query string) ([]Row, error)
	// SelectValue runs a query and returns the first column of the first
	// row, or nil when the query produced no rows.
	SelectValue(ctx context.Context, query string) (any, error)
	// Insert runs an INSERT statement and returns the generated id.
	Insert(ctx context.Context, query string) (int64, error)
	// Update runs an UPDATE statement and returns the affected row count.
	Update(ctx context.Context, query string) (int64, error)
	// Delete runs a DELETE statement and returns the affected row count.
	Delete(ctx context.Context, query string) (int64, error)
}

// Driver is the interface that wraps all necessary operations for the
// query engine to talk to a database.
type Driver interface {
	ExecQuerier
	Quoter
	// Dialect returns the dialect name of the driver.
	Dialect() string
	// Tables lists the user tables of the connected database.
	Tables(ctx context.Context) ([]string, error)
	// Close closes the underlying connection.
	Close() error
}

// Normalize maps a driver or adapter name to one of the dialect names.
// Unknown names fall back to SQL.
func Normalize(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, SQLite):
		return SQLite
	case strings.HasPrefix(name, MySQL), name == "mariadb":
		return MySQL
	case strings.HasPrefix(name, Postgres), name == "pgx", name == "pq":
		return Postgres
	default:
		return SQL
	}
}
