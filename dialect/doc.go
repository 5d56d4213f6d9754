// Package dialect defines the boundary between the query engine and a
// database connection.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.SQL      = "sql"
//	dialect.SQLite   = "sqlite"
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//
// SQL is the generic rendering used when no connection is bound. Postgres
// renders with the generic rules.
//
// # Driver Interface
//
// A Driver receives fully rendered SQL text and returns rows or counts:
//
//	type Driver interface {
//	    Quoter
//	    Dialect() string
//	    Execute(ctx context.Context, query string) ([]Row, error)
//	    SelectValue(ctx context.Context, query string) (any, error)
//	    Insert(ctx context.Context, query string) (int64, error)
//	    Update(ctx context.Context, query string) (int64, error)
//	    Delete(ctx context.Context, query string) (int64, error)
//	    Tables(ctx context.Context) ([]string, error)
//	    Close() error
//	}
//
// # Usage
//
//	import (
//	    "github.com/syssam/mapper/dialect"
//	    "github.com/syssam/mapper/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: database/sql implementation of Driver, statistics and
//     debug wrappers, driver error classification
package dialect
