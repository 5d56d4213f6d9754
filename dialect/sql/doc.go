// Package sql implements dialect.Driver on top of database/sql.
//
// Importing the package registers the sqlite (modernc.org/sqlite), mysql
// (github.com/go-sql-driver/mysql) and postgres (github.com/lib/pq)
// database/sql drivers:
//
//	drv, err := sql.Open("sqlite", "file:app.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
//	rows, err := drv.Execute(ctx, `SELECT * FROM "users"`)
//
// # Session Variables
//
// WithVar attaches variables that are SET on the connection before the
// statement runs and reset before the connection returns to the pool:
//
//	ctx = sql.WithVar(ctx, "search_path", "tenant_1")
//
// # Statistics and Logging
//
// StatsDriver counts statements and reports slow ones; DebugDriver logs
// every statement. Both wrap any dialect.Driver:
//
//	drv = sql.NewDebugDriver(sql.NewStatsDriver(drv, sql.WithSlowQueryLog(nil)))
//
// # Errors
//
// Driver errors are wrapped, never replaced. IsUniqueConstraintError,
// IsForeignKeyConstraintError and IsCheckConstraintError classify them
// for the registered drivers.
package sql
