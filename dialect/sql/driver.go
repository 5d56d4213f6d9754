package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/visitors"
)

// validIdentifierRe accepts plain and schema-qualified names.
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier guards variable names interpolated into SET.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue escapes s for use inside a quoted SET value.
// Single quotes are doubled and backslashes escaped for MySQL.
func escapeStringValue(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// Driver is a dialect.Driver implementation for SQL based databases.
type Driver struct {
	Conn
	visitor *visitors.Visitor
}

// NewDriver creates a new Driver with the given Conn. The dialect name is
// normalized, so driver names such as "sqlite3" or "pgx" are accepted.
func NewDriver(name string, c Conn) *Driver {
	c.dialect = dialect.Normalize(name)
	return &Driver{Conn: c, visitor: visitors.For(c.dialect)}
}

// Open wraps the database/sql.Open method and returns a Driver for the
// registered driver name.
func Open(driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", driverName, err)
	}
	return NewDriver(driverName, Conn{ExecQuerier: db}), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(name string, db *sql.DB) *Driver {
	return NewDriver(name, Conn{ExecQuerier: db})
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	db, _ := d.ExecQuerier.(*sql.DB)
	return db
}

// Dialect implements the dialect.Driver interface.
func (d *Driver) Dialect() string { return d.dialect }

// Visitor returns the visitor rendering statements for the driver's dialect.
func (d *Driver) Visitor() *visitors.Visitor { return d.visitor }

// Quote implements the dialect.Quoter interface.
func (d *Driver) Quote(v any) string { return d.visitor.Quote(v, nil) }

// QuoteColumnName implements the dialect.Quoter interface.
func (d *Driver) QuoteColumnName(name string) string { return d.visitor.QuoteColumnName(name) }

// QuoteTableName implements the dialect.Quoter interface.
func (d *Driver) QuoteTableName(name string) string { return d.visitor.QuoteTableName(name) }

// Execute implements the dialect.ExecQuerier interface.
func (d *Driver) Execute(ctx context.Context, query string) ([]dialect.Row, error) {
	rows, err := d.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: execute: %w", err)
	}
	defer rows.Close()
	result, err := ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: execute: %w", err)
	}
	return result, nil
}

// SelectValue implements the dialect.ExecQuerier interface.
func (d *Driver) SelectValue(ctx context.Context, query string) (any, error) {
	rows, err := d.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: select value: %w", err)
	}
	defer rows.Close()
	values, err := scanColumn(rows, 1)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: select value: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// Insert implements the dialect.ExecQuerier interface. Postgres has no
// last insert id; there the first column of a RETURNING clause is used,
// or 0 when the statement has none.
func (d *Driver) Insert(ctx context.Context, query string) (int64, error) {
	if d.dialect == dialect.Postgres {
		if !strings.Contains(strings.ToUpper(query), " RETURNING ") {
			if _, err := d.exec(ctx, query); err != nil {
				return 0, fmt.Errorf("dialect/sql: insert: %w", err)
			}
			return 0, nil
		}
		v, err := d.SelectValue(ctx, query)
		if err != nil {
			return 0, err
		}
		return toInt64(v)
	}
	res, err := d.exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: insert: last insert id: %w", err)
	}
	return id, nil
}

// Update implements the dialect.ExecQuerier interface.
func (d *Driver) Update(ctx context.Context, query string) (int64, error) {
	return d.affected(ctx, "update", query)
}

// Delete implements the dialect.ExecQuerier interface.
func (d *Driver) Delete(ctx context.Context, query string) (int64, error) {
	return d.affected(ctx, "delete", query)
}

func (d *Driver) affected(ctx context.Context, op, query string) (int64, error) {
	res, err := d.exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: %s: rows affected: %w", op, err)
	}
	return n, nil
}

// Statements listing the user tables per dialect.
const (
	sqliteTables   = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	mysqlTables    = "SHOW TABLES"
	postgresTables = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name"
	genericTables  = "SELECT table_name FROM information_schema.tables WHERE table_schema NOT IN ('information_schema', 'pg_catalog') ORDER BY table_name"
)

// Tables implements the dialect.Driver interface.
func (d *Driver) Tables(ctx context.Context) ([]string, error) {
	query := genericTables
	switch d.dialect {
	case dialect.SQLite:
		query = sqliteTables
	case dialect.MySQL:
		query = mysqlTables
	case dialect.Postgres:
		query = postgresTables
	}
	rows, err := d.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: tables: %w", err)
	}
	defer rows.Close()
	values, err := scanColumn(rows, -1)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: tables: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, fmt.Sprint(v))
	}
	return names, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	if c, ok := d.ExecQuerier.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

var _ dialect.Driver = (*Driver)(nil)

type varsKey struct{}

// sessionVar is a variable SET on the connection of a statement.
type sessionVar struct{ name, value string }

func varsFrom(ctx context.Context) []sessionVar {
	vars, _ := ctx.Value(varsKey{}).([]sessionVar)
	return vars
}

// WithVar attaches a session variable that is SET on the connection before
// each statement run with the returned context. Later values of the same
// name are applied after earlier ones.
func WithVar(ctx context.Context, name, value string) context.Context {
	vars := append(slices.Clip(varsFrom(ctx)), sessionVar{name: name, value: value})
	return context.WithValue(ctx, varsKey{}, vars)
}

// VarFromContext reports the last value attached for name.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	for _, v := range slices.Backward(varsFrom(ctx)) {
		if v.name == name {
			return v.value, true
		}
	}
	return "", false
}

// WithIntVar is WithVar for integer values.
func WithIntVar(ctx context.Context, name string, value int) context.Context {
	return WithVar(ctx, name, strconv.Itoa(value))
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn runs statements on an ExecQuerier, applying the session variables
// found in the context first.
type Conn struct {
	ExecQuerier
	dialect string
}

// exec runs a statement that returns no rows.
func (c Conn) exec(ctx context.Context, query string) (res sql.Result, err error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, sess.release()) }()
	return sess.ex.ExecContext(ctx, query)
}

// query runs a statement that returns rows. Closing the returned rows
// ends the session.
func (c Conn) query(ctx context.Context, query string) (ColumnScanner, error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := sess.ex.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Join(err, sess.release())
	}
	if sess.done == nil {
		return rows, nil
	}
	return rowsWithCloser{rows, sess.release}, nil
}

// session is the connection a statement runs on, with the variables of
// its context applied.
type session struct {
	ex    ExecQuerier
	reset []string
	// done returns a pinned connection to the pool.
	done func() error
}

// session pins a connection of a pool when ctx carries variables, and
// sets them on it. Transactions and single connections are used as they
// are.
func (c Conn) session(ctx context.Context) (*session, error) {
	vars := varsFrom(ctx)
	sess := &session{ex: c.ExecQuerier}
	if len(vars) == 0 {
		return sess, nil
	}
	for _, v := range vars {
		if !isValidIdentifier(v.name) {
			return nil, fmt.Errorf("set session vars: invalid session variable name: %q", v.name)
		}
	}
	switch e := c.ExecQuerier.(type) {
	case *sql.Tx, *sql.Conn:
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("set session vars: %w", err)
		}
		sess.ex, sess.done = conn, conn.Close
	default:
		return nil, fmt.Errorf("set session vars: unsupported ExecQuerier type: %T", c.ExecQuerier)
	}
	for i, v := range vars {
		if _, err := sess.ex.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", v.name, escapeStringValue(v.value))); err != nil {
			return nil, errors.Join(fmt.Errorf("set session vars: %w", err), sess.release())
		}
		if slices.ContainsFunc(vars[:i], func(p sessionVar) bool { return p.name == v.name }) {
			continue
		}
		switch c.dialect {
		case dialect.Postgres:
			sess.reset = append(sess.reset, "RESET "+v.name)
		case dialect.MySQL:
			sess.reset = append(sess.reset, "SET "+v.name+" = NULL")
		}
	}
	return sess, nil
}

// release resets the variables of a pinned connection and returns it to
// the pool. Resetting uses its own deadline so that it also runs after
// the statement context was canceled.
func (s *session) release() error {
	if s.done == nil {
		return nil
	}
	done := s.done
	s.done = nil
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, q := range s.reset {
		if _, err := s.ex.ExecContext(ctx, q); err != nil {
			return errors.Join(err, done())
		}
	}
	return done()
}

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// rowsWithCloser releases the pinned connection once the rows are closed.
type rowsWithCloser struct {
	ColumnScanner
	closer func() error
}

// Close closes the underlying ColumnScanner and calls the custom closer.
func (r rowsWithCloser) Close() error {
	err := r.ColumnScanner.Close()
	return errors.Join(err, r.closer())
}

// ScanRows reads all rows into maps keyed by column name. Byte slices are
// returned as strings; other values are returned as the driver produced
// them.
func ScanRows(rows ColumnScanner) ([]dialect.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var result []dialect.Row
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}
		row := make(dialect.Row, len(columns))
		for i, c := range columns {
			row[c] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanColumn returns the first column of up to limit rows. A negative
// limit reads all rows.
func scanColumn(rows ColumnScanner, limit int) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.New("statement returned no columns")
	}
	var result []any
	for (limit < 0 || len(result) < limit) && rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}
		result = append(result, values[0])
	}
	return result, rows.Err()
}

func scanValues(rows ColumnScanner, n int) ([]any, error) {
	values := make([]any, n)
	dest := make([]any, n)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}

// toInt64 converts a scanned value to an int64.
func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("dialect/sql: converting %q to int64: %w", v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("dialect/sql: unexpected id type %T", v)
	}
}
