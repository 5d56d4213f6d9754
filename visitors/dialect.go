package visitors

import (
	"strings"

	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
)

// mysqlMaxLimit is 2^64 as printed by the reference client, used by MySQL
// to express an unbounded LIMIT.
const mysqlMaxLimit = "18446744073709552000"

// Dialect holds the rendering rules that differ between databases.
type Dialect interface {
	// Name returns the dialect name.
	Name() string
	// QuoteIdentifier quotes a column name.
	QuoteIdentifier(name string) string
	// QuoteTableName quotes a table name.
	QuoteTableName(name string) string
	// Boolean returns the literal for a boolean value.
	Boolean(b bool) string
	// UnboundedLimit returns the LIMIT injected when a statement has an
	// OFFSET but no LIMIT, or nil when no LIMIT is needed.
	UnboundedLimit() nodes.Node
	// EmptyFrom returns the FROM target used when a select has no source,
	// or nil to omit the FROM clause.
	EmptyFrom() nodes.Node
	// LockClause returns the text of a row lock, or "" when unsupported.
	LockClause() string
	// NativeUpdateLimit reports whether UPDATE accepts ORDER BY and LIMIT.
	NativeUpdateLimit() bool
}

// generic renders standard SQL. It is the base of the other dialects.
type generic struct{}

func (generic) Name() string { return dialect.SQL }

func (generic) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (g generic) QuoteTableName(name string) string { return g.QuoteIdentifier(name) }

func (generic) Boolean(b bool) string {
	if b {
		return "'t'"
	}
	return "'f'"
}

func (generic) UnboundedLimit() nodes.Node { return nil }
func (generic) EmptyFrom() nodes.Node      { return nil }
func (generic) LockClause() string         { return "" }
func (generic) NativeUpdateLimit() bool    { return false }

type sqlite struct{ generic }

func (sqlite) Name() string { return dialect.SQLite }

// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
func (sqlite) UnboundedLimit() nodes.Node { return nodes.SQL("-1") }

type mysql struct{ generic }

func (mysql) Name() string { return dialect.MySQL }

func (mysql) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteTableName quotes each part of a schema qualified name.
func (m mysql) QuoteTableName(name string) string {
	return strings.ReplaceAll(m.QuoteIdentifier(name), ".", "`.`")
}

func (mysql) Boolean(b bool) string {
	if b {
		return "'1'"
	}
	return "'0'"
}

func (mysql) UnboundedLimit() nodes.Node { return nodes.SQL(mysqlMaxLimit) }
func (mysql) EmptyFrom() nodes.Node      { return nodes.SQL("DUAL") }
func (mysql) LockClause() string         { return "FOR UPDATE" }
func (mysql) NativeUpdateLimit() bool    { return true }

var (
	sqlVisitor    = New(generic{})
	sqliteVisitor = New(sqlite{})
	mysqlVisitor  = New(mysql{})
)

// SQL returns the generic visitor.
func SQL() *Visitor { return sqlVisitor }

// SQLite returns the SQLite visitor.
func SQLite() *Visitor { return sqliteVisitor }

// MySQL returns the MySQL visitor.
func MySQL() *Visitor { return mysqlVisitor }

// For returns the visitor of the named dialect. Postgres and unknown names
// use the generic visitor.
func For(name string) *Visitor {
	switch dialect.Normalize(name) {
	case dialect.SQLite:
		return sqliteVisitor
	case dialect.MySQL:
		return mysqlVisitor
	default:
		return sqlVisitor
	}
}
