// Package nodes defines the abstract syntax tree of SQL statements.
//
// Every node reports a Kind. Expression nodes embed Predications, which
// builds new comparison, boolean and aggregate nodes from an existing one:
//
//	users := nodes.NewTable("users")
//	cond := users.Column("id").Eq(1).Or(users.Column("name").Matches("%ann%"))
//
// Nodes are never modified after construction. The statement roots
// (SelectStatement, InsertStatement, UpdateStatement, DeleteStatement) are
// the exception: their clause lists are owned and appended to by a single
// manager from package query.
//
// Operands are typed any. Besides nodes they may hold plain Go values
// (nil, bool, numbers, strings, time.Time, slices) which are quoted by the
// visitor at render time.
package nodes
