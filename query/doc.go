// Package query builds SQL statements on top of the node tree.
//
// A Table is the entry point. It creates attribute nodes and the four
// statement managers:
//
//	users := query.NewTable("users", query.WithDialect(dialect.SQLite))
//	sm := users.From().
//	    Project(users.Column("name")).
//	    Where(users.Column("age").Gt(18)).
//	    Order(users.Column("name").Asc()).
//	    Take(10)
//	sm.ToSQL() // SELECT "users"."name" FROM "users" WHERE "users"."age" > 18 ORDER BY "users"."name" ASC LIMIT 10
//
// Managers own their statement tree and modify it in place; every builder
// method returns the receiver for chaining. A manager may be rendered any
// number of times. Managers are not safe for concurrent modification.
package query
