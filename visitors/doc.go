// Package visitors renders nodes into SQL text.
//
// A Visitor walks a tree recursively and owns every structural rule of the
// rendering: clause order, separators, and the omission of empty clauses.
// What differs between databases is captured by a Dialect, a small set of
// hooks for identifier quoting, boolean literals, LIMIT defaults, the
// empty FROM target, locking text and UPDATE ... LIMIT support.
//
//	v := visitors.For(dialect.MySQL)
//	sql := v.Visit(stmt)
//
// Visitors hold no mutable state and are safe for concurrent use. They never
// modify the tree being rendered.
package visitors
