// Package relation provides the chainable query layer over a mapped table.
//
// A Relation accumulates clauses and renders them into a single SELECT
// statement through the query package. Every query method returns a new
// Relation; the receiver is never modified, so a base relation can be
// shared between goroutines and refined independently:
//
//	users := relation.New(relation.Model{Name: "User"}, drv)
//	adults := users.Where(map[string]any{"age_gte": 18}).Order("name")
//	rows, err := adults.All(ctx)
//
// Conditions
//
// Where and Having accept a raw SQL string, a string with "?" or ":name"
// placeholders followed by the values to bind, a map of column names to
// values, or a node built with the nodes package:
//
//	r.Where("age > 18")
//	r.Where("name = ? AND age > ?", "bob", 18)
//	r.Where("name = :name", map[string]any{"name": "bob"})
//	r.Where(map[string]any{"name": "bob", "age_gt": 18, "role": []string{"a", "b"}})
//
// Map keys may end in one of the operator suffixes _eq, _not, _gt, _gte,
// _lt, _lte, _like, _notlike, _in and _notin. Bound values are always
// quoted by the dialect of the driver.
//
// Errors
//
// Construction errors, such as a wrong number of bind variables or an
// invalid limit, are recorded on the relation. They are returned by Err,
// ToSQL and every terminal operation; no SQL is sent in that case.
package relation
