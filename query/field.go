package query

import "github.com/syssam/mapper/nodes"

// Field is a column with a Go value type. Its predicates only accept
// values of that type.
//
// Usage:
//
//	var (
//	    users = query.NewTable("users")
//	    Name  = query.NewField[string](users, "name")
//	    Age   = query.NewField[int](users, "age")
//	)
//	users.Where(Name.HasPrefix("a"), Age.GTE(18))
type Field[T any] struct {
	attr *nodes.Attribute
}

// NewField returns the typed column name of table.
func NewField[T any](table nodes.TableSource, name string) Field[T] {
	return Field[T]{attr: table.TableNode().Column(name)}
}

// Name returns the column name.
func (f Field[T]) Name() string { return f.attr.Name }

// Attribute returns the untyped attribute node.
func (f Field[T]) Attribute() *nodes.Attribute { return f.attr }

// EQ returns a predicate that checks if the field equals v.
func (f Field[T]) EQ(v T) *nodes.Binary { return f.attr.Eq(v) }

// NEQ returns a predicate that checks if the field does not equal v.
func (f Field[T]) NEQ(v T) *nodes.Binary { return f.attr.NotEq(v) }

// GT returns a predicate that checks if the field is greater than v.
func (f Field[T]) GT(v T) *nodes.Binary { return f.attr.Gt(v) }

// GTE returns a predicate that checks if the field is greater than or equal to v.
func (f Field[T]) GTE(v T) *nodes.Binary { return f.attr.Gteq(v) }

// LT returns a predicate that checks if the field is less than v.
func (f Field[T]) LT(v T) *nodes.Binary { return f.attr.Lt(v) }

// LTE returns a predicate that checks if the field is less than or equal to v.
func (f Field[T]) LTE(v T) *nodes.Binary { return f.attr.Lteq(v) }

// In returns a predicate that checks if the field is one of vs.
func (f Field[T]) In(vs ...T) *nodes.Binary { return f.attr.In(vs) }

// NotIn returns a predicate that checks if the field is none of vs.
func (f Field[T]) NotIn(vs ...T) *nodes.Binary { return f.attr.NotIn(vs) }

// IsNull returns a predicate that checks if the field is NULL.
func (f Field[T]) IsNull() *nodes.Binary { return f.attr.Eq(nil) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f Field[T]) NotNull() *nodes.Binary { return f.attr.NotEq(nil) }

// Contains returns a predicate that checks if the field contains s.
func (f Field[T]) Contains(s string) *nodes.Binary {
	return f.attr.Matches("%" + s + "%")
}

// HasPrefix returns a predicate that checks if the field starts with s.
func (f Field[T]) HasPrefix(s string) *nodes.Binary { return f.attr.Matches(s + "%") }

// HasSuffix returns a predicate that checks if the field ends with s.
func (f Field[T]) HasSuffix(s string) *nodes.Binary { return f.attr.Matches("%" + s) }

// Asc orders by the field ascending.
func (f Field[T]) Asc() *nodes.Ordering { return f.attr.Asc() }

// Desc orders by the field descending.
func (f Field[T]) Desc() *nodes.Ordering { return f.attr.Desc() }
