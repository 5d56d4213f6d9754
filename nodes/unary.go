package nodes

// Unary wraps a single child expression. Its Kind selects the rendering:
// Grouping, Not, Limit, Offset, Having, On, Group, UnqualifiedColumn or Lock.
type Unary struct {
	Predications
	kind Kind
	Expr any
}

func newUnary(kind Kind, expr any) *Unary {
	u := &Unary{kind: kind, Expr: expr}
	u.self = u
	return u
}

func (u *Unary) Kind() Kind { return u.kind }
func (*Unary) node()        {}

// NewGrouping wraps expr in parentheses.
func NewGrouping(expr any) *Unary { return newUnary(KindGrouping, expr) }

// NewNot negates expr.
func NewNot(expr any) *Unary { return newUnary(KindNot, expr) }

// NewLimit returns a LIMIT clause.
func NewLimit(expr any) *Unary { return newUnary(KindLimit, expr) }

// NewOffset returns an OFFSET clause.
func NewOffset(expr any) *Unary { return newUnary(KindOffset, expr) }

// NewHaving returns a HAVING clause over the given conditions.
func NewHaving(exprs ...Node) *Unary { return newUnary(KindHaving, exprs) }

// NewOn returns the ON constraint of a join.
func NewOn(expr any) *Unary { return newUnary(KindOn, expr) }

// NewGroup returns a GROUP BY item.
func NewGroup(expr any) *Unary { return newUnary(KindGroup, expr) }

// NewUnqualifiedColumn renders attr without its table name.
func NewUnqualifiedColumn(attr *Attribute) *Unary {
	return newUnary(KindUnqualifiedColumn, attr)
}

// NewLock returns a row-locking clause.
func NewLock() *Unary { return newUnary(KindLock, nil) }
