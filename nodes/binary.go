package nodes

// Binary holds a left and a right operand. Comparisons, assignment, AS and
// the join variants are all binary nodes distinguished by Kind.
type Binary struct {
	Predications
	kind  Kind
	Left  any
	Right any
}

func newBinary(kind Kind, left, right any) *Binary {
	b := &Binary{kind: kind, Left: left, Right: right}
	b.self = b
	return b
}

func (b *Binary) Kind() Kind { return b.kind }
func (*Binary) node()        {}

// NewEquality returns left = right, or left IS NULL when right is nil.
func NewEquality(left, right any) *Binary { return newBinary(KindEquality, left, right) }

// NewNotEqual returns left != right, or left IS NOT NULL when right is nil.
func NewNotEqual(left, right any) *Binary { return newBinary(KindNotEqual, left, right) }

// NewGreaterThan returns left > right.
func NewGreaterThan(left, right any) *Binary { return newBinary(KindGreaterThan, left, right) }

// NewGreaterThanOrEqual returns left >= right.
func NewGreaterThanOrEqual(left, right any) *Binary {
	return newBinary(KindGreaterThanOrEqual, left, right)
}

// NewLessThan returns left < right.
func NewLessThan(left, right any) *Binary { return newBinary(KindLessThan, left, right) }

// NewLessThanOrEqual returns left <= right.
func NewLessThanOrEqual(left, right any) *Binary {
	return newBinary(KindLessThanOrEqual, left, right)
}

// NewMatches returns left LIKE right.
func NewMatches(left, right any) *Binary { return newBinary(KindMatches, left, right) }

// NewDoesNotMatch returns left NOT LIKE right.
func NewDoesNotMatch(left, right any) *Binary { return newBinary(KindDoesNotMatch, left, right) }

// NewIn returns left IN right.
func NewIn(left, right any) *Binary { return newBinary(KindIn, left, right) }

// NewNotIn returns left NOT IN right.
func NewNotIn(left, right any) *Binary { return newBinary(KindNotIn, left, right) }

// NewBetween returns left BETWEEN right, where right is usually an And of
// the two bounds.
func NewBetween(left, right any) *Binary { return newBinary(KindBetween, left, right) }

// NewAssignment returns column = value as used by UPDATE ... SET.
func NewAssignment(column *Unary, value any) *Binary {
	return newBinary(KindAssignment, column, value)
}

// NewAs returns left AS right.
func NewAs(left, right any) *Binary { return newBinary(KindAs, left, right) }

// NewInnerJoin returns INNER JOIN relation [on].
func NewInnerJoin(relation Node, on Node) *Binary {
	return newBinary(KindInnerJoin, relation, on)
}

// NewOuterJoin returns LEFT OUTER JOIN relation on.
func NewOuterJoin(relation Node, on Node) *Binary {
	return newBinary(KindOuterJoin, relation, on)
}

// NewStringJoin returns a raw join fragment.
func NewStringJoin(fragment Node) *Binary {
	return newBinary(KindStringJoin, fragment, nil)
}

// IsJoin reports whether n is one of the join variants.
func IsJoin(n Node) bool {
	switch n.Kind() {
	case KindInnerJoin, KindOuterJoin, KindStringJoin:
		return true
	}
	return false
}

// WithConstraint returns a copy of the join j with its ON constraint
// replaced. Non-join nodes are returned unchanged.
func WithConstraint(j *Binary, on Node) *Binary {
	switch j.kind {
	case KindInnerJoin, KindOuterJoin:
		return newBinary(j.kind, j.Left, on)
	}
	return j
}

// Direction is the sort direction of an Ordering.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Ordering is an ORDER BY item with an explicit direction.
type Ordering struct {
	Predications
	Expr      any
	Direction Direction
}

// NewOrdering returns expr ordered in direction dir.
func NewOrdering(expr any, dir Direction) *Ordering {
	o := &Ordering{Expr: expr, Direction: dir}
	o.self = o
	return o
}

func (*Ordering) Kind() Kind { return KindOrdering }
func (*Ordering) node()      {}

// Reverse returns a new ordering over the same expression with the
// direction flipped.
func (o *Ordering) Reverse() *Ordering { return NewOrdering(o.Expr, o.Direction.Reverse()) }
