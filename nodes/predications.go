package nodes

// Expression is the capability set shared by every expression node.
type Expression interface {
	Node
	Eq(other any) *Binary
	EqAny(others ...any) *Unary
	EqAll(others ...any) *Unary
	NotEq(other any) *Binary
	NotEqAny(others ...any) *Unary
	NotEqAll(others ...any) *Unary
	Gt(other any) *Binary
	GtAny(others ...any) *Unary
	GtAll(others ...any) *Unary
	Gteq(other any) *Binary
	GteqAny(others ...any) *Unary
	GteqAll(others ...any) *Unary
	Lt(other any) *Binary
	LtAny(others ...any) *Unary
	LtAll(others ...any) *Unary
	Lteq(other any) *Binary
	LteqAny(others ...any) *Unary
	LteqAll(others ...any) *Unary
	Matches(other any) *Binary
	MatchesAny(others ...any) *Unary
	MatchesAll(others ...any) *Unary
	DoesNotMatch(other any) *Binary
	DoesNotMatchAny(others ...any) *Unary
	DoesNotMatchAll(others ...any) *Unary
	In(other any) *Binary
	InAny(others ...any) *Unary
	InAll(others ...any) *Unary
	NotIn(other any) *Binary
	NotInAny(others ...any) *Unary
	NotInAll(others ...any) *Unary
	Between(low, high any) *Binary
	And(other Node) *Nary
	Or(other Node) *Unary
	Not() *Unary
	Asc() *Ordering
	Desc() *Ordering
	Count(distinct bool) *Function
	Sum() *Function
	Maximum() *Function
	Minimum() *Function
	Average() *Function
}

var (
	_ Expression = (*Attribute)(nil)
	_ Expression = (*SqlLiteral)(nil)
	_ Expression = (*Binary)(nil)
	_ Expression = (*Unary)(nil)
	_ Expression = (*Nary)(nil)
	_ Expression = (*Function)(nil)
	_ Expression = (*Ordering)(nil)
)

// Predications builds new nodes with the embedding node as left operand.
// It must be embedded and initialized through the node constructors.
type Predications struct {
	self Node
}

func (p Predications) Eq(other any) *Binary { return NewEquality(p.self, other) }
func (p Predications) NotEq(other any) *Binary { return NewNotEqual(p.self, other) }
func (p Predications) Gt(other any) *Binary { return NewGreaterThan(p.self, other) }
func (p Predications) Gteq(other any) *Binary { return NewGreaterThanOrEqual(p.self, other) }
func (p Predications) Lt(other any) *Binary { return NewLessThan(p.self, other) }
func (p Predications) Lteq(other any) *Binary { return NewLessThanOrEqual(p.self, other) }
func (p Predications) Matches(other any) *Binary { return NewMatches(p.self, other) }
func (p Predications) DoesNotMatch(other any) *Binary { return NewDoesNotMatch(p.self, other) }

func (p Predications) EqAny(others ...any) *Unary { return p.anyOf(p.Eq, others) }
func (p Predications) EqAll(others ...any) *Unary { return p.allOf(p.Eq, others) }
func (p Predications) NotEqAny(others ...any) *Unary { return p.anyOf(p.NotEq, others) }
func (p Predications) NotEqAll(others ...any) *Unary { return p.allOf(p.NotEq, others) }
func (p Predications) GtAny(others ...any) *Unary { return p.anyOf(p.Gt, others) }
func (p Predications) GtAll(others ...any) *Unary { return p.allOf(p.Gt, others) }
func (p Predications) GteqAny(others ...any) *Unary { return p.anyOf(p.Gteq, others) }
func (p Predications) GteqAll(others ...any) *Unary { return p.allOf(p.Gteq, others) }
func (p Predications) LtAny(others ...any) *Unary { return p.anyOf(p.Lt, others) }
func (p Predications) LtAll(others ...any) *Unary { return p.allOf(p.Lt, others) }
func (p Predications) LteqAny(others ...any) *Unary { return p.anyOf(p.Lteq, others) }
func (p Predications) LteqAll(others ...any) *Unary { return p.allOf(p.Lteq, others) }

func (p Predications) MatchesAny(others ...any) *Unary { return p.anyOf(p.Matches, others) }
func (p Predications) MatchesAll(others ...any) *Unary { return p.allOf(p.Matches, others) }
func (p Predications) DoesNotMatchAny(others ...any) *Unary { return p.anyOf(p.DoesNotMatch, others) }
func (p Predications) DoesNotMatchAll(others ...any) *Unary { return p.allOf(p.DoesNotMatch, others) }

// In returns self IN other. A select statement or manager renders as a
// parenthesised sub-select; any other value is rendered as a list.
func (p Predications) In(other any) *Binary { return NewIn(p.self, inOperand(other)) }

// NotIn returns self NOT IN other.
func (p Predications) NotIn(other any) *Binary { return NewNotIn(p.self, inOperand(other)) }

func (p Predications) InAny(others ...any) *Unary { return p.anyOf(p.In, others) }
func (p Predications) InAll(others ...any) *Unary { return p.allOf(p.In, others) }
func (p Predications) NotInAny(others ...any) *Unary { return p.anyOf(p.NotIn, others) }
func (p Predications) NotInAll(others ...any) *Unary { return p.allOf(p.NotIn, others) }

// Between returns self BETWEEN low AND high.
func (p Predications) Between(low, high any) *Binary {
	return NewBetween(p.self, NewAnd(valueNode(low), valueNode(high)))
}

// And returns self AND other.
func (p Predications) And(other Node) *Nary { return NewAnd(p.self, other) }

// Or returns (self OR other). The disjunction is always grouped.
func (p Predications) Or(other Node) *Unary { return NewGrouping(NewOr(p.self, other)) }

// Not returns NOT (self).
func (p Predications) Not() *Unary { return NewNot(p.self) }

// As returns self AS other. A string alias becomes a SqlLiteral.
func (p Predications) As(other any) *Binary { return NewAs(p.self, aliasNode(other)) }

// Asc returns self ASC.
func (p Predications) Asc() *Ordering { return NewOrdering(p.self, Ascending) }

// Desc returns self DESC.
func (p Predications) Desc() *Ordering { return NewOrdering(p.self, Descending) }

// Count returns COUNT([DISTINCT] self).
func (p Predications) Count(distinct bool) *Function { return NewCount([]any{p.self}, distinct) }

func (p Predications) Sum() *Function { return NewSum([]any{p.self}) }
func (p Predications) Maximum() *Function { return NewMax([]any{p.self}) }
func (p Predications) Minimum() *Function { return NewMin([]any{p.self}) }
func (p Predications) Average() *Function { return NewAvg([]any{p.self}) }

func (p Predications) anyOf(build func(any) *Binary, others []any) *Unary {
	children := make([]Node, len(others))
	for i, o := range others {
		children[i] = build(o)
	}
	return NewGrouping(NewOr(children...))
}

func (p Predications) allOf(build func(any) *Binary, others []any) *Unary {
	children := make([]Node, len(others))
	for i, o := range others {
		children[i] = build(o)
	}
	return NewGrouping(NewAnd(children...))
}

func inOperand(other any) any {
	switch o := other.(type) {
	case *SelectStatement:
		return NewGrouping(o)
	case Subquery:
		return NewGrouping(o.AST())
	default:
		return NewGrouping(other)
	}
}

// valueNode lifts a plain value into a node so that it can be a child of
// an n-ary node. The literal is rendered through the visitor's quoting.
func valueNode(v any) Node {
	if n, ok := v.(Node); ok {
		return n
	}
	return NewQuoted(v)
}

// Quoted wraps a plain Go value so it can be used where a Node is needed.
type Quoted struct {
	Predications
	Value any
}

// NewQuoted returns a node rendering v as a quoted SQL value.
func NewQuoted(v any) *Quoted {
	q := &Quoted{Value: v}
	q.self = q
	return q
}

func (*Quoted) Kind() Kind { return KindQuoted }
func (*Quoted) node()      {}
