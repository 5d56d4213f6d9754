package nodes

// Function is an SQL function call: one of the aggregates, EXISTS, or a
// named function. Expr holds the argument, or a slice of arguments.
type Function struct {
	Predications
	kind     Kind
	Name     string
	Expr     any
	Alias    Node
	Distinct bool
}

func newFunction(kind Kind, name string, expr any, alias Node) *Function {
	f := &Function{kind: kind, Name: name, Expr: expr, Alias: alias}
	f.self = f
	return f
}

func (f *Function) Kind() Kind { return f.kind }
func (*Function) node()        {}

// As returns a copy of f aliased to alias. A string alias becomes a
// SqlLiteral.
func (f *Function) As(alias any) *Function {
	c := newFunction(f.kind, f.Name, f.Expr, aliasNode(alias))
	c.Distinct = f.Distinct
	return c
}

func aliasNode(alias any) Node {
	switch a := alias.(type) {
	case nil:
		return nil
	case string:
		return SQL(a)
	case Node:
		return a
	}
	return nil
}

// NewCount returns COUNT([DISTINCT] expr).
func NewCount(expr any, distinct bool) *Function {
	f := newFunction(KindCount, "COUNT", expr, nil)
	f.Distinct = distinct
	return f
}

// NewSum returns SUM(expr) aliased sum_id.
func NewSum(expr any) *Function { return newFunction(KindSum, "SUM", expr, SQL("sum_id")) }

// NewMax returns MAX(expr) aliased max_id.
func NewMax(expr any) *Function { return newFunction(KindMax, "MAX", expr, SQL("max_id")) }

// NewMin returns MIN(expr) aliased min_id.
func NewMin(expr any) *Function { return newFunction(KindMin, "MIN", expr, SQL("min_id")) }

// NewAvg returns AVG(expr) aliased avg_id.
func NewAvg(expr any) *Function { return newFunction(KindAvg, "AVG", expr, SQL("avg_id")) }

// NewExists returns EXISTS(expr).
func NewExists(expr any) *Function { return newFunction(KindExists, "EXISTS", expr, nil) }

// NewNamedFunction returns name(args) with an optional alias.
func NewNamedFunction(name string, args any, alias ...any) *Function {
	var a Node
	if len(alias) > 0 {
		a = aliasNode(alias[0])
	}
	return newFunction(KindNamedFunction, name, args, a)
}
