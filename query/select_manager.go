package query

import (
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
)

// SelectManager builds a SELECT statement.
type SelectManager struct {
	treeManager
	FactoryMethods
	ast *nodes.SelectStatement
}

// NewSelectManager returns a select manager bound to drv selecting from
// table. Both arguments may be nil.
func NewSelectManager(drv dialect.Driver, table any) *SelectManager {
	return newSelectManager(newTreeManager(drv, nil), table)
}

func newSelectManager(tm treeManager, table any) *SelectManager {
	m := &SelectManager{treeManager: tm, ast: nodes.NewSelectStatement()}
	if table != nil {
		m.From(table)
	}
	return m
}

// AST returns the statement owned by the manager.
func (m *SelectManager) AST() *nodes.SelectStatement { return m.ast }

// Core returns the select core of the statement.
func (m *SelectManager) Core() *nodes.SelectCore { return m.ast.Core }

// ToSQL renders the statement. It panics when a bound driver.Valuer
// fails; use Compile to handle that case.
func (m *SelectManager) ToSQL() string { return m.visitor.Visit(m.ast) }

// Compile renders the statement, reporting values that cannot be quoted.
func (m *SelectManager) Compile() (string, error) { return m.visitor.Compile(m.ast) }

// String implements fmt.Stringer.
func (m *SelectManager) String() string { return m.ToSQL() }

// From sets the FROM source. Join nodes are appended to the join list
// instead. Strings are used as raw SQL.
func (m *SelectManager) From(table any) *SelectManager {
	n := relationNode(table)
	if n == nil {
		return m
	}
	if b, ok := n.(*nodes.Binary); ok && nodes.IsJoin(b) {
		m.ast.Core.Source.Right = append(m.ast.Core.Source.Right, b)
		return m
	}
	m.ast.Core.Source.Left = n
	return m
}

// Froms returns the FROM source, if any.
func (m *SelectManager) Froms() []nodes.Node {
	if m.ast.Core.Source.Left == nil {
		return nil
	}
	return []nodes.Node{m.ast.Core.Source.Left}
}

// Project appends to the projection list. Strings are used as raw SQL.
func (m *SelectManager) Project(projections ...any) *SelectManager {
	for _, p := range projections {
		if n := exprNode(p); n != nil {
			m.ast.Core.Projections = append(m.ast.Core.Projections, n)
		}
	}
	return m
}

// Projections returns the projection list.
func (m *SelectManager) Projections() []nodes.Node { return m.ast.Core.Projections }

// SetProjections replaces the projection list.
func (m *SelectManager) SetProjections(projections []nodes.Node) *SelectManager {
	m.ast.Core.Projections = projections
	return m
}

// Join appends a join on relation. Strings and SQL literals become raw
// joins; other relations are joined with INNER JOIN unless kind is
// nodes.KindOuterJoin. A nil relation is ignored.
func (m *SelectManager) Join(relation any, kind ...nodes.Kind) *SelectManager {
	if relation == nil {
		return m
	}
	var j *nodes.Binary
	switch r := relation.(type) {
	case string:
		j = m.CreateStringJoin(nodes.SQL(r))
	case *nodes.SqlLiteral:
		j = m.CreateStringJoin(r)
	default:
		k := nodes.KindInnerJoin
		if len(kind) > 0 {
			k = kind[0]
		}
		j = m.CreateJoin(r, nil, k)
	}
	m.ast.Core.Source.Right = append(m.ast.Core.Source.Right, j)
	return m
}

// OuterJoin appends a LEFT OUTER JOIN on relation.
func (m *SelectManager) OuterJoin(relation any) *SelectManager {
	return m.Join(relation, nodes.KindOuterJoin)
}

// On sets the constraint of the most recent join. Several expressions are
// joined with AND.
func (m *SelectManager) On(exprs ...nodes.Node) *SelectManager {
	right := m.ast.Core.Source.Right
	if len(right) == 0 || len(exprs) == 0 {
		return m
	}
	last, ok := right[len(right)-1].(*nodes.Binary)
	if !ok {
		return m
	}
	var expr nodes.Node = exprs[0]
	if len(exprs) > 1 {
		expr = m.CreateAnd(exprs...)
	}
	right[len(right)-1] = nodes.WithConstraint(last, m.CreateOn(expr))
	return m
}

// JoinSources returns the join list.
func (m *SelectManager) JoinSources() []nodes.Node { return m.ast.Core.Source.Right }

// Where appends conditions. All conditions are joined with AND.
func (m *SelectManager) Where(exprs ...nodes.Node) *SelectManager {
	for _, e := range exprs {
		if e != nil {
			m.ast.Core.Wheres = append(m.ast.Core.Wheres, e)
		}
	}
	return m
}

// Wheres returns the condition list.
func (m *SelectManager) Wheres() []nodes.Node { return m.ast.Core.Wheres }

// WhereSQL returns the rendered WHERE clause, or nil when there are no
// conditions.
func (m *SelectManager) WhereSQL() *nodes.SqlLiteral {
	s := m.visitor.WhereSQL(m.ast.Core)
	if s == "" {
		return nil
	}
	return nodes.SQL(s)
}

// Group appends GROUP BY items. Strings are used as raw SQL.
func (m *SelectManager) Group(columns ...any) *SelectManager {
	for _, c := range columns {
		if n := exprNode(c); n != nil {
			m.ast.Core.Groups = append(m.ast.Core.Groups, nodes.NewGroup(n))
		}
	}
	return m
}

// Having sets the HAVING conditions.
func (m *SelectManager) Having(exprs ...nodes.Node) *SelectManager {
	if len(exprs) == 0 {
		m.ast.Core.Having = nil
		return m
	}
	m.ast.Core.Having = nodes.NewHaving(exprs...)
	return m
}

// Order appends ORDER BY items. Strings are used as raw SQL.
func (m *SelectManager) Order(exprs ...any) *SelectManager {
	for _, e := range exprs {
		if n := exprNode(e); n != nil {
			m.ast.Orders = append(m.ast.Orders, n)
		}
	}
	return m
}

// Orders returns the ORDER BY items.
func (m *SelectManager) Orders() []nodes.Node { return m.ast.Orders }

// OrderClauses returns each ORDER BY item rendered as a literal.
func (m *SelectManager) OrderClauses() []*nodes.SqlLiteral {
	rendered := m.visitor.OrderClauses(m.ast)
	clauses := make([]*nodes.SqlLiteral, len(rendered))
	for i, s := range rendered {
		clauses[i] = nodes.SQL(s)
	}
	return clauses
}

// Take sets the LIMIT. A nil limit removes it.
func (m *SelectManager) Take(limit any) *SelectManager {
	if limit == nil {
		m.ast.Limit = nil
		return m
	}
	m.ast.Limit = nodes.NewLimit(limit)
	return m
}

// Limit is an alias of Take.
func (m *SelectManager) Limit(limit any) *SelectManager { return m.Take(limit) }

// Taken returns the LIMIT expression, or nil.
func (m *SelectManager) Taken() any {
	if m.ast.Limit == nil {
		return nil
	}
	return m.ast.Limit.Expr
}

// Skip sets the OFFSET. A nil offset removes it.
func (m *SelectManager) Skip(offset any) *SelectManager {
	if offset == nil {
		m.ast.Offset = nil
		return m
	}
	m.ast.Offset = nodes.NewOffset(offset)
	return m
}

// Offset is an alias of Skip.
func (m *SelectManager) Offset(offset any) *SelectManager { return m.Skip(offset) }

// Lock adds a row lock, rendered by dialects that support it.
func (m *SelectManager) Lock() *SelectManager {
	m.ast.Lock = nodes.NewLock()
	return m
}

// Exists wraps the statement in EXISTS().
func (m *SelectManager) Exists() *nodes.Function { return nodes.NewExists(m.ast) }

var _ nodes.Subquery = (*SelectManager)(nil)
