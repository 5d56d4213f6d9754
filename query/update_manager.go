package query

import (
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
)

// UpdateManager builds an UPDATE statement.
type UpdateManager struct {
	treeManager
	ast *nodes.UpdateStatement
}

// NewUpdateManager returns an update manager bound to drv.
func NewUpdateManager(drv dialect.Driver) *UpdateManager {
	return newUpdateManager(newTreeManager(drv, nil))
}

func newUpdateManager(tm treeManager) *UpdateManager {
	return &UpdateManager{treeManager: tm, ast: &nodes.UpdateStatement{}}
}

// AST returns the statement owned by the manager.
func (m *UpdateManager) AST() *nodes.UpdateStatement { return m.ast }

// ToSQL renders the statement.
func (m *UpdateManager) ToSQL() string { return m.visitor.Visit(m.ast) }

// Compile renders the statement, reporting values that cannot be quoted.
func (m *UpdateManager) Compile() (string, error) { return m.visitor.Compile(m.ast) }

// Table sets the updated table.
func (m *UpdateManager) Table(table any) *UpdateManager {
	m.ast.Relation = relationNode(table)
	return m
}

// Set sets the assignments from a []Pair, or from a raw SQL string or
// literal.
func (m *UpdateManager) Set(values any) *UpdateManager {
	switch v := values.(type) {
	case []Pair:
		m.ast.Values = make([]nodes.Node, 0, len(v))
		for _, p := range v {
			m.ast.Values = append(m.ast.Values, nodes.NewAssignment(nodes.NewUnqualifiedColumn(p.Column), p.Value))
		}
	case string:
		m.ast.Values = []nodes.Node{nodes.SQL(v)}
	case nodes.Node:
		m.ast.Values = []nodes.Node{v}
	}
	return m
}

// Where appends conditions.
func (m *UpdateManager) Where(exprs ...nodes.Node) *UpdateManager {
	for _, e := range exprs {
		if e != nil {
			m.ast.Wheres = append(m.ast.Wheres, e)
		}
	}
	return m
}

// SetWheres replaces the conditions.
func (m *UpdateManager) SetWheres(exprs []nodes.Node) *UpdateManager {
	m.ast.Wheres = exprs
	return m
}

// Order replaces the ORDER BY items. Strings are used as raw SQL.
func (m *UpdateManager) Order(exprs ...any) *UpdateManager {
	m.ast.Orders = nil
	for _, e := range exprs {
		if n := exprNode(e); n != nil {
			m.ast.Orders = append(m.ast.Orders, n)
		}
	}
	return m
}

// Take sets the LIMIT. A nil limit removes it.
func (m *UpdateManager) Take(limit any) *UpdateManager {
	if limit == nil {
		m.ast.Limit = nil
		return m
	}
	m.ast.Limit = nodes.NewLimit(limit)
	return m
}

// Key sets the column identifying rows when ORDER BY or LIMIT is
// rewritten into a sub-select.
func (m *UpdateManager) Key(key nodes.Node) *UpdateManager {
	m.ast.Key = key
	return m
}
