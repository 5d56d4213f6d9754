package query

import (
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
)

// DeleteManager builds a DELETE statement.
type DeleteManager struct {
	treeManager
	ast *nodes.DeleteStatement
}

// NewDeleteManager returns a delete manager bound to drv.
func NewDeleteManager(drv dialect.Driver) *DeleteManager {
	return newDeleteManager(newTreeManager(drv, nil))
}

func newDeleteManager(tm treeManager) *DeleteManager {
	return &DeleteManager{treeManager: tm, ast: &nodes.DeleteStatement{}}
}

// AST returns the statement owned by the manager.
func (m *DeleteManager) AST() *nodes.DeleteStatement { return m.ast }

// ToSQL renders the statement.
func (m *DeleteManager) ToSQL() string { return m.visitor.Visit(m.ast) }

// Compile renders the statement, reporting values that cannot be quoted.
func (m *DeleteManager) Compile() (string, error) { return m.visitor.Compile(m.ast) }

// From sets the table rows are deleted from.
func (m *DeleteManager) From(table any) *DeleteManager {
	m.ast.Relation = relationNode(table)
	return m
}

// Where appends conditions.
func (m *DeleteManager) Where(exprs ...nodes.Node) *DeleteManager {
	for _, e := range exprs {
		if e != nil {
			m.ast.Wheres = append(m.ast.Wheres, e)
		}
	}
	return m
}

// SetWheres replaces the conditions.
func (m *DeleteManager) SetWheres(exprs []nodes.Node) *DeleteManager {
	m.ast.Wheres = exprs
	return m
}
