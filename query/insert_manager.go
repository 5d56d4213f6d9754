package query

import (
	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
)

// Pair is a column and the value written to it.
type Pair struct {
	Column *nodes.Attribute
	Value  any
}

// InsertManager builds an INSERT statement.
type InsertManager struct {
	treeManager
	ast *nodes.InsertStatement
}

// NewInsertManager returns an insert manager bound to drv.
func NewInsertManager(drv dialect.Driver) *InsertManager {
	return newInsertManager(newTreeManager(drv, nil))
}

func newInsertManager(tm treeManager) *InsertManager {
	return &InsertManager{treeManager: tm, ast: &nodes.InsertStatement{}}
}

// AST returns the statement owned by the manager.
func (m *InsertManager) AST() *nodes.InsertStatement { return m.ast }

// ToSQL renders the statement.
func (m *InsertManager) ToSQL() string { return m.visitor.Visit(m.ast) }

// Compile renders the statement, reporting values that cannot be quoted.
func (m *InsertManager) Compile() (string, error) { return m.visitor.Compile(m.ast) }

// Into sets the target table.
func (m *InsertManager) Into(table any) *InsertManager {
	m.ast.Relation = relationNode(table)
	return m
}

// Columns returns the column list.
func (m *InsertManager) Columns() []*nodes.Attribute { return m.ast.Columns }

// Values sets the VALUES node directly.
func (m *InsertManager) Values(values nodes.Node) *InsertManager {
	m.ast.Values = values
	return m
}

// CreateValues returns a VALUES node for the given values and columns.
func (m *InsertManager) CreateValues(values []any, columns []*nodes.Attribute) *nodes.Values {
	return nodes.NewValues(values, columns)
}

// Insert sets columns and values from fields, which is one of:
//
//   - []Pair: column/value pairs; an empty list leaves the statement
//     without columns or values
//   - *nodes.SqlLiteral: a pre-rendered VALUES body
//   - any other value: a single value of an insert without columns
//
// When no table was set, the table of the first column is used.
func (m *InsertManager) Insert(fields any) *InsertManager {
	switch f := fields.(type) {
	case nil:
	case []Pair:
		if len(f) == 0 {
			return m
		}
		if m.ast.Relation == nil && f[0].Column != nil {
			m.ast.Relation = f[0].Column.Relation
		}
		values := make([]any, len(f))
		for i, p := range f {
			m.ast.Columns = append(m.ast.Columns, p.Column)
			values[i] = p.Value
		}
		m.ast.Values = m.CreateValues(values, m.ast.Columns)
	case *nodes.SqlLiteral:
		m.ast.Values = f
	default:
		m.ast.Values = m.CreateValues([]any{f}, nil)
	}
	return m
}
