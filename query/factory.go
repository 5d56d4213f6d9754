package query

import "github.com/syssam/mapper/nodes"

// StatementFactory creates the nodes used to assemble joins and
// conditions. It is implemented by Table and SelectManager.
type StatementFactory interface {
	CreateAnd(clauses ...nodes.Node) *nodes.Nary
	CreateOn(expr nodes.Node) *nodes.Unary
	CreateJoin(to any, constraint nodes.Node, kind nodes.Kind) *nodes.Binary
	CreateStringJoin(to any) *nodes.Binary
}

var (
	_ StatementFactory = (*Table)(nil)
	_ StatementFactory = (*SelectManager)(nil)
)

// FactoryMethods implements StatementFactory.
type FactoryMethods struct{}

// CreateAnd joins clauses with AND.
func (FactoryMethods) CreateAnd(clauses ...nodes.Node) *nodes.Nary { return nodes.NewAnd(clauses...) }

// CreateOn returns the ON constraint of a join.
func (FactoryMethods) CreateOn(expr nodes.Node) *nodes.Unary { return nodes.NewOn(expr) }

// CreateJoin returns a join of the given kind. Kinds other than
// KindOuterJoin produce an inner join.
func (FactoryMethods) CreateJoin(to any, constraint nodes.Node, kind nodes.Kind) *nodes.Binary {
	rel := relationNode(to)
	if kind == nodes.KindOuterJoin {
		return nodes.NewOuterJoin(rel, constraint)
	}
	return nodes.NewInnerJoin(rel, constraint)
}

// CreateStringJoin returns a raw join fragment.
func (FactoryMethods) CreateStringJoin(to any) *nodes.Binary {
	return nodes.NewStringJoin(relationNode(to))
}

// relationNode converts a table, string or node into a node.
func relationNode(v any) nodes.Node {
	switch x := nodes.Literal(v).(type) {
	case nodes.Node:
		return x
	case nodes.Subquery:
		return nodes.NewGrouping(x.AST())
	case nil:
		return nil
	default:
		return nodes.NewQuoted(x)
	}
}

// exprNode converts a projection, order or group item into a node. The
// string "*" is the shared star literal; other strings are raw SQL.
func exprNode(v any) nodes.Node {
	if s, ok := v.(string); ok && s == "*" {
		return nodes.Star
	}
	return relationNode(v)
}
