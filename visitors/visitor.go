package visitors

import (
	"errors"
	"strings"

	"github.com/syssam/mapper/nodes"
)

// Visitor renders nodes and plain values as SQL text.
//
// Visit and Quote panic with a *ValuerError when a driver.Valuer fails.
// Compile and Literal report it as an error instead.
type Visitor struct {
	d    Dialect
	errs *[]error
}

// New returns a visitor rendering with the rules of d.
func New(d Dialect) *Visitor { return &Visitor{d: d} }

// Compile renders n like Visit and returns the values that could not be
// quoted as an error.
func (v *Visitor) Compile(n any) (string, error) {
	return v.collect(func(c *Visitor) string { return c.Visit(n) })
}

// Literal quotes value like Quote and returns a failing driver.Valuer as
// an error.
func (v *Visitor) Literal(value any, hint ColumnHint) (string, error) {
	return v.collect(func(c *Visitor) string { return c.Quote(value, hint) })
}

func (v *Visitor) collect(render func(*Visitor) string) (string, error) {
	c := &Visitor{d: v.d, errs: new([]error)}
	s := render(c)
	if err := errors.Join(*c.errs...); err != nil {
		return "", err
	}
	return s, nil
}

// fail records err when rendering through Compile, and panics otherwise.
func (v *Visitor) fail(err error) {
	if v.errs == nil {
		panic(err)
	}
	*v.errs = append(*v.errs, err)
}

// Dialect returns the dialect name of the visitor.
func (v *Visitor) Dialect() string { return v.d.Name() }

// Visit renders n. Values that are not nodes are quoted.
func (v *Visitor) Visit(n any) string {
	switch n := n.(type) {
	case nil:
		return "NULL"
	case *nodes.SqlLiteral:
		return n.Value
	case *nodes.Quoted:
		return v.Quote(n.Value, nil)
	case *nodes.Table:
		return v.visitTable(n)
	case *nodes.TableAlias:
		return v.Visit(n.Relation) + " " + v.QuoteTableName(n.Name)
	case *nodes.Attribute:
		return v.visitAttribute(n)
	case *nodes.Unary:
		return v.visitUnary(n)
	case *nodes.Binary:
		return v.visitBinary(n)
	case *nodes.Ordering:
		return v.Visit(n.Expr) + " " + string(n.Direction)
	case *nodes.Nary:
		return v.visitNary(n)
	case *nodes.Function:
		return v.visitFunction(n)
	case *nodes.Values:
		return v.visitValues(n)
	case *nodes.JoinSource:
		return v.visitJoinSource(n)
	case *nodes.SelectCore:
		return v.visitSelectCore(n)
	case *nodes.SelectStatement:
		return v.visitSelectStatement(n)
	case *nodes.InsertStatement:
		return v.visitInsertStatement(n)
	case *nodes.UpdateStatement:
		return v.visitUpdateStatement(n)
	case *nodes.DeleteStatement:
		return v.visitDeleteStatement(n)
	case nodes.TableSource:
		return v.visitTable(n.TableNode())
	case nodes.Subquery:
		return v.visitSelectStatement(n.AST())
	default:
		return v.Quote(n, nil)
	}
}

func (v *Visitor) visitTable(t *nodes.Table) string {
	if t.TableAlias != "" {
		return v.QuoteTableName(t.Name) + " " + v.QuoteTableName(t.TableAlias)
	}
	return v.QuoteTableName(t.Name)
}

func (v *Visitor) visitAttribute(a *nodes.Attribute) string {
	column := "*"
	if a.Name != "*" {
		column = v.QuoteColumnName(a.Name)
	}
	rel := a.RelationName()
	if rel == "" {
		return column
	}
	return v.QuoteTableName(rel) + "." + column
}

func (v *Visitor) visitUnary(u *nodes.Unary) string {
	switch u.Kind() {
	case nodes.KindGrouping:
		return "(" + v.Visit(u.Expr) + ")"
	case nodes.KindNot:
		return "NOT (" + v.Visit(u.Expr) + ")"
	case nodes.KindLimit:
		return "LIMIT " + v.Visit(u.Expr)
	case nodes.KindOffset:
		return "OFFSET " + v.Visit(u.Expr)
	case nodes.KindHaving:
		if exprs, ok := u.Expr.([]nodes.Node); ok {
			return "HAVING " + v.join(exprs, " AND ")
		}
		return "HAVING " + v.Visit(u.Expr)
	case nodes.KindOn:
		return "ON " + v.Visit(u.Expr)
	case nodes.KindGroup:
		return v.Visit(u.Expr)
	case nodes.KindUnqualifiedColumn:
		if a, ok := u.Expr.(*nodes.Attribute); ok {
			return v.QuoteColumnName(a.Name)
		}
		return v.Visit(u.Expr)
	case nodes.KindLock:
		return v.d.LockClause()
	}
	return v.Visit(u.Expr)
}

func (v *Visitor) visitBinary(b *nodes.Binary) string {
	switch b.Kind() {
	case nodes.KindEquality:
		if isNull(b.Right) {
			return v.Visit(b.Left) + " IS NULL"
		}
		return v.Visit(b.Left) + " = " + v.operand(b.Left, b.Right)
	case nodes.KindNotEqual:
		if isNull(b.Right) {
			return v.Visit(b.Left) + " IS NOT NULL"
		}
		return v.Visit(b.Left) + " != " + v.operand(b.Left, b.Right)
	case nodes.KindGreaterThan:
		return v.Visit(b.Left) + " > " + v.operand(b.Left, b.Right)
	case nodes.KindGreaterThanOrEqual:
		return v.Visit(b.Left) + " >= " + v.operand(b.Left, b.Right)
	case nodes.KindLessThan:
		return v.Visit(b.Left) + " < " + v.operand(b.Left, b.Right)
	case nodes.KindLessThanOrEqual:
		return v.Visit(b.Left) + " <= " + v.operand(b.Left, b.Right)
	case nodes.KindMatches:
		return v.Visit(b.Left) + " LIKE " + v.Visit(b.Right)
	case nodes.KindDoesNotMatch:
		return v.Visit(b.Left) + " NOT LIKE " + v.Visit(b.Right)
	case nodes.KindIn:
		return v.Visit(b.Left) + " IN " + v.grouped(b.Right, columnFor(b.Left))
	case nodes.KindNotIn:
		return v.Visit(b.Left) + " NOT IN " + v.grouped(b.Right, columnFor(b.Left))
	case nodes.KindBetween:
		if r, ok := b.Right.(*nodes.Nary); ok && r.Kind() == nodes.KindAnd && len(r.Children) == 2 {
			return v.Visit(b.Left) + " BETWEEN " + v.operand(b.Left, r.Children[0]) + " AND " + v.operand(b.Left, r.Children[1])
		}
		return v.Visit(b.Left) + " BETWEEN " + v.Visit(b.Right)
	case nodes.KindAssignment:
		return v.Visit(b.Left) + " = " + v.Quote(b.Right, columnFor(b.Left))
	case nodes.KindAs:
		return v.Visit(b.Left) + " AS " + v.Visit(b.Right)
	case nodes.KindInnerJoin:
		if b.Right == nil {
			return "INNER JOIN " + v.Visit(b.Left)
		}
		return "INNER JOIN " + v.Visit(b.Left) + " " + v.Visit(b.Right)
	case nodes.KindOuterJoin:
		if b.Right == nil {
			return "LEFT OUTER JOIN " + v.Visit(b.Left)
		}
		return "LEFT OUTER JOIN " + v.Visit(b.Left) + " " + v.Visit(b.Right)
	case nodes.KindStringJoin:
		return v.Visit(b.Left)
	}
	return v.Visit(b.Left) + " " + v.Visit(b.Right)
}

// operand renders the right side of a comparison. Plain values are quoted
// with the type hint of the column they are compared to.
func (v *Visitor) operand(left, right any) string {
	if q, ok := right.(*nodes.Quoted); ok {
		return v.Quote(q.Value, columnFor(left))
	}
	return v.Quote(right, columnFor(left))
}

// grouped renders an IN operand in parentheses unless it already is a
// grouping. Listed values are quoted with hint.
func (v *Visitor) grouped(operand any, hint ColumnHint) string {
	u, ok := operand.(*nodes.Unary)
	if !ok || u.Kind() != nodes.KindGrouping {
		return "(" + v.Quote(operand, hint) + ")"
	}
	switch u.Expr.(type) {
	case nodes.Node, nodes.TableSource, nodes.Subquery:
		return v.Visit(u)
	}
	return "(" + v.Quote(u.Expr, hint) + ")"
}

func (v *Visitor) visitNary(n *nodes.Nary) string {
	if n.Kind() == nodes.KindOr {
		if len(n.Children) == 0 {
			return "1=0"
		}
		return v.join(n.Children, " OR ")
	}
	if len(n.Children) == 0 {
		return "1=1"
	}
	return v.join(n.Children, " AND ")
}

func (v *Visitor) visitFunction(f *nodes.Function) string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte('(')
	if f.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(v.Visit(f.Expr))
	b.WriteByte(')')
	if f.Alias != nil {
		b.WriteString(" AS ")
		b.WriteString(v.Visit(f.Alias))
	}
	return b.String()
}

func (v *Visitor) visitValues(n *nodes.Values) string {
	values := make([]string, len(n.Exprs))
	for i, e := range n.Exprs {
		var hint ColumnHint
		if i < len(n.Columns) && n.Columns[i] != nil {
			hint = n.Columns[i]
		}
		values[i] = v.Quote(e, hint)
	}
	return "VALUES (" + strings.Join(values, ", ") + ")"
}

func (v *Visitor) visitJoinSource(n *nodes.JoinSource) string {
	var parts []string
	if n.Left != nil {
		parts = append(parts, "FROM "+v.Visit(n.Left))
	}
	for _, j := range n.Right {
		parts = append(parts, v.Visit(j))
	}
	return strings.Join(parts, " ")
}

func (v *Visitor) visitSelectCore(c *nodes.SelectCore) string {
	parts := make([]string, 0, 5)
	if len(c.Projections) > 0 {
		parts = append(parts, "SELECT "+v.join(c.Projections, ", "))
	} else {
		parts = append(parts, "SELECT")
	}
	source := c.Source
	if source == nil {
		source = &nodes.JoinSource{}
	}
	if source.Left == nil {
		if from := v.d.EmptyFrom(); from != nil {
			source = &nodes.JoinSource{Left: from, Right: source.Right}
		}
	}
	if s := v.visitJoinSource(source); s != "" {
		parts = append(parts, s)
	}
	if len(c.Wheres) > 0 {
		parts = append(parts, "WHERE "+v.join(c.Wheres, " AND "))
	}
	if len(c.Groups) > 0 {
		parts = append(parts, "GROUP BY "+v.join(c.Groups, ", "))
	}
	if c.Having != nil {
		parts = append(parts, v.Visit(c.Having))
	}
	return strings.Join(parts, " ")
}

func (v *Visitor) visitSelectStatement(s *nodes.SelectStatement) string {
	parts := []string{v.visitSelectCore(s.Core)}
	if len(s.Orders) > 0 {
		parts = append(parts, "ORDER BY "+v.join(s.Orders, ", "))
	}
	if s.Limit != nil {
		parts = append(parts, v.Visit(s.Limit))
	} else if s.Offset != nil {
		if limit := v.d.UnboundedLimit(); limit != nil {
			parts = append(parts, "LIMIT "+v.Visit(limit))
		}
	}
	if s.Offset != nil {
		parts = append(parts, v.Visit(s.Offset))
	}
	if s.Lock != nil {
		if lock := v.Visit(s.Lock); lock != "" {
			parts = append(parts, lock)
		}
	}
	return strings.Join(parts, " ")
}

func (v *Visitor) visitInsertStatement(s *nodes.InsertStatement) string {
	parts := []string{"INSERT INTO " + v.Visit(s.Relation)}
	if len(s.Columns) > 0 {
		columns := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			columns[i] = v.QuoteColumnName(c.Name)
		}
		parts = append(parts, "("+strings.Join(columns, ", ")+")")
	}
	if s.Values != nil {
		if lit, ok := s.Values.(*nodes.SqlLiteral); ok {
			parts = append(parts, "VALUES ("+lit.Value+")")
		} else {
			parts = append(parts, v.Visit(s.Values))
		}
	}
	return strings.Join(parts, " ")
}

func (v *Visitor) visitUpdateStatement(s *nodes.UpdateStatement) string {
	native := v.d.NativeUpdateLimit()
	wheres := s.Wheres
	if !native && (len(s.Orders) > 0 || s.Limit != nil) {
		sub := nodes.NewSelectStatement()
		sub.Core.Source.Left = s.Relation
		sub.Core.Projections = []nodes.Node{s.Key}
		sub.Core.Wheres = s.Wheres
		sub.Orders = s.Orders
		sub.Limit = s.Limit
		wheres = []nodes.Node{nodes.NewIn(s.Key, nodes.NewGrouping(sub))}
	}
	parts := []string{"UPDATE " + v.Visit(s.Relation)}
	if len(s.Values) > 0 {
		parts = append(parts, "SET "+v.join(s.Values, ", "))
	}
	if len(wheres) > 0 {
		parts = append(parts, "WHERE "+v.join(wheres, " AND "))
	}
	if native {
		if len(s.Orders) > 0 {
			parts = append(parts, "ORDER BY "+v.join(s.Orders, ", "))
		}
		if s.Limit != nil {
			parts = append(parts, v.Visit(s.Limit))
		}
	}
	return strings.Join(parts, " ")
}

func (v *Visitor) visitDeleteStatement(s *nodes.DeleteStatement) string {
	if len(s.Wheres) == 0 {
		return "DELETE FROM " + v.Visit(s.Relation)
	}
	return "DELETE FROM " + v.Visit(s.Relation) + " WHERE " + v.join(s.Wheres, " AND ")
}

// WhereSQL renders only the WHERE clause of a select core. It returns ""
// when the core has no conditions.
func (v *Visitor) WhereSQL(c *nodes.SelectCore) string {
	if len(c.Wheres) == 0 {
		return ""
	}
	return "WHERE " + v.join(c.Wheres, " AND ")
}

// OrderClauses renders each ORDER BY item of s separately.
func (v *Visitor) OrderClauses(s *nodes.SelectStatement) []string {
	orders := make([]string, len(s.Orders))
	for i, o := range s.Orders {
		orders[i] = v.Visit(o)
	}
	return orders
}

func (v *Visitor) join(list []nodes.Node, sep string) string {
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = v.Visit(n)
	}
	return strings.Join(parts, sep)
}
