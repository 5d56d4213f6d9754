package nodes_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/mapper/nodes"
)

func TestKind(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	tests := []struct {
		node nodes.Node
		want nodes.Kind
	}{
		{nodes.SQL("x"), nodes.KindSqlLiteral},
		{users, nodes.KindTable},
		{users.Alias("u"), nodes.KindTableAlias},
		{users.Column("id"), nodes.KindAttribute},
		{users.Column("id").Eq(1), nodes.KindEquality},
		{users.Column("id").NotEq(1), nodes.KindNotEqual},
		{users.Column("id").In([]int{1}), nodes.KindIn},
		{users.Column("id").Or(nodes.SQL("x")), nodes.KindGrouping},
		{users.Column("id").And(nodes.SQL("x")), nodes.KindAnd},
		{users.Column("id").Desc(), nodes.KindOrdering},
		{users.Column("id").Sum(), nodes.KindSum},
		{users.Column("id").Count(true), nodes.KindCount},
		{nodes.NewExists(nodes.NewSelectStatement()), nodes.KindExists},
		{nodes.NewLock(), nodes.KindLock},
		{nodes.NewSelectStatement(), nodes.KindSelectStatement},
		{&nodes.DeleteStatement{}, nodes.KindDeleteStatement},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.Kind())
		})
	}
	assert.Equal(t, "Unknown", nodes.Kind(250).String())
}

func TestTable(t *testing.T) {
	t.Parallel()
	t.Run("alias equal to name is ignored", func(t *testing.T) {
		assert.Empty(t, nodes.NewTable("users", "users").TableAlias)
		assert.Equal(t, "foo", nodes.NewTable("users", "foo").TableAlias)
	})
	t.Run("columns reference the table", func(t *testing.T) {
		users := nodes.NewTable("users")
		col := users.Column("id")
		assert.Same(t, users, col.Relation)
		assert.Equal(t, "users", col.RelationName())
		assert.Equal(t, "u", users.Alias("u").Column("id").RelationName())
	})
	t.Run("typed copy", func(t *testing.T) {
		col := nodes.NewTable("users").Column("age")
		typed := col.Typed("integer")
		assert.Empty(t, col.ColumnType())
		assert.Equal(t, "integer", typed.ColumnType())
		eq := typed.Eq(1)
		assert.Same(t, typed, eq.Left)
	})
}

func TestPredications_ComposeWithoutMutation(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	id := users.Column("id")
	left := id.Eq(1)
	right := id.Eq(2)

	or := left.Or(right)
	and := left.And(right)

	inner, ok := or.Expr.(*nodes.Nary)
	require.True(t, ok)
	assert.Equal(t, nodes.KindOr, inner.Kind())
	assert.Same(t, left, inner.Children[0])
	assert.Same(t, right, inner.Children[1])
	assert.Len(t, and.Children, 2)

	assert.Same(t, id, left.Left)
	assert.Equal(t, 1, left.Right)
}

func TestPredications_AnyAll(t *testing.T) {
	t.Parallel()
	id := nodes.NewTable("users").Column("id")

	g := id.EqAny(1, 2, 3)
	or, ok := g.Expr.(*nodes.Nary)
	require.True(t, ok)
	assert.Equal(t, nodes.KindOr, or.Kind())
	assert.Len(t, or.Children, 3)

	g = id.NotEqAll()
	and, ok := g.Expr.(*nodes.Nary)
	require.True(t, ok)
	assert.Equal(t, nodes.KindAnd, and.Kind())
	assert.Empty(t, and.Children)
}

func TestPredications_InSubquery(t *testing.T) {
	t.Parallel()
	stmt := nodes.NewSelectStatement()
	in := nodes.NewTable("users").Column("id").In(stmt)
	g, ok := in.Right.(*nodes.Unary)
	require.True(t, ok)
	assert.Equal(t, nodes.KindGrouping, g.Kind())
	assert.Same(t, stmt, g.Expr)
	assert.True(t, nodes.IsSelect(stmt))
	assert.False(t, nodes.IsSelect([]int{1}))
}

func TestFunction_As(t *testing.T) {
	t.Parallel()
	sum := nodes.NewTable("users").Column("id").Sum()
	aliased := sum.As("total")
	assert.Equal(t, "sum_id", sum.Alias.(*nodes.SqlLiteral).Value)
	assert.Equal(t, "total", aliased.Alias.(*nodes.SqlLiteral).Value)
	assert.Equal(t, nodes.KindSum, aliased.Kind())
}

func TestOrdering_Reverse(t *testing.T) {
	t.Parallel()
	id := nodes.NewTable("users").Column("id")
	asc := id.Asc()
	desc := asc.Reverse()
	assert.Equal(t, nodes.Descending, desc.Direction)
	assert.Equal(t, nodes.Ascending, asc.Direction)
	assert.Equal(t, nodes.Ascending, desc.Reverse().Direction)
	assert.Same(t, asc.Expr, desc.Expr)
}

func TestSelectStatement_Clone(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt := nodes.NewSelectStatement()
	stmt.Core.Source.Left = users
	stmt.Core.Wheres = []nodes.Node{users.Column("id").Eq(1)}
	stmt.Orders = []nodes.Node{users.Column("id").Asc()}
	stmt.Limit = nodes.NewLimit(1)

	clone := stmt.Clone()
	opts := cmp.Options{
		cmpopts.IgnoreUnexported(nodes.Predications{}, nodes.Unary{}, nodes.Binary{}),
	}
	if diff := cmp.Diff(stmt, clone, opts); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	clone.Core.Wheres = append(clone.Core.Wheres, nodes.SQL("1=1"))
	clone.Orders = nil
	assert.Len(t, stmt.Core.Wheres, 1)
	assert.Len(t, stmt.Orders, 1)
}
