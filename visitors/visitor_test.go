package visitors_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/mapper/dialect"
	"github.com/syssam/mapper/nodes"
	"github.com/syssam/mapper/visitors"
)

func TestVisitor_Nodes(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	id := users.Column("id")
	v := visitors.SQL()

	tests := []struct {
		name string
		node any
		want string
	}{
		{"star column", users.Star(), `"users".*`},
		{"named function", nodes.NewNamedFunction("omg", nodes.Star), "omg(*)"},
		{"named function list", nodes.NewNamedFunction("omg", []any{nodes.Star, nodes.Star}), "omg(*, *)"},
		{"equality of booleans", nodes.NewEquality(false, false), "'f' = 'f'"},
		{"equality with integer", nodes.NewEquality(id, 1), `"users"."id" = 1`},
		{"escapes strings", users.Column("name").Eq("Stefan Huber"), `"users"."name" = 'Stefan Huber'`},
		{"escapes quotes", users.Column("name").Eq(`O'Re\illy`), `"users"."name" = 'O''Re\\illy'`},
		{"integer", 1, "1"},
		{"integral float", 3.0, "3"},
		{"float", 2.14, "'2.14'"},
		{"nil", nil, "NULL"},
		{"not", nodes.NewNot(nodes.SQL("foo")), "NOT (foo)"},
		{"not over and", nodes.NewNot(nodes.NewAnd(id.Eq(10), id.Eq(11))), `NOT ("users"."id" = 10 AND "users"."id" = 11)`},
		{"as", nodes.NewAs(nodes.SQL("foo"), nodes.SQL("bar")), "foo AS bar"},
		{"and", nodes.NewAnd(id.Eq(10), id.Eq(11)), `"users"."id" = 10 AND "users"."id" = 11`},
		{"or", nodes.NewOr(id.Eq(10), id.Eq(11)), `"users"."id" = 10 OR "users"."id" = 11`},
		{"empty and", nodes.NewAnd(), "1=1"},
		{"empty or", nodes.NewOr(), "1=0"},
		{"true", users.Column("bool").Eq(true), `"users"."bool" = 't'`},
		{"ordering", id.Desc(), `"users"."id" DESC`},
		{"in", id.In([]int{1, 2, 3}), `"users"."id" IN (1, 2, 3)`},
		{"in empty", id.In([]int{}), `"users"."id" IN (NULL)`},
		{"not in", id.NotIn([]int{1, 2, 3}), `"users"."id" NOT IN (1, 2, 3)`},
		{"not in empty", id.NotIn([]any{}), `"users"."id" NOT IN (NULL)`},
		{"is null", id.Eq(nil), `"users"."id" IS NULL`},
		{"is not null", id.NotEq(nil), `"users"."id" IS NOT NULL`},
		{"between", id.Between(1, 5), `"users"."id" BETWEEN 1 AND 5`},
		{"empty literal", nodes.SQL(""), ""},
		{"time", time.Date(1970, 1, 15, 6, 56, 7, 0, time.UTC), "'1970-01-15 06:56:07'"},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'"},
		{"bytes", []byte("abc"), "'abc'"},
		{"table alias", nodes.NewTable("users", "foo"), `"users" "foo"`},
		{"aliased column", users.Alias("u").Column("id"), `"u"."id"`},
		{"table alias node", users.Alias("users_2"), `"users" "users_2"`},
		{"count star", nodes.Star.Count(false), "COUNT(*)"},
		{"count distinct", nodes.Star.Count(true), "COUNT(DISTINCT *)"},
		{"sum alias", id.Sum(), `SUM("users"."id") AS sum_id`},
		{"sum as", id.Sum().As("foo"), `SUM("users"."id") AS foo`},
		{"max", id.Maximum(), `MAX("users"."id") AS max_id`},
		{"min", id.Minimum(), `MIN("users"."id") AS min_id`},
		{"avg", id.Average(), `AVG("users"."id") AS avg_id`},
		{"or grouping", nodes.SQL("foo").Eq(1).Or(nodes.SQL("foo").Eq(2)), "(foo = 1 OR foo = 2)"},
		{"and chain", nodes.SQL("foo").Eq(1).And(nodes.SQL("foo").Eq(2)), "foo = 1 AND foo = 2"},
		{"eq any", id.EqAny(1, 2), `("users"."id" = 1 OR "users"."id" = 2)`},
		{"eq all", id.EqAll(1, 2), `("users"."id" = 1 AND "users"."id" = 2)`},
		{"matches any", users.Column("name").MatchesAny("a%", "b%"), `("users"."name" LIKE 'a%' OR "users"."name" LIKE 'b%')`},
		{"empty any", id.GtAny(), "(1=0)"},
		{"empty all", id.LtAll(), "(1=1)"},
		{"not in all", id.NotInAll([]int{1}, []int{2}), `("users"."id" NOT IN (1) AND "users"."id" NOT IN (2))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Visit(tt.node))
		})
	}
}

func TestVisitor_Subquery(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	sub := nodes.NewSelectStatement()
	sub.Core.Source.Left = users
	sub.Core.Projections = []nodes.Node{nodes.SQL("id")}
	sub.Core.Wheres = []nodes.Node{users.Column("name").Eq("Stefan")}

	v := visitors.SQL()
	assert.Equal(t,
		`"users"."id" IN (SELECT id FROM "users" WHERE "users"."name" = 'Stefan')`,
		v.Visit(users.Column("id").In(sub)))
	assert.Equal(t,
		`"users"."id" NOT IN (SELECT id FROM "users" WHERE "users"."name" = 'Stefan')`,
		v.Visit(users.Column("id").NotIn(sub)))
}

func TestVisitor_SelectStatement(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")

	t.Run("limit is quoted", func(t *testing.T) {
		stmt := nodes.NewSelectStatement()
		stmt.Limit = nodes.NewLimit("omg")
		assert.Equal(t, "SELECT LIMIT 'omg'", visitors.SQL().Visit(stmt))
	})

	t.Run("clause order", func(t *testing.T) {
		stmt := nodes.NewSelectStatement()
		stmt.Core.Source.Left = users
		stmt.Core.Projections = []nodes.Node{nodes.Star}
		stmt.Core.Wheres = []nodes.Node{users.Column("age").Gt(18)}
		stmt.Core.Groups = []nodes.Node{nodes.NewGroup(users.Column("name"))}
		stmt.Core.Having = nodes.NewHaving(nodes.SQL("COUNT(*) > 1"), nodes.SQL("MAX(age) < 90"))
		stmt.Orders = []nodes.Node{users.Column("name").Asc()}
		stmt.Limit = nodes.NewLimit(10)
		stmt.Offset = nodes.NewOffset(20)
		stmt.Lock = nodes.NewLock()
		assert.Equal(t,
			`SELECT * FROM "users" WHERE "users"."age" > 18 GROUP BY "users"."name" HAVING COUNT(*) > 1 AND MAX(age) < 90 ORDER BY "users"."name" ASC LIMIT 10 OFFSET 20`,
			visitors.SQL().Visit(stmt))
		assert.Equal(t,
			"SELECT * FROM `users` WHERE `users`.`age` > 18 GROUP BY `users`.`name` HAVING COUNT(*) > 1 AND MAX(age) < 90 ORDER BY `users`.`name` ASC LIMIT 10 OFFSET 20 FOR UPDATE",
			visitors.MySQL().Visit(stmt))
	})

	t.Run("rendering does not modify the tree", func(t *testing.T) {
		stmt := nodes.NewSelectStatement()
		stmt.Offset = nodes.NewOffset(1)
		v := visitors.MySQL()
		first := v.Visit(stmt)
		assert.Equal(t, first, v.Visit(stmt))
		assert.Nil(t, stmt.Limit)
		assert.Nil(t, stmt.Core.Source.Left)
		assert.Equal(t, "SELECT OFFSET 1", visitors.SQL().Visit(stmt))
	})
}

func TestVisitor_Dialects(t *testing.T) {
	t.Parallel()
	offsetOnly := nodes.NewSelectStatement()
	offsetOnly.Offset = nodes.NewOffset(1)

	locked := nodes.NewSelectStatement()
	locked.Lock = nodes.NewLock()

	tests := []struct {
		name    string
		visitor *visitors.Visitor
		node    any
		want    string
	}{
		{"sql empty select", visitors.SQL(), nodes.NewSelectStatement(), "SELECT"},
		{"mysql dual", visitors.MySQL(), nodes.NewSelectStatement(), "SELECT FROM DUAL"},
		{"mysql unbounded limit", visitors.MySQL(), offsetOnly, "SELECT FROM DUAL LIMIT 18446744073709552000 OFFSET 1"},
		{"mysql lock", visitors.MySQL(), locked, "SELECT FROM DUAL FOR UPDATE"},
		{"sqlite unbounded limit", visitors.SQLite(), offsetOnly, "SELECT LIMIT -1 OFFSET 1"},
		{"sqlite lock ignored", visitors.SQLite(), locked, "SELECT"},
		{"sql lock ignored", visitors.SQL(), locked, "SELECT"},
		{"mysql booleans", visitors.MySQL(), nodes.NewEquality(true, false), "'1' = '0'"},
		{"mysql quoting", visitors.MySQL(), nodes.NewTable("users").Column("id"), "`users`.`id`"},
		{"mysql schema table", visitors.MySQL(), nodes.NewTable("db.users"), "`db`.`users`"},
		{"sqlite quoting", visitors.SQLite(), nodes.NewTable("users").Column("id"), `"users"."id"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.visitor.Visit(tt.node))
		})
	}
}

// One AST rendered by every dialect differs only in quoting, DUAL, the
// unbounded LIMIT and the row lock.
func TestVisitor_DivergenceOnlyInQuoting(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")

	filtered := nodes.NewSelectStatement()
	filtered.Core.Source.Left = users
	filtered.Core.Projections = []nodes.Node{users.Column("id")}
	filtered.Core.Wheres = []nodes.Node{
		users.Column("name").Eq("bob"),
		users.Column("age").In([]int{1, 2}),
	}
	filtered.Orders = []nodes.Node{users.Column("id").Desc()}
	filtered.Limit = nodes.NewLimit(3)

	offset := nodes.NewSelectStatement()
	offset.Core.Source.Left = users
	offset.Core.Projections = []nodes.Node{nodes.SQL("*")}
	offset.Offset = nodes.NewOffset(2)

	locked := nodes.NewSelectStatement()
	locked.Core.Source.Left = users
	locked.Core.Projections = []nodes.Node{users.Column("id")}
	locked.Core.Wheres = []nodes.Node{users.Column("admin").Eq(true)}
	locked.Lock = nodes.NewLock()

	sourceless := nodes.NewSelectStatement()
	sourceless.Core.Projections = []nodes.Node{nodes.SQL("1")}

	tests := []struct {
		name   string
		node   nodes.Node
		sql    string
		sqlite string
		mysql  string
	}{
		{
			name:   "filtered",
			node:   filtered,
			sql:    `SELECT "users"."id" FROM "users" WHERE "users"."name" = 'bob' AND "users"."age" IN (1, 2) ORDER BY "users"."id" DESC LIMIT 3`,
			sqlite: `SELECT "users"."id" FROM "users" WHERE "users"."name" = 'bob' AND "users"."age" IN (1, 2) ORDER BY "users"."id" DESC LIMIT 3`,
			mysql:  "SELECT `users`.`id` FROM `users` WHERE `users`.`name` = 'bob' AND `users`.`age` IN (1, 2) ORDER BY `users`.`id` DESC LIMIT 3",
		},
		{
			name:   "offset without limit",
			node:   offset,
			sql:    `SELECT * FROM "users" OFFSET 2`,
			sqlite: `SELECT * FROM "users" LIMIT -1 OFFSET 2`,
			mysql:  "SELECT * FROM `users` LIMIT 18446744073709552000 OFFSET 2",
		},
		{
			name:   "lock and boolean",
			node:   locked,
			sql:    `SELECT "users"."id" FROM "users" WHERE "users"."admin" = 't'`,
			sqlite: `SELECT "users"."id" FROM "users" WHERE "users"."admin" = 't'`,
			mysql:  "SELECT `users`.`id` FROM `users` WHERE `users`.`admin` = '1' FOR UPDATE",
		},
		{
			name:   "no source",
			node:   sourceless,
			sql:    "SELECT 1",
			sqlite: "SELECT 1",
			mysql:  "SELECT 1 FROM DUAL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.sql, visitors.SQL().Visit(tt.node))
			assert.Equal(t, tt.sqlite, visitors.SQLite().Visit(tt.node))
			assert.Equal(t, tt.mysql, visitors.MySQL().Visit(tt.node))
		})
	}
}

func TestVisitor_For(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dialect.SQLite, visitors.For("sqlite3").Dialect())
	assert.Equal(t, dialect.MySQL, visitors.For(dialect.MySQL).Dialect())
	assert.Equal(t, dialect.SQL, visitors.For(dialect.Postgres).Dialect())
	assert.Equal(t, dialect.SQL, visitors.For("").Dialect())
}
